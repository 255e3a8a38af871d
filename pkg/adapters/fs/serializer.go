package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/mulch/pkg/core"
)

// Serializer defines how to read and write an article file format.
type Serializer interface {
	// Parse reads from r and returns a Document.
	Parse(r io.Reader) (*core.Document, error)
	// Serialize converts the Document to bytes.
	Serialize(doc core.Document) ([]byte, error)
}

// DefaultSerializers returns the standard set of serializers.
// Markdown with YAML front matter is the native article format; additional
// extensions can be registered on the repository.
func DefaultSerializers() map[string]Serializer {
	md := NewArticleSerializer()
	return map[string]Serializer{
		".md":       md,
		".markdown": md,
	}
}

// ArticleSerializer handles Markdown files with a YAML front matter block.
//
//	---
//	title: <string>
//	date: <ISO-8601 date or date-time>
//	description: <string>
//	---
//	<body>
type ArticleSerializer struct{}

// NewArticleSerializer creates a serializer for Markdown + front matter.
func NewArticleSerializer() *ArticleSerializer {
	return &ArticleSerializer{}
}

// Parse splits front matter from body. A file without a leading '---' is
// all body with empty metadata. A front matter block that opens but never
// closes is a parse error: the file is ambiguous and we refuse to guess.
func (s *ArticleSerializer) Parse(r io.Reader) (*core.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := &core.Document{Metadata: make(core.Metadata)}

	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		doc.Content = string(data)
		return doc, nil
	}

	rest := data[3:]
	parts := bytes.SplitN(rest, []byte("\n---"), 2)
	if len(parts) == 1 {
		return nil, errors.New("front matter started but no closing delimiter found")
	}

	yamlData := parts[0]
	contentData := parts[1]

	if err := yaml.Unmarshal(yamlData, &doc.Metadata); err != nil {
		return nil, fmt.Errorf("failed to parse front matter: %w", err)
	}

	doc.Content = strings.TrimPrefix(string(contentData), "\n")
	doc.Content = strings.TrimPrefix(doc.Content, "\r\n")

	return doc, nil
}

// Serialize writes the front matter block (when metadata exists) followed
// by the raw body.
func (s *ArticleSerializer) Serialize(doc core.Document) ([]byte, error) {
	var buf bytes.Buffer
	if len(doc.Metadata) > 0 {
		buf.WriteString("---\n")
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(map[string]any(doc.Metadata)); err != nil {
			return nil, err
		}
		encoder.Close()
		buf.WriteString("---\n")
	}
	buf.WriteString(doc.Content)
	return buf.Bytes(), nil
}
