package core

import (
	"fmt"
	"time"
)

// DateLayouts are the accepted formats for the front matter 'date' field.
// Articles carry either a plain ISO date, a full RFC 3339 timestamp, or a
// space-separated date-time.
var DateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FrontMatter is the typed view over a document's metadata.
// Title, Date and Description are the publication contract; everything
// else stays in the raw Metadata map.
type FrontMatter struct {
	Title       string
	Date        time.Time
	Description string
	Tags        []string
	Draft       bool
}

// ParseDate parses a front matter date value under the accepted layouts.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", value)
}

// FrontMatterOf extracts the typed front matter from a document.
// Missing or malformed fields are left at their zero value; completeness
// is a lint concern, not a load failure.
func FrontMatterOf(doc Document) FrontMatter {
	var fm FrontMatter

	if t, ok := doc.Metadata["title"].(string); ok {
		fm.Title = t
	}
	if d, ok := doc.Metadata["description"].(string); ok {
		fm.Description = d
	}
	if b, ok := doc.Metadata["draft"].(bool); ok {
		fm.Draft = b
	}

	switch v := doc.Metadata["date"].(type) {
	case time.Time:
		// yaml.v3 decodes unquoted ISO timestamps natively.
		fm.Date = v
	case string:
		if t, err := ParseDate(v); err == nil {
			fm.Date = t
		}
	}

	switch tags := doc.Metadata["tags"].(type) {
	case []any:
		for _, item := range tags {
			if s, ok := item.(string); ok {
				fm.Tags = append(fm.Tags, s)
			}
		}
	case []string:
		fm.Tags = append(fm.Tags, tags...)
	}

	return fm
}

// HasTag reports whether the front matter carries the given tag.
func (fm FrontMatter) HasTag(tag string) bool {
	for _, t := range fm.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
