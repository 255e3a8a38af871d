package core

// Metadata represents the flexible key-value pairs of a document's front matter.
type Metadata map[string]any

// Document is the central entity of the domain.
// It represents a single article: a Markdown body plus its front matter.
// The ID is the slash-separated path relative to the content root, without
// the file extension (e.g. "regex/lookahead").
type Document struct {
	ID       string
	Content  string
	Metadata Metadata
}

// EventType represents the type of change in the content directory.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a document.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer (and the lifecycle event contract).
func (e Event) String() string {
	return string(e.Type) + " " + e.ID
}
