// Package lint implements documentation-quality checks over parsed
// articles: front matter completeness, date validity, and code fence
// annotation sanity. Findings are data for the author, not errors; the
// build decides which severities it tolerates.
package lint

import (
	"fmt"

	"github.com/aretw0/mulch/pkg/core"
	"github.com/aretw0/mulch/pkg/markdown"
)

// Severity classifies a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single positioned finding.
type Issue struct {
	DocID    string   `json:"doc_id"`
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Line     int      `json:"line,omitempty"` // 1-based body line, 0 for front matter findings
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("%s:%d [%s] %s: %s", i.DocID, i.Line, i.Severity, i.Rule, i.Message)
	}
	return fmt.Sprintf("%s [%s] %s: %s", i.DocID, i.Severity, i.Rule, i.Message)
}

// Check runs all rules against a document.
func Check(doc core.Document) []Issue {
	issues := checkFrontMatter(doc)
	issues = append(issues, CheckBlocks(doc.ID, markdown.Parse(doc.Content))...)
	return issues
}

// HasErrors reports whether any issue is error-severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// checkFrontMatter verifies the publication contract: title, date and
// description present, date parseable.
func checkFrontMatter(doc core.Document) []Issue {
	var issues []Issue

	required := []string{"title", "date", "description"}
	for _, key := range required {
		val, ok := doc.Metadata[key]
		if !ok || val == nil || val == "" {
			issues = append(issues, Issue{
				DocID:    doc.ID,
				Rule:     "front-matter/required",
				Severity: SeverityError,
				Message:  fmt.Sprintf("missing required field %q", key),
			})
		}
	}

	if raw, ok := doc.Metadata["date"].(string); ok && raw != "" {
		if _, err := core.ParseDate(raw); err != nil {
			issues = append(issues, Issue{
				DocID:    doc.ID,
				Rule:     "front-matter/date",
				Severity: SeverityError,
				Message:  err.Error(),
			})
		}
	}

	return issues
}

// CheckBlocks runs the body rules against an already parsed block sequence.
func CheckBlocks(docID string, blocks []markdown.Block) []Issue {
	var issues []Issue

	anchors := make(map[string]int) // slug -> first line seen

	for _, block := range blocks {
		switch b := block.(type) {
		case markdown.CodeBlock:
			issues = append(issues, checkFence(docID, b)...)

		case markdown.Heading:
			slug := markdown.Slugify(b.Text)
			if first, seen := anchors[slug]; seen {
				issues = append(issues, Issue{
					DocID:    docID,
					Rule:     "heading/duplicate-anchor",
					Severity: SeverityWarning,
					Line:     b.Line,
					Message:  fmt.Sprintf("anchor %q already used at line %d", slug, first),
				})
			} else {
				anchors[slug] = b.Line
			}
		}
	}

	return issues
}

func checkFence(docID string, b markdown.CodeBlock) []Issue {
	var issues []Issue

	if !b.Closed {
		issues = append(issues, Issue{
			DocID:    docID,
			Rule:     "fence/unclosed",
			Severity: SeverityError,
			Line:     b.Line,
			Message:  "code fence opened but never closed",
		})
	}

	if len(b.Lines) == 0 {
		issues = append(issues, Issue{
			DocID:    docID,
			Rule:     "fence/empty",
			Severity: SeverityWarning,
			Line:     b.Line,
			Message:  "code fence has no content",
		})
	}

	for _, hl := range b.Info.Highlights {
		if hl > len(b.Lines) {
			issues = append(issues, Issue{
				DocID:    docID,
				Rule:     "fence/highlight-range",
				Severity: SeverityError,
				Line:     b.Line,
				Message:  fmt.Sprintf("highlight hint %d exceeds block length %d", hl, len(b.Lines)),
			})
		}
	}

	for _, unknown := range b.Info.Unknown {
		issues = append(issues, Issue{
			DocID:    docID,
			Rule:     "fence/annotation",
			Severity: SeverityWarning,
			Line:     b.Line,
			Message:  fmt.Sprintf("unrecognized fence annotation %q", unknown),
		})
	}

	return issues
}
