package mulch

import (
	"strings"
)

// CommitType constants for semantic commits
const (
	CommitTypeContent = "content"
	CommitTypeFix     = "fix"
	CommitTypeStyle   = "style"
	CommitTypeChore   = "chore"
)

// FormatCommitMessage builds a Conventional Commit message.
// logic:
//
//	<type>(<scope>): <subject>
//
//	<body>
//
//	Powered-by: Mulch
func FormatCommitMessage(ctype, scope, subject, body string) string {
	var sb strings.Builder

	if ctype == "" {
		ctype = CommitTypeChore
	}
	sb.WriteString(ctype)

	if scope != "" {
		sb.WriteString("(")
		sb.WriteString(scope)
		sb.WriteString(")")
	}

	sb.WriteString(": ")
	sb.WriteString(subject)

	if body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimSpace(body))
	}

	sb.WriteString("\n\n")
	sb.WriteString("Powered-by: Mulch")

	return sb.String()
}

// AppendFooter appends the Mulch footer to an arbitrary message if not present.
// Used for free-form -m "msg" commits.
func AppendFooter(msg string) string {
	if strings.Contains(msg, "Powered-by: Mulch") {
		return msg
	}

	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	if !strings.HasSuffix(msg, "\n\n") {
		msg += "\n"
	}

	return msg + "Powered-by: Mulch"
}
