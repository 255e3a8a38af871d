package mulch

import "testing"

func TestFormatCommitMessage(t *testing.T) {
	tests := []struct {
		name    string
		ctype   string
		scope   string
		subject string
		body    string
		want    string
	}{
		{
			name:    "simple",
			ctype:   "content",
			scope:   "",
			subject: "add regex/lookahead",
			body:    "",
			want:    "content: add regex/lookahead\n\nPowered-by: Mulch",
		},
		{
			name:    "with scope",
			ctype:   "fix",
			scope:   "articles",
			subject: "correct date",
			body:    "",
			want:    "fix(articles): correct date\n\nPowered-by: Mulch",
		},
		{
			name:    "with body",
			ctype:   "content",
			scope:   "",
			subject: "update intro",
			body:    "Rewrote the opening paragraph.",
			want:    "content: update intro\n\nRewrote the opening paragraph.\n\nPowered-by: Mulch",
		},
		{
			name:    "empty type falls back to chore",
			ctype:   "",
			scope:   "",
			subject: "tidy",
			body:    "",
			want:    "chore: tidy\n\nPowered-by: Mulch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatCommitMessage(tt.ctype, tt.scope, tt.subject, tt.body)
			if got != tt.want {
				t.Errorf("FormatCommitMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppendFooter(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{
			name: "plain",
			msg:  "simple message",
			want: "simple message\n\nPowered-by: Mulch",
		},
		{
			name: "already footed",
			msg:  "msg\n\nPowered-by: Mulch",
			want: "msg\n\nPowered-by: Mulch",
		},
		{
			name: "trailing newline",
			msg:  "msg\n",
			want: "msg\n\nPowered-by: Mulch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AppendFooter(tt.msg)
			if got != tt.want {
				t.Errorf("AppendFooter(%q) = %q, want %q", tt.msg, got, tt.want)
			}
		})
	}
}
