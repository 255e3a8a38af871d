package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "plain date",
			value: "2020-05-04",
			want:  time.Date(2020, 5, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "date time",
			value: "2020-05-04 09:30:00",
			want:  time.Date(2020, 5, 4, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339",
			value: "2020-05-04T09:30:00Z",
			want:  time.Date(2020, 5, 4, 9, 30, 0, 0, time.UTC),
		},
		{
			name:    "prose date rejected",
			value:   "May 4th, 2020",
			wantErr: true,
		},
		{
			name:    "empty rejected",
			value:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.value)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDate(%q) expected error, got %v", tt.value, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.value, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestFrontMatterOf(t *testing.T) {
	doc := Document{
		ID: "regex/lookahead",
		Metadata: Metadata{
			"title":       "Lookahead",
			"date":        "2020-05-04",
			"description": "Regex lookahead assertions.",
			"tags":        []any{"regex", "javascript"},
			"draft":       true,
		},
	}

	fm := FrontMatterOf(doc)
	if fm.Title != "Lookahead" {
		t.Errorf("title = %q", fm.Title)
	}
	if fm.Description != "Regex lookahead assertions." {
		t.Errorf("description = %q", fm.Description)
	}
	if !fm.Draft {
		t.Error("draft should be true")
	}
	if fm.Date.IsZero() {
		t.Error("date should parse")
	}
	if len(fm.Tags) != 2 || !fm.HasTag("regex") || fm.HasTag("css") {
		t.Errorf("tags = %v", fm.Tags)
	}
}

func TestFrontMatterOfNativeDate(t *testing.T) {
	// yaml.v3 decodes unquoted ISO timestamps as time.Time already.
	when := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	fm := FrontMatterOf(Document{Metadata: Metadata{"date": when}})

	if !fm.Date.Equal(when) {
		t.Errorf("date = %v, want %v", fm.Date, when)
	}
}

func TestFrontMatterOfMissingFields(t *testing.T) {
	fm := FrontMatterOf(Document{Metadata: Metadata{}})

	if fm.Title != "" || fm.Description != "" || !fm.Date.IsZero() || fm.Draft {
		t.Errorf("expected zero front matter, got %+v", fm)
	}
	if fm.HasTag("anything") {
		t.Error("no tags expected")
	}
}

func TestFrontMatterOfStringTags(t *testing.T) {
	fm := FrontMatterOf(Document{Metadata: Metadata{"tags": []string{"go"}}})

	if !fm.HasTag("go") {
		t.Errorf("tags = %v", fm.Tags)
	}
}
