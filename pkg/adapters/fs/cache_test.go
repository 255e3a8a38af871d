package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := newCache(dir, ".mulch")

	mtime := time.Now().Truncate(time.Second)
	c.Set("regex/lookahead.md", &indexEntry{
		ID:           "regex/lookahead",
		Title:        "Lookahead",
		Description:  "Regex lookaround.",
		Date:         time.Date(2020, 5, 4, 0, 0, 0, 0, time.UTC),
		Tags:         []string{"regex"},
		LastModified: mtime,
	})

	if err := c.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".mulch", "index.json")); err != nil {
		t.Fatalf("index file missing: %v", err)
	}

	fresh := newCache(dir, ".mulch")
	if err := fresh.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	entry, hit := fresh.Get("regex/lookahead.md", mtime)
	if !hit {
		t.Fatal("expected cache hit")
	}
	if entry.Title != "Lookahead" || len(entry.Tags) != 1 {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestCacheMissOnStaleMtime(t *testing.T) {
	c := newCache(t.TempDir(), ".mulch")

	mtime := time.Now()
	c.Set("a.md", &indexEntry{ID: "a", LastModified: mtime})

	if _, hit := c.Get("a.md", mtime.Add(time.Second)); hit {
		t.Error("expected miss for changed mtime")
	}
	if _, hit := c.Get("missing.md", mtime); hit {
		t.Error("expected miss for unknown path")
	}
}

func TestCachePrune(t *testing.T) {
	c := newCache(t.TempDir(), ".mulch")

	now := time.Now()
	c.Set("keep.md", &indexEntry{ID: "keep", LastModified: now})
	c.Set("drop.md", &indexEntry{ID: "drop", LastModified: now})

	c.Prune(map[string]bool{"keep.md": true})

	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}
	if _, hit := c.Get("drop.md", now); hit {
		t.Error("pruned entry still present")
	}
}

func TestCacheLoadCorruptedStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".mulch"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".mulch", "index.json"), []byte("{garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	c := newCache(dir, ".mulch")
	if err := c.Load(); err != nil {
		t.Fatalf("Load should self-heal, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}

func TestIndexEntryDocument(t *testing.T) {
	e := &indexEntry{
		ID:          "js/promises",
		Title:       "Promises",
		Description: "Async control flow.",
		Date:        time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC),
		Tags:        []string{"javascript", "async"},
		Draft:       true,
	}

	doc := e.document()
	if doc.ID != "js/promises" {
		t.Errorf("id = %q", doc.ID)
	}
	if doc.Metadata["title"] != "Promises" || doc.Metadata["draft"] != true {
		t.Errorf("metadata = %v", doc.Metadata)
	}
	tags, ok := doc.Metadata["tags"].([]any)
	if !ok || len(tags) != 2 {
		t.Errorf("tags = %v", doc.Metadata["tags"])
	}
}
