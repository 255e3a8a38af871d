package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/mulch/pkg/adapters/fs"
	"github.com/aretw0/mulch/pkg/core"
)

// setupRepo creates an initialized gitless repository over a temp dir.
func setupRepo(t *testing.T, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()

	contentPath := filepath.Join(t.TempDir(), "content")

	cfg := fs.Config{
		Path:      contentPath,
		AutoInit:  true,
		Gitless:   true, // tests exercise the filesystem, not git
		MustExist: false,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	repo := fs.NewRepository(cfg)
	if err := repo.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return repo, contentPath
}

func TestInitializeCreatesDirectory(t *testing.T) {
	_, path := setupRepo(t)

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Fatalf("content directory not created: %v", err)
	}
}

func TestInitializeMustExist(t *testing.T) {
	contentPath := filepath.Join(t.TempDir(), "missing")
	repo := fs.NewRepository(fs.Config{Path: contentPath, Gitless: true, MustExist: true})

	if err := repo.Initialize(context.Background()); err == nil {
		t.Fatal("expected error for missing content path")
	}
}

func TestSaveAndGet(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	doc := core.Document{
		ID:      "regex/lookahead",
		Content: "## Lookahead\n\nProse.\n",
		Metadata: core.Metadata{
			"title":       "Lookahead",
			"date":        "2020-05-04",
			"description": "Regex lookaround.",
		},
	}
	if err := repo.Save(ctx, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Get(ctx, "regex/lookahead")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != "regex/lookahead" {
		t.Errorf("id = %q", got.ID)
	}
	if got.Content != doc.Content {
		t.Errorf("content = %q, want %q", got.Content, doc.Content)
	}
	if got.Metadata["title"] != "Lookahead" {
		t.Errorf("title = %v", got.Metadata["title"])
	}
}

func TestGetDefaultExtension(t *testing.T) {
	repo, path := setupRepo(t)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(path, "plain.md"), []byte("body\n"), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := repo.Get(ctx, "plain")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.ID != "plain" || doc.Content != "body\n" {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestGetNotFound(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.Get(context.Background(), "nope")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetUnsupportedExtension(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.Get(context.Background(), "image.png")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListNestedAndSkipsNonArticles(t *testing.T) {
	repo, path := setupRepo(t)
	ctx := context.Background()

	_ = repo.Save(ctx, core.Document{ID: "top", Content: "a", Metadata: core.Metadata{"title": "Top"}})
	_ = repo.Save(ctx, core.Document{ID: "regex/lookahead", Content: "b", Metadata: core.Metadata{"title": "Deep"}})

	// Non-article files are invisible to List.
	if err := os.WriteFile(filepath.Join(path, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	docs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d: %+v", len(docs), docs)
	}
}

func TestListServesFromCacheOnSecondPass(t *testing.T) {
	repo, path := setupRepo(t)
	ctx := context.Background()

	_ = repo.Save(ctx, core.Document{
		ID:       "cached",
		Content:  "body",
		Metadata: core.Metadata{"title": "Cached", "tags": []any{"go"}},
	})

	if _, err := repo.List(ctx); err != nil {
		t.Fatalf("first List failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(path, ".mulch", "index.json")); err != nil {
		t.Fatalf("index not persisted: %v", err)
	}

	docs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("second List failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	// Cache hits serve the front matter summary.
	if docs[0].Metadata["title"] != "Cached" {
		t.Errorf("metadata = %v", docs[0].Metadata)
	}
	fm := core.FrontMatterOf(docs[0])
	if !fm.HasTag("go") {
		t.Errorf("tags lost through cache: %v", fm.Tags)
	}
}

func TestListHonorsIgnorePatterns(t *testing.T) {
	repo, _ := setupRepo(t, func(c *fs.Config) {
		c.Ignore = []string{"drafts/**"}
	})
	ctx := context.Background()

	_ = repo.Save(ctx, core.Document{ID: "published", Content: "a"})
	_ = repo.Save(ctx, core.Document{ID: "drafts/wip", Content: "b"})

	docs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "published" {
		t.Errorf("unexpected documents: %+v", docs)
	}
}

func TestDelete(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	_ = repo.Save(ctx, core.Document{ID: "doomed", Content: "x"})

	if err := repo.Delete(ctx, "doomed"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, "doomed"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := repo.Delete(ctx, "doomed"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound for repeated delete, got %v", err)
	}
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	contentPath := t.TempDir()
	repo := fs.NewRepository(fs.Config{Path: contentPath, Gitless: true, ReadOnly: true})
	ctx := context.Background()

	if err := repo.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if err := repo.Save(ctx, core.Document{ID: "x", Content: "y"}); !errors.Is(err, core.ErrReadOnly) {
		t.Errorf("Save: expected ErrReadOnly, got %v", err)
	}
	if err := repo.Delete(ctx, "x"); !errors.Is(err, core.ErrReadOnly) {
		t.Errorf("Delete: expected ErrReadOnly, got %v", err)
	}
}

func TestSyncGitless(t *testing.T) {
	repo, _ := setupRepo(t)

	if err := repo.Sync(context.Background()); err == nil {
		t.Fatal("expected error syncing in gitless mode")
	}
}

func TestReconcileDetectsOfflineChanges(t *testing.T) {
	repo, path := setupRepo(t)
	ctx := context.Background()

	_ = repo.Save(ctx, core.Document{ID: "stays", Content: "a"})
	_ = repo.Save(ctx, core.Document{ID: "changes", Content: "b"})
	_ = repo.Save(ctx, core.Document{ID: "goes", Content: "c"})

	// Populate the index.
	if _, err := repo.List(ctx); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	// Changes happen behind the watcher's back.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(filepath.Join(path, "changes.md"), future, future); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(path, "goes.md")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(path, "arrives.md"), []byte("d"), 0644); err != nil {
		t.Fatal(err)
	}

	events, err := repo.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	got := map[string]core.EventType{}
	for _, e := range events {
		got[e.ID] = e.Type
	}

	if got["arrives"] != core.EventCreate {
		t.Errorf("arrives: %v", got)
	}
	if got["changes"] != core.EventModify {
		t.Errorf("changes: %v", got)
	}
	if got["goes"] != core.EventDelete {
		t.Errorf("goes: %v", got)
	}
	if _, ok := got["stays"]; ok {
		t.Errorf("stays should not produce an event: %v", got)
	}
}
