package platform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/mulch/pkg/core"
)

// stubRepo satisfies core.Repository for injection tests.
type stubRepo struct{}

func (stubRepo) Save(ctx context.Context, doc core.Document) error        { return nil }
func (stubRepo) Get(ctx context.Context, id string) (core.Document, error) { return core.Document{}, nil }
func (stubRepo) List(ctx context.Context) ([]core.Document, error)        { return nil, nil }
func (stubRepo) Delete(ctx context.Context, id string) error              { return nil }
func (stubRepo) Initialize(ctx context.Context) error                     { return nil }

func TestInitGitlessAutoInit(t *testing.T) {
	// t.TempDir() is inside the system temp dir, so the dev sandbox passes
	// the path through unchanged.
	path := filepath.Join(t.TempDir(), "content")

	repo, err := Init(path, WithAutoInit(true), WithVersioning(false))
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if repo == nil {
		t.Fatal("expected repository")
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		t.Errorf("content directory not created: %v", err)
	}
}

func TestInitUnknownAdapter(t *testing.T) {
	_, err := Init(t.TempDir(), WithAdapter("s3"))
	if err == nil {
		t.Fatal("expected error for unknown adapter")
	}
}

func TestInitInjectedRepository(t *testing.T) {
	injected := stubRepo{}

	repo, err := Init("ignored", WithRepository(injected))
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if repo != core.Repository(injected) {
		t.Error("expected the injected repository back")
	}
}

func TestNewReturnsWorkingService(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content")

	svc, err := New(path, WithAutoInit(true), WithVersioning(false))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	if err := svc.SaveDocument(ctx, "hello", "## Hello\n", core.Metadata{"title": "Hello"}); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	doc, err := svc.GetDocument(ctx, "hello")
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if doc.Metadata["title"] != "Hello" {
		t.Errorf("metadata = %v", doc.Metadata)
	}
}

func TestNewPropagatesEventBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content")

	svc, err := New(path, WithAutoInit(true), WithVersioning(false), WithEventBuffer(42))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	state, ok := svc.State().(core.ServiceState)
	if !ok {
		t.Fatalf("unexpected state type %T", svc.State())
	}
	if state.EventBufferSize != 42 {
		t.Errorf("EventBufferSize = %d, want 42", state.EventBufferSize)
	}
}

func TestSyncRequiresSyncableOrGit(t *testing.T) {
	if err := Sync("x", WithRepository(stubRepo{})); !errors.Is(err, core.ErrNotSyncable) {
		t.Errorf("expected ErrNotSyncable, got %v", err)
	}
}

func TestInitAutoDetectsGitlessWithoutGitDir(t *testing.T) {
	// No WithVersioning call and no .git: must-exist directory resolves to
	// gitless rather than failing on a missing repo.
	path := t.TempDir()

	repo, err := Init(path, WithMustExist(true))
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	// A gitless repository saves without git metadata appearing.
	if err := repo.Save(context.Background(), core.Document{ID: "a", Content: "x"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(path, ".git")); !os.IsNotExist(err) {
		t.Error(".git should not exist in auto-detected gitless mode")
	}
}
