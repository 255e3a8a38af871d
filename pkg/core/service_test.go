package core_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/aretw0/mulch/pkg/core"
)

// MockRepository implements core.Repository in memory.
// It deliberately does NOT implement Watchable or Syncable to exercise the
// capability errors.
type MockRepository struct {
	docs map[string]core.Document
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		docs: make(map[string]core.Document),
	}
}

func (m *MockRepository) Save(ctx context.Context, doc core.Document) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *MockRepository) Get(ctx context.Context, id string) (core.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return core.Document{}, core.ErrNotFound
	}
	return doc, nil
}

func (m *MockRepository) List(ctx context.Context) ([]core.Document, error) {
	var docs []core.Document
	for _, doc := range m.docs {
		docs = append(docs, doc)
	}
	// Sort for deterministic tests
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.docs[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *MockRepository) Initialize(ctx context.Context) error { return nil }

// MockTransactionalRepository adds Begin on top of MockRepository.
type MockTransactionalRepository struct {
	*MockRepository
	committed string
	rolled    bool
}

func (m *MockTransactionalRepository) Begin(ctx context.Context) (core.Transaction, error) {
	return &mockTransaction{repo: m, staged: make(map[string]core.Document)}, nil
}

type mockTransaction struct {
	repo   *MockTransactionalRepository
	staged map[string]core.Document
}

func (tx *mockTransaction) Save(ctx context.Context, doc core.Document) error {
	tx.staged[doc.ID] = doc
	return nil
}

func (tx *mockTransaction) Get(ctx context.Context, id string) (core.Document, error) {
	if doc, ok := tx.staged[id]; ok {
		return doc, nil
	}
	return tx.repo.Get(ctx, id)
}

func (tx *mockTransaction) Delete(ctx context.Context, id string) error {
	delete(tx.staged, id)
	return nil
}

func (tx *mockTransaction) Commit(ctx context.Context, changeReason string) error {
	for id, doc := range tx.staged {
		tx.repo.docs[id] = doc
	}
	tx.repo.committed = changeReason
	return nil
}

func (tx *mockTransaction) Rollback(ctx context.Context) error {
	tx.repo.rolled = true
	return nil
}

func TestService_CRUD(t *testing.T) {
	repo := NewMockRepository()
	service := core.NewService(repo)
	ctx := context.TODO()

	err := service.SaveDocument(ctx, "js/promises", "content1", core.Metadata{"title": "Promises"})
	if err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	doc, err := service.GetDocument(ctx, "js/promises")
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if doc.Content != "content1" {
		t.Errorf("expected content 'content1', got '%s'", doc.Content)
	}

	if err := service.DeleteDocument(ctx, "js/promises"); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if _, err := service.GetDocument(ctx, "js/promises"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestService_EmptyID(t *testing.T) {
	service := core.NewService(NewMockRepository())
	ctx := context.TODO()

	if err := service.SaveDocument(ctx, "", "x", nil); !errors.Is(err, core.ErrEmptyID) {
		t.Errorf("Save: expected ErrEmptyID, got %v", err)
	}
	if _, err := service.GetDocument(ctx, ""); !errors.Is(err, core.ErrEmptyID) {
		t.Errorf("Get: expected ErrEmptyID, got %v", err)
	}
	if err := service.DeleteDocument(ctx, ""); !errors.Is(err, core.ErrEmptyID) {
		t.Errorf("Delete: expected ErrEmptyID, got %v", err)
	}
}

func TestService_ListNewestFirst(t *testing.T) {
	repo := NewMockRepository()
	service := core.NewService(repo)
	ctx := context.TODO()

	_ = service.SaveDocument(ctx, "older", "a", core.Metadata{"date": "2020-01-01"})
	_ = service.SaveDocument(ctx, "newest", "b", core.Metadata{"date": "2022-06-15"})
	_ = service.SaveDocument(ctx, "middle", "c", core.Metadata{"date": "2021-03-10"})
	_ = service.SaveDocument(ctx, "undated", "d", nil)

	docs, err := service.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}

	var ids []string
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	want := []string{"newest", "middle", "older", "undated"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("order = %v, want %v", ids, want)
		}
	}
}

func TestService_ListByTag(t *testing.T) {
	repo := NewMockRepository()
	service := core.NewService(repo)
	ctx := context.TODO()

	_ = service.SaveDocument(ctx, "a", "", core.Metadata{"tags": []any{"regex"}})
	_ = service.SaveDocument(ctx, "b", "", core.Metadata{"tags": []any{"css"}})
	_ = service.SaveDocument(ctx, "c", "", nil)

	docs, err := service.ListByTag(ctx, "regex")
	if err != nil {
		t.Fatalf("ListByTag failed: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "a" {
		t.Errorf("unexpected result: %+v", docs)
	}
}

func TestService_CapabilityErrors(t *testing.T) {
	service := core.NewService(NewMockRepository())
	ctx := context.TODO()

	if _, err := service.Watch(ctx, "**/*"); !errors.Is(err, core.ErrNotWatchable) {
		t.Errorf("Watch: expected ErrNotWatchable, got %v", err)
	}
	if err := service.Sync(ctx); !errors.Is(err, core.ErrNotSyncable) {
		t.Errorf("Sync: expected ErrNotSyncable, got %v", err)
	}
	if err := service.WithTransaction(ctx, func(tx core.Transaction) error { return nil }); !errors.Is(err, core.ErrNotTransactional) {
		t.Errorf("WithTransaction: expected ErrNotTransactional, got %v", err)
	}
	if _, err := service.Begin(ctx); !errors.Is(err, core.ErrNotTransactional) {
		t.Errorf("Begin: expected ErrNotTransactional, got %v", err)
	}
}

func TestService_WithTransactionCommits(t *testing.T) {
	repo := &MockTransactionalRepository{MockRepository: NewMockRepository()}
	service := core.NewService(repo)
	ctx := context.WithValue(context.Background(), core.ChangeReasonKey, "content(articles): add pair")

	err := service.WithTransaction(ctx, func(tx core.Transaction) error {
		if err := tx.Save(ctx, core.Document{ID: "a", Content: "one"}); err != nil {
			return err
		}
		return tx.Save(ctx, core.Document{ID: "b", Content: "two"})
	})
	if err != nil {
		t.Fatalf("WithTransaction failed: %v", err)
	}

	if repo.committed != "content(articles): add pair" {
		t.Errorf("committed = %q, want the change reason from context", repo.committed)
	}
	if _, err := service.GetDocument(ctx, "a"); err != nil {
		t.Errorf("document not committed: %v", err)
	}
}

func TestService_WithTransactionRollsBackOnError(t *testing.T) {
	repo := &MockTransactionalRepository{MockRepository: NewMockRepository()}
	service := core.NewService(repo)
	ctx := context.Background()
	boom := errors.New("boom")

	err := service.WithTransaction(ctx, func(tx core.Transaction) error {
		_ = tx.Save(ctx, core.Document{ID: "a", Content: "one"})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the callback error, got %v", err)
	}
	if !repo.rolled {
		t.Error("transaction was not rolled back")
	}
	if _, err := service.GetDocument(ctx, "a"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("rolled-back document visible: %v", err)
	}
}

func TestService_StateReportsEventBuffer(t *testing.T) {
	service := core.NewService(NewMockRepository(), core.WithEventBufferSize(25))
	state, ok := service.State().(core.ServiceState)
	if !ok {
		t.Fatalf("unexpected state type %T", service.State())
	}
	if state.EventBufferSize != 25 {
		t.Errorf("EventBufferSize = %d, want 25", state.EventBufferSize)
	}

	def := core.NewService(NewMockRepository()).State().(core.ServiceState)
	if def.EventBufferSize != 100 {
		t.Errorf("default EventBufferSize = %d, want 100", def.EventBufferSize)
	}
}
