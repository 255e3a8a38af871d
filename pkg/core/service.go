package core

import (
	"context"
	"sort"
	"sync"
)

// Service handles the business logic for documents.
type Service struct {
	repo            Repository
	eventBufferSize int
	mu              sync.RWMutex
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithEventBufferSize records the watch channel capacity the repository
// was configured with, so introspection reports the real value.
func WithEventBufferSize(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.eventBufferSize = size
		}
	}
}

// NewService creates a new Service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, eventBufferSize: 100}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveDocument saves a document with business validation.
func (s *Service) SaveDocument(ctx context.Context, id string, content string, metadata Metadata) error {
	if id == "" {
		return ErrEmptyID
	}

	doc := Document{
		ID:       id,
		Content:  content,
		Metadata: metadata,
	}

	return s.repo.Save(ctx, doc)
}

// GetDocument retrieves a document.
func (s *Service) GetDocument(ctx context.Context, id string) (Document, error) {
	if id == "" {
		return Document{}, ErrEmptyID
	}
	return s.repo.Get(ctx, id)
}

// ListDocuments retrieves all documents, newest first.
// Documents without a parseable date sort last, by ID.
func (s *Service) ListDocuments(ctx context.Context) ([]Document, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(docs, func(i, j int) bool {
		di := FrontMatterOf(docs[i]).Date
		dj := FrontMatterOf(docs[j]).Date
		if di.Equal(dj) {
			return docs[i].ID < docs[j].ID
		}
		return di.After(dj)
	})

	return docs, nil
}

// ListByTag retrieves all documents carrying the given tag.
func (s *Service) ListByTag(ctx context.Context, tag string) ([]Document, error) {
	docs, err := s.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	var filtered []Document
	for _, doc := range docs {
		if FrontMatterOf(doc).HasTag(tag) {
			filtered = append(filtered, doc)
		}
	}
	return filtered, nil
}

// DeleteDocument removes a document.
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	return s.repo.Delete(ctx, id)
}

// WithTransaction runs fn inside a transaction: the changes fn stages
// commit as one unit when it returns nil and roll back when it errors.
// The commit message comes from ChangeReasonKey on ctx.
func (s *Service) WithTransaction(ctx context.Context, fn func(tx Transaction) error) error {
	tr, ok := s.repo.(Transactional)
	if !ok {
		return ErrNotTransactional
	}

	tx, err := tr.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	msg := "batch update"
	if val, ok := ctx.Value(ChangeReasonKey).(string); ok && val != "" {
		msg = val
	}
	return tx.Commit(ctx, msg)
}

// Begin starts a transaction manually, for workflows that outlive a single
// callback. The caller owns Commit/Rollback.
func (s *Service) Begin(ctx context.Context) (Transaction, error) {
	tr, ok := s.repo.(Transactional)
	if !ok {
		return nil, ErrNotTransactional
	}
	return tr.Begin(ctx)
}

// Watch observes changes in the repository if supported.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, ErrNotWatchable
	}
	return w.Watch(ctx, pattern)
}

// Sync synchronizes the repository with its remote if supported.
func (s *Service) Sync(ctx context.Context) error {
	sy, ok := s.repo.(Syncable)
	if !ok {
		return ErrNotSyncable
	}
	return sy.Sync(ctx)
}
