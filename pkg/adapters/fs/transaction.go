package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/mulch/pkg/core"
)

var errTransactionClosed = errors.New("transaction closed")

// Transaction implements core.Transaction for the filesystem: article saves
// and deletes are staged in memory and applied on Commit as one pass of
// atomic writes plus, when versioned, a single git commit.
//
// A Transaction belongs to one caller; it is not safe for concurrent use.
type Transaction struct {
	repo    *Repository
	staged  map[string]core.Document
	deleted map[string]bool
	closed  bool
}

// Begin starts a new transaction. Implements core.Transactional.
func (r *Repository) Begin(ctx context.Context) (core.Transaction, error) {
	if r.config.ReadOnly {
		return nil, core.ErrReadOnly
	}
	return &Transaction{
		repo:    r,
		staged:  make(map[string]core.Document),
		deleted: make(map[string]bool),
	}, nil
}

// Save stages a document for persistence.
func (t *Transaction) Save(ctx context.Context, doc core.Document) error {
	if doc.ID == "" {
		return core.ErrEmptyID
	}
	if t.closed {
		return errTransactionClosed
	}

	t.staged[doc.ID] = doc
	delete(t.deleted, doc.ID)
	return nil
}

// Get retrieves a document, preferring the staged version.
func (t *Transaction) Get(ctx context.Context, id string) (core.Document, error) {
	if t.closed {
		return core.Document{}, errTransactionClosed
	}

	if t.deleted[id] {
		return core.Document{}, fmt.Errorf("%s: %w", id, core.ErrNotFound)
	}
	if doc, ok := t.staged[id]; ok {
		return doc, nil
	}
	return t.repo.Get(ctx, id)
}

// Delete stages a document for removal.
func (t *Transaction) Delete(ctx context.Context, id string) error {
	if id == "" {
		return core.ErrEmptyID
	}
	if t.closed {
		return errTransactionClosed
	}

	t.deleted[id] = true
	delete(t.staged, id)
	return nil
}

// Commit applies the staged changes: atomic writes and removals on disk,
// then one git commit carrying the change reason.
func (t *Transaction) Commit(ctx context.Context, changeReason string) error {
	if t.closed {
		return errTransactionClosed
	}

	if !t.repo.config.Gitless {
		unlock, err := t.repo.git.Lock()
		if err != nil {
			return fmt.Errorf("failed to acquire git lock: %w", err)
		}
		defer unlock()
	}

	var added, removed []string

	for id, doc := range t.staged {
		filename, serializer, err := t.repo.resolveFile(id)
		if err != nil {
			return err
		}
		doc.ID = id

		fullPath := filepath.Join(t.repo.Path, filename)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return fmt.Errorf("failed to create directories for %s: %w", id, err)
		}

		data, err := serializer.Serialize(doc)
		if err != nil {
			return fmt.Errorf("failed to serialize %s: %w", id, err)
		}
		if err := writeFileAtomic(fullPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", id, err)
		}

		t.repo.cache.Delete(filepath.ToSlash(filename))
		added = append(added, filename)
	}

	for id := range t.deleted {
		filename, _, err := t.repo.resolveFile(id)
		if err != nil {
			return err
		}

		fullPath := filepath.Join(t.repo.Path, filename)
		if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", id, err)
		}

		t.repo.cache.Delete(filepath.ToSlash(filename))
		removed = append(removed, filename)
	}

	if !t.repo.config.Gitless && len(added)+len(removed) > 0 {
		if err := t.repo.git.Add(added...); err != nil {
			return fmt.Errorf("failed to git add: %w", err)
		}
		if err := t.repo.git.Rm(removed...); err != nil {
			return fmt.Errorf("failed to git rm: %w", err)
		}

		msg := changeReason
		if msg == "" {
			msg = "batch update"
		}
		if err := t.repo.git.Commit(msg); err != nil {
			return fmt.Errorf("failed to git commit: %w", err)
		}
	}

	t.closed = true
	return nil
}

// Rollback discards all staged changes.
func (t *Transaction) Rollback(ctx context.Context) error {
	if t.closed {
		return nil
	}
	t.staged = nil
	t.deleted = nil
	t.closed = true
	return nil
}

var _ core.Transaction = (*Transaction)(nil)
var _ core.Transactional = (*Repository)(nil)
