package core

import "context"

// Repository defines the contract for storing and retrieving documents.
// Adhering to this interface keeps the core independent of the underlying
// storage mechanism (Filesystem, Git, SQL, S3, etc).
type Repository interface {
	// Save persists a document. It creates if not exists, or updates if it does.
	Save(ctx context.Context, doc Document) error

	// Get retrieves a document by its ID.
	Get(ctx context.Context, id string) (Document, error)

	// List returns all available documents.
	List(ctx context.Context) ([]Document, error)

	// Delete removes a document by its ID.
	Delete(ctx context.Context, id string) error

	// Initialize ensures the underlying storage is ready (e.g. create
	// directories, git init).
	Initialize(ctx context.Context) error
}

// Watchable defines an interface for repositories that can emit change events.
type Watchable interface {
	// Watch observes documents matching the glob pattern and emits events
	// until ctx is cancelled.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// Syncable defines an interface for repositories that support synchronization
// with a remote.
type Syncable interface {
	// Sync synchronizes the local state with a remote source (e.g. git pull/push).
	Sync(ctx context.Context) error
}

// Transaction is a unit of work over documents: saves and deletes are
// staged in memory and land together on Commit (a single git commit for
// versioned repositories), or not at all on Rollback.
type Transaction interface {
	// Save stages a document for persistence.
	Save(ctx context.Context, doc Document) error

	// Get retrieves a document, preferring the staged version if present.
	Get(ctx context.Context, id string) (Document, error)

	// Delete stages a document for removal.
	Delete(ctx context.Context, id string) error

	// Commit applies all staged changes as one unit.
	Commit(ctx context.Context, changeReason string) error

	// Rollback discards all staged changes.
	Rollback(ctx context.Context) error
}

// Transactional is implemented by repositories that support transactions.
type Transactional interface {
	Repository

	// Begin starts a new transaction.
	Begin(ctx context.Context) (Transaction, error)
}

type contextKey string

// ChangeReasonKey is the context key for passing specific change reasons
// (commit messages) during Save/Delete operations.
const ChangeReasonKey contextKey = "change_reason"
