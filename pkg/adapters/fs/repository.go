package fs

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/mulch/pkg/core"
	"github.com/aretw0/mulch/pkg/git"
)

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string
	AutoInit     bool
	Gitless      bool
	MustExist    bool
	ReadOnly     bool
	Logger       *slog.Logger
	SystemDir    string   // e.g. ".mulch"
	Ignore       []string // doublestar patterns relative to Path, skipped on List/Watch
	EventBuffer  int
	ErrorHandler func(error)
}

// Repository implements core.Repository over a content directory,
// optionally backed by Git for versioned saves.
type Repository struct {
	Path   string
	git    *git.Client
	cache  *cache
	config Config

	mu            sync.RWMutex
	serializers   map[string]Serializer
	watcherActive bool
	lastReconcile *time.Time
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = ".mulch"
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = 100
	}

	return &Repository{
		Path:        config.Path,
		git:         git.NewClient(config.Path, config.SystemDir+".lock", config.Logger),
		config:      config,
		cache:       newCache(config.Path, config.SystemDir),
		serializers: DefaultSerializers(),
	}
}

// RegisterSerializer adds or replaces the serializer for an extension.
func (r *Repository) RegisterSerializer(ext string, s Serializer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.serializers[ext] = s
}

func (r *Repository) serializerFor(ext string) (Serializer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.serializers[ext]
	return s, ok
}

// Initialize performs the necessary setup for the repository (mkdir, git init).
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.ReadOnly {
		// Nothing to create; just verify the content root is usable.
		info, err := os.Stat(r.Path)
		if err != nil {
			return fmt.Errorf("content path not readable: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("content path is not a directory: %s", r.Path)
		}
		return nil
	}

	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("content path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("content path is not a directory: %s", r.Path)
		}
	} else {
		if err := os.MkdirAll(r.Path, 0755); err != nil {
			return fmt.Errorf("failed to create content directory: %w", err)
		}
	}

	if !r.config.Gitless {
		if !git.IsInstalled() {
			return fmt.Errorf("git is not installed")
		}

		wasNewRepo := false
		if !r.git.IsRepo() {
			if r.config.AutoInit {
				if err := r.git.Init(); err != nil {
					return fmt.Errorf("failed to git init: %w", err)
				}
				wasNewRepo = true
			} else {
				return fmt.Errorf("path is not a git repository: %s", r.Path)
			}
		}

		mod, err := r.ensureIgnore()
		if err != nil {
			return fmt.Errorf("failed to ensure .gitignore: %w", err)
		}

		if mod && wasNewRepo {
			if err := r.git.Add(".gitignore"); err != nil {
				return fmt.Errorf("failed to add .gitignore: %w", err)
			}
			if err := r.git.Commit(fmt.Sprintf("chore: configure %s ignore", r.config.SystemDir)); err != nil {
				return fmt.Errorf("failed to commit .gitignore: %w", err)
			}
		}
	}

	return nil
}

// ensureIgnore keeps the system directory out of version control.
func (r *Repository) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(r.Path, ".gitignore")
	ignoreEntry := r.config.SystemDir + "/"

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == ignoreEntry {
			return false, nil
		}
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}

	if _, err := f.WriteString(ignoreEntry + "\n"); err != nil {
		return false, err
	}

	return true, nil
}

// Get retrieves a document from the filesystem.
func (r *Repository) Get(ctx context.Context, id string) (core.Document, error) {
	filename := id
	ext := filepath.Ext(id)

	if ext == "" {
		ext = ".md"
		filename = id + ext
	}

	serializer, ok := r.serializerFor(ext)
	if !ok {
		return core.Document{}, fmt.Errorf("unsupported extension %q: %w", ext, core.ErrNotFound)
	}

	fullPath := filepath.Join(r.Path, filename)

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return core.Document{}, fmt.Errorf("%s: %w", id, core.ErrNotFound)
		}
		return core.Document{}, err
	}
	defer f.Close()

	doc, err := serializer.Parse(f)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to parse document %s: %w", id, err)
	}
	doc.ID = strings.TrimSuffix(id, ext)

	return *doc, nil
}

// Save persists a document to the filesystem and commits it to Git.
//
// Workflow:
//  1. Validate ID and resolve the extension.
//  2. Create parent directories.
//  3. Serialize front matter + body and write atomically to disk.
//  4. (If versioned) 'git add' and 'git commit' with the change reason
//     from context.
func (r *Repository) Save(ctx context.Context, doc core.Document) error {
	if doc.ID == "" {
		return core.ErrEmptyID
	}
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}

	filename, serializer, err := r.resolveFile(doc.ID)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(r.Path, filename)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	data, err := serializer.Serialize(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	if err := writeFileAtomic(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	r.cache.Delete(filepath.ToSlash(filename))

	if !r.config.Gitless {
		unlock, err := r.git.Lock()
		if err != nil {
			return fmt.Errorf("failed to acquire git lock: %w", err)
		}
		defer unlock()

		if err := r.git.Add(filename); err != nil {
			return fmt.Errorf("failed to git add: %w", err)
		}

		msg := "update " + doc.ID
		if val, ok := ctx.Value(core.ChangeReasonKey).(string); ok && val != "" {
			msg = val
		}

		if err := r.git.Commit(msg); err != nil {
			return fmt.Errorf("failed to git commit: %w", err)
		}
	}

	return nil
}

// resolveFile maps a document ID to its on-disk filename and serializer.
// IDs without an extension default to Markdown.
func (r *Repository) resolveFile(id string) (string, Serializer, error) {
	filename := id
	ext := filepath.Ext(id)
	if ext == "" {
		ext = ".md"
		filename = id + ext
	}

	serializer, ok := r.serializerFor(ext)
	if !ok {
		return "", nil, fmt.Errorf("unsupported extension %q", ext)
	}
	return filename, serializer, nil
}

// List scans the content directory for all documents.
//
// Strategy:
//  1. Load the metadata index from disk.
//  2. Walk the tree (skipping .git, the system dir and ignore patterns).
//  3. For each article: cache hit on mtime serves the front matter summary
//     without re-parsing; miss does a full parse and updates the index.
//  4. Persist the pruned index.
func (r *Repository) List(ctx context.Context) ([]core.Document, error) {
	var docs []core.Document

	if err := r.cache.Load(); err != nil && r.config.Logger != nil {
		r.config.Logger.Debug("index cache unreadable, rebuilding", "error", err)
	}
	seen := make(map[string]bool)

	err := filepath.WalkDir(r.Path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == r.config.SystemDir {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(d.Name())
		if _, ok := r.serializerFor(ext); !ok {
			return nil
		}

		relPath, err := filepath.Rel(r.Path, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if r.matchesIgnore(relPath) {
			return nil
		}

		id := strings.TrimSuffix(relPath, ext)

		info, err := d.Info()
		if err != nil {
			return nil
		}
		mtime := info.ModTime()

		seen[relPath] = true

		if entry, hit := r.cache.Get(relPath, mtime); hit {
			docs = append(docs, entry.document())
			return nil
		}

		doc, err := r.Get(ctx, relPath)
		if err != nil {
			// Skip unparseable files; the linter surfaces them.
			if r.config.Logger != nil {
				r.config.Logger.Debug("skipping unparseable document", "path", relPath, "error", err)
			}
			return nil
		}

		r.cache.Set(relPath, newIndexEntry(id, doc, mtime))

		docs = append(docs, doc)
		return nil
	})

	if err != nil {
		return nil, err
	}

	r.cache.Prune(seen)
	if !r.config.ReadOnly {
		if err := r.cache.Save(); err != nil && r.config.Logger != nil {
			r.config.Logger.Debug("failed to persist index cache", "error", err)
		}
	}

	return docs, nil
}

// Delete removes a document.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}

	filename := id
	ext := filepath.Ext(id)
	if ext == "" {
		ext = ".md"
		filename = id + ext
	}

	fullPath := filepath.Join(r.Path, filename)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", id, core.ErrNotFound)
	}

	r.cache.Delete(filepath.ToSlash(filename))

	if r.config.Gitless {
		if err := os.Remove(fullPath); err != nil {
			return fmt.Errorf("failed to remove file: %w", err)
		}
		return nil
	}

	unlock, err := r.git.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	if err := r.git.Rm(filename); err != nil {
		return fmt.Errorf("failed to git rm: %w", err)
	}

	if err := r.git.Commit("delete " + id); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}

	return nil
}

// Sync synchronizes the repository with its remote.
func (r *Repository) Sync(ctx context.Context) error {
	if r.config.Gitless {
		return fmt.Errorf("cannot sync in gitless mode")
	}
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}

	if !r.git.IsRepo() {
		return fmt.Errorf("path is not a git repository: %s", r.Path)
	}

	unlock, err := r.git.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	return r.git.Sync()
}

// Watch observes documents matching the glob pattern until ctx is cancelled.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	events := make(chan core.Event, r.config.EventBuffer)
	w := newArticleWatcher(r, pattern, events)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

// Reconcile compares the filesystem against the metadata index and returns
// the events that happened while nobody was watching (e.g. during a git
// operation). It refreshes the index as a side effect.
func (r *Repository) Reconcile(ctx context.Context) ([]core.Event, error) {
	before := make(map[string]time.Time)
	r.cache.Range(func(relPath string, entry *indexEntry) bool {
		before[relPath] = entry.LastModified
		return true
	})

	current := make(map[string]time.Time)
	err := filepath.WalkDir(r.Path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == r.config.SystemDir {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(d.Name())
		if _, ok := r.serializerFor(ext); !ok {
			return nil
		}
		relPath, err := filepath.Rel(r.Path, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		if r.matchesIgnore(relPath) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		current[relPath] = info.ModTime()
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	var events []core.Event

	for relPath, mtime := range current {
		id := strings.TrimSuffix(relPath, filepath.Ext(relPath))
		prev, existed := before[relPath]
		switch {
		case !existed:
			events = append(events, core.Event{Type: core.EventCreate, ID: id, Timestamp: now})
		case !prev.Equal(mtime):
			events = append(events, core.Event{Type: core.EventModify, ID: id, Timestamp: now})
		}
	}
	for relPath := range before {
		if _, ok := current[relPath]; !ok {
			id := strings.TrimSuffix(relPath, filepath.Ext(relPath))
			events = append(events, core.Event{Type: core.EventDelete, ID: id, Timestamp: now})
		}
	}

	// Refresh the index so the next reconcile diffs against reality.
	if _, err := r.List(ctx); err != nil {
		return events, err
	}
	r.recordReconcile()

	return events, nil
}

// --- Watch helpers ---

// matchesIgnore reports whether the relative path hits an ignore pattern.
func (r *Repository) matchesIgnore(relPath string) bool {
	for _, pattern := range r.config.Ignore {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
	}
	return false
}

// shouldIgnore filters watcher events down to documents the caller asked for.
func (r *Repository) shouldIgnore(event fsnotify.Event, pattern string) bool {
	base := filepath.Base(event.Name)

	if strings.HasPrefix(base, TempFilePrefix) {
		return true
	}
	if base == r.config.SystemDir+".lock" || base == ".gitignore" {
		return true
	}

	relPath, err := filepath.Rel(r.Path, event.Name)
	if err != nil {
		return true
	}
	relPath = filepath.ToSlash(relPath)

	for _, part := range strings.Split(relPath, "/") {
		if part == ".git" || part == r.config.SystemDir {
			return true
		}
	}

	if r.matchesIgnore(relPath) {
		return true
	}

	// Directory events pass through so the watcher can add new subtrees;
	// file events must carry a supported extension.
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		return false
	}
	ext := filepath.Ext(base)
	if _, ok := r.serializerFor(ext); !ok {
		return true
	}

	if pattern != "" {
		if ok, err := doublestar.Match(pattern, relPath); err != nil || !ok {
			return true
		}
	}

	return false
}

// mapEventType translates fsnotify operations to domain events.
func (r *Repository) mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	default:
		return ""
	}
}

// resolveID maps an absolute file path back to a document ID.
func (r *Repository) resolveID(path string) (string, error) {
	relPath, err := filepath.Rel(r.Path, path)
	if err != nil {
		return "", err
	}
	relPath = filepath.ToSlash(relPath)
	return strings.TrimSuffix(relPath, filepath.Ext(relPath)), nil
}

// recursiveAdd registers the content tree with the watcher.
func (r *Repository) recursiveAdd(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(r.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" || d.Name() == r.config.SystemDir {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// --- Index helpers ---

// newIndexEntry summarizes a document for the metadata index.
func newIndexEntry(id string, doc core.Document, mtime time.Time) *indexEntry {
	fm := core.FrontMatterOf(doc)
	return &indexEntry{
		ID:           id,
		Title:        fm.Title,
		Description:  fm.Description,
		Date:         fm.Date,
		Tags:         fm.Tags,
		Draft:        fm.Draft,
		LastModified: mtime,
	}
}

// document reconstructs the listing view of a cached article.
// The body is not cached; callers needing content use Get.
func (e *indexEntry) document() core.Document {
	meta := core.Metadata{}
	if e.Title != "" {
		meta["title"] = e.Title
	}
	if e.Description != "" {
		meta["description"] = e.Description
	}
	if !e.Date.IsZero() {
		meta["date"] = e.Date
	}
	if len(e.Tags) > 0 {
		tags := make([]any, len(e.Tags))
		for i, t := range e.Tags {
			tags[i] = t
		}
		meta["tags"] = tags
	}
	if e.Draft {
		meta["draft"] = true
	}
	return core.Document{ID: e.ID, Metadata: meta}
}

// IsGitInstalled checks if git is available in the system path.
func IsGitInstalled() bool {
	return git.IsInstalled()
}
