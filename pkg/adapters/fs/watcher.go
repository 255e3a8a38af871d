package fs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/mulch/pkg/core"
)

// articleWatcher turns raw fsnotify traffic into article change events on
// the repository's Watch channel. Editors save in bursts (temp files,
// double writes), so events are debounced per article before they reach
// the channel.
//
// Git gets special treatment: while .git/index.lock exists a commit, pull
// or checkout is rewriting the tree, so the stream pauses; when the lock
// clears the watcher reconciles the metadata index against the tree and
// emits whatever changed in the meantime.
type articleWatcher struct {
	*worker.BaseWorker
	repo    *Repository
	pattern string
	events  chan core.Event
	fsn     *fsnotify.Watcher
	burst   *debouncer
	cancel  context.CancelFunc
}

func newArticleWatcher(repo *Repository, pattern string, events chan core.Event) *articleWatcher {
	return &articleWatcher{
		BaseWorker: worker.NewBaseWorker("article-watcher"),
		repo:       repo,
		pattern:    pattern,
		events:     events,
	}
}

func (w *articleWatcher) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if status := w.State().Status; status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	fsn, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := w.repo.recursiveAdd(fsn); err != nil {
		_ = fsn.Close()
		return err
	}

	// .git is watched only for index.lock transitions.
	_ = fsn.Add(filepath.Join(w.repo.Path, ".git"))

	w.fsn = fsn
	w.burst = newDebouncer(50 * time.Millisecond)
	w.repo.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *articleWatcher) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *articleWatcher) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

// run owns the event loop. Panics are contained here, and the events
// channel closes only after in-flight debounce timers have drained.
func (w *articleWatcher) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			w.logPanic(ctx, recovered)
		}
	}()
	defer w.repo.setWatcherActive(false)
	defer w.fsn.Close()

	err = w.loop(ctx)

	w.burst.stopAndWait(5 * time.Second)
	close(w.events)

	return err
}

func (w *articleWatcher) loop(ctx context.Context) error {
	paused := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsn.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}

			if w.isGitLock(event) {
				wasPaused := paused
				paused = w.gitLockHeld(event, paused)
				if wasPaused && !paused {
					w.catchUp(ctx)
				}
				continue
			}
			if paused {
				continue
			}

			w.emit(ctx, event)

		case watchErr, ok := <-w.fsn.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.report(watchErr)
		}
	}
}

// isGitLock reports whether the event concerns .git/index.lock.
func (w *articleWatcher) isGitLock(event fsnotify.Event) bool {
	return filepath.Base(event.Name) == "index.lock" &&
		filepath.Base(filepath.Dir(event.Name)) == ".git"
}

// gitLockHeld tracks the lock state across its lifecycle: Create pauses the
// stream, Remove/Rename resumes it, anything else leaves it as-is.
func (w *articleWatcher) gitLockHeld(event fsnotify.Event, current bool) bool {
	switch {
	case event.Has(fsnotify.Create):
		if !current && w.repo.config.Logger != nil {
			w.repo.config.Logger.Debug("git operation started, pausing article watch")
		}
		return true
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if current && w.repo.config.Logger != nil {
			w.repo.config.Logger.Debug("git operation finished, reconciling articles")
		}
		return false
	default:
		return current
	}
}

// catchUp replays whatever the paused stream missed: the repository diffs
// the metadata index against the tree and the resulting events are emitted
// as if they had been watched live.
func (w *articleWatcher) catchUp(ctx context.Context) {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		missed, err := w.repo.Reconcile(ctx)
		if err != nil {
			if w.repo.config.Logger != nil {
				w.repo.config.Logger.Error("reconcile failed", "error", err)
			}
			return err
		}
		for _, e := range missed {
			w.send(ctx, e)
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		if w.repo.config.ErrorHandler != nil {
			w.repo.config.ErrorHandler(fmt.Errorf("reconcile panic: %w", err))
		} else if w.repo.config.Logger != nil {
			w.repo.config.Logger.Error("reconcile panic", "error", err)
		}
	}))
}

// emit filters a raw filesystem event down to an article change and queues
// it for delivery.
func (w *articleWatcher) emit(ctx context.Context, event fsnotify.Event) {
	if w.repo.config.Logger != nil {
		w.repo.config.Logger.Debug("event received", "name", event.Name)
	}

	if w.repo.shouldIgnore(event, w.pattern) {
		return
	}

	eventType := w.repo.mapEventType(event)
	if eventType == "" {
		return
	}

	id, err := w.repo.resolveID(event.Name)
	if err != nil {
		if w.repo.config.ErrorHandler != nil {
			w.repo.config.ErrorHandler(fmt.Errorf("failed to resolve ID for %s: %w", event.Name, err))
		} else if w.repo.config.Logger != nil {
			w.repo.config.Logger.Debug("resolveID failed", "path", event.Name, "err", err)
		}
		return
	}

	w.send(ctx, core.Event{
		Type:      eventType,
		ID:        id,
		Timestamp: time.Now().Unix(),
	})
}

// send debounces the event per article and delivers it, tolerating the
// channel closing underneath a late timer during shutdown.
func (w *articleWatcher) send(ctx context.Context, event core.Event) {
	w.burst.add(event, func(e core.Event) {
		defer func() {
			_ = recover()
		}()
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}

func (w *articleWatcher) report(err error) {
	if w.repo.config.Logger != nil {
		w.repo.config.Logger.Error("fsnotify error", "error", err)
	}
	if w.repo.config.ErrorHandler != nil {
		w.repo.config.ErrorHandler(err)
	}
}

func (w *articleWatcher) logPanic(ctx context.Context, recovered any) {
	logger := w.repo.config.Logger
	if logger == nil {
		return
	}

	panicErr := fmt.Errorf("watcher panic: %v", recovered)
	if logger.Enabled(ctx, slog.LevelDebug) {
		logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
		return
	}
	logger.Error("watcher panic", "error", panicErr)
}
