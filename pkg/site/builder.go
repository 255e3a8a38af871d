package site

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/mulch/pkg/core"
	"github.com/aretw0/mulch/pkg/lint"
	"github.com/aretw0/mulch/pkg/markdown"
)

// Builder renders a content repository into a static site.
// Rendering is a single synchronous pass per document; the only
// concurrency around a Builder is the watch loop that calls Rebuild.
type Builder struct {
	svc    *core.Service
	cfg    Config
	logger *slog.Logger
}

// BuildResult summarizes a full build.
type BuildResult struct {
	Pages   int
	Skipped int
	Issues  []lint.Issue
}

// NewBuilder creates a Builder over the given document service.
func NewBuilder(svc *core.Service, cfg Config, logger *slog.Logger) *Builder {
	return &Builder{svc: svc, cfg: cfg, logger: logger}
}

// Build renders every publishable document plus the index page and the
// stylesheet. Documents with lint errors are skipped and reported; the
// build itself fails only on I/O or template problems.
func (b *Builder) Build(ctx context.Context) (*BuildResult, error) {
	docs, err := b.svc.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	result := &BuildResult{}
	var published []articlePage

	for _, doc := range docs {
		if !b.selected(doc.ID) {
			continue
		}

		fm := core.FrontMatterOf(doc)
		if fm.Draft && !b.cfg.BuildDrafts {
			if b.logger != nil {
				b.logger.Debug("skipping draft", "id", doc.ID)
			}
			result.Skipped++
			continue
		}

		// Listings come from the metadata index without content; pull the
		// full document for rendering.
		full, err := b.svc.GetDocument(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", doc.ID, err)
		}

		issues := lint.Check(full)
		result.Issues = append(result.Issues, issues...)
		if lint.HasErrors(issues) {
			if b.logger != nil {
				b.logger.Warn("skipping document with lint errors", "id", doc.ID, "issues", len(issues))
			}
			result.Skipped++
			continue
		}
		for _, issue := range issues {
			if b.logger != nil {
				b.logger.Warn("lint", "issue", issue.String())
			}
		}

		page, err := b.renderDocument(full)
		if err != nil {
			return nil, err
		}

		published = append(published, page)
		result.Pages++
	}

	if err := b.writeIndex(published); err != nil {
		return nil, err
	}
	if err := b.writeOutput("style.css", []byte(stylesheet)); err != nil {
		return nil, err
	}

	if b.logger != nil {
		b.logger.Info("site built", "pages", result.Pages, "skipped", result.Skipped, "output", b.cfg.OutputDir)
	}

	return result, nil
}

// Rebuild applies a single watch event incrementally: deletions remove the
// page, everything else re-renders the document and the index. The same
// publication gates as Build apply, so a document that is excluded or has
// turned into a draft loses its page instead of being re-rendered.
func (b *Builder) Rebuild(ctx context.Context, event core.Event) error {
	if event.Type == core.EventDelete {
		return b.removePage(ctx, event.ID)
	}

	if !b.selected(event.ID) {
		return b.removePage(ctx, event.ID)
	}

	full, err := b.svc.GetDocument(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", event.ID, err)
	}

	if fm := core.FrontMatterOf(full); fm.Draft && !b.cfg.BuildDrafts {
		if b.logger != nil {
			b.logger.Debug("unpublishing draft", "id", event.ID)
		}
		return b.removePage(ctx, event.ID)
	}

	if issues := lint.Check(full); lint.HasErrors(issues) {
		if b.logger != nil {
			for _, issue := range issues {
				b.logger.Warn("lint", "issue", issue.String())
			}
		}
		return nil
	}

	if _, err := b.renderDocument(full); err != nil {
		return err
	}

	return b.rebuildIndex(ctx)
}

// Watch runs the builder against a stream of change events until ctx ends.
func (b *Builder) Watch(ctx context.Context, events <-chan core.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if b.logger != nil {
				b.logger.Info("change detected", "event", event.String())
			}
			if err := b.Rebuild(ctx, event); err != nil {
				if b.logger != nil {
					b.logger.Error("rebuild failed", "id", event.ID, "error", err)
				}
			}
		}
	}
}

// renderDocument renders one article page to disk and returns its listing
// entry.
func (b *Builder) renderDocument(doc core.Document) (articlePage, error) {
	fm := core.FrontMatterOf(doc)
	blocks := markdown.Parse(doc.Content)

	page := articlePage{
		Site:        b.sitePage(),
		ID:          doc.ID,
		Title:       fm.Title,
		Description: fm.Description,
		Content:     renderedHTML(blocks),
	}
	if !fm.Date.IsZero() {
		page.DateISO = fm.Date.Format(time.RFC3339)
		page.DateDisplay = fm.Date.Format(b.dateFormat())
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, page); err != nil {
		return articlePage{}, fmt.Errorf("failed to render %s: %w", doc.ID, err)
	}

	target := filepath.Join(filepath.FromSlash(doc.ID), "index.html")
	if err := b.writeOutput(target, buf.Bytes()); err != nil {
		return articlePage{}, err
	}

	return page, nil
}

// removePage drops a document's rendered page and refreshes the index.
func (b *Builder) removePage(ctx context.Context, id string) error {
	if err := os.RemoveAll(filepath.Join(b.cfg.OutputDir, filepath.FromSlash(id))); err != nil {
		return fmt.Errorf("failed to remove page for %s: %w", id, err)
	}
	return b.rebuildIndex(ctx)
}

// rebuildIndex regenerates only the front page, for incremental rebuilds.
func (b *Builder) rebuildIndex(ctx context.Context) error {
	docs, err := b.svc.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	var published []articlePage
	for _, doc := range docs {
		if !b.selected(doc.ID) {
			continue
		}
		fm := core.FrontMatterOf(doc)
		if fm.Draft && !b.cfg.BuildDrafts {
			continue
		}
		page := articlePage{
			Site:        b.sitePage(),
			ID:          doc.ID,
			Title:       fm.Title,
			Description: fm.Description,
		}
		if !fm.Date.IsZero() {
			page.DateISO = fm.Date.Format(time.RFC3339)
			page.DateDisplay = fm.Date.Format(b.dateFormat())
		}
		published = append(published, page)
	}

	return b.writeIndex(published)
}

func (b *Builder) writeIndex(articles []articlePage) error {
	var buf bytes.Buffer
	err := indexTmpl.Execute(&buf, indexPage{Site: b.sitePage(), Articles: articles})
	if err != nil {
		return fmt.Errorf("failed to render index: %w", err)
	}
	return b.writeOutput("index.html", buf.Bytes())
}

// writeOutput writes a file under OutputDir atomically (temp + rename).
func (b *Builder) writeOutput(relPath string, data []byte) error {
	target := filepath.Join(b.cfg.OutputDir, relPath)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "mulch-out-*")
	if err != nil {
		return fmt.Errorf("failed to create temp output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", relPath, err)
	}
	return nil
}

// selected applies the include/exclude patterns to a document ID.
func (b *Builder) selected(id string) bool {
	included := len(b.cfg.Include) == 0
	for _, pattern := range b.cfg.Include {
		if ok, err := doublestar.Match(pattern, id); err == nil && ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pattern := range b.cfg.Exclude {
		if ok, err := doublestar.Match(pattern, id); err == nil && ok {
			return false
		}
	}
	return true
}

func (b *Builder) sitePage() sitePage {
	return sitePage{Title: b.cfg.Title, BaseURL: b.cfg.BaseURL}
}

func (b *Builder) dateFormat() string {
	if b.cfg.DateFormat != "" {
		return b.cfg.DateFormat
	}
	return DefaultConfig().DateFormat
}
