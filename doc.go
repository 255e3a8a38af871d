// Package mulch is the Composition Root for the mulch publishing engine.
//
// It connects the core business logic (Domain Layer) with the
// infrastructure adapters (Persistence Layer) using the Hexagonal
// Architecture pattern.
//
// Philosophy:
//
// Mulch turns a directory of Markdown articles into a static site. Each
// article is a YAML front matter block (title, date, description) followed
// by prose and fenced code samples whose info strings may carry display
// annotations: highlighted line ranges and line-number gutters. Mulch
// loads the articles, lints the publication contract, renders the bodies
// to HTML, and rebuilds incrementally as files change.
//
// Features:
//
//   - **Hexagonal Architecture**: Core domain is isolated from persistence details.
//   - **Front Matter First**: Native parsing and indexing of article metadata.
//   - **Annotated Code Fences**: `js {1,3-5}{numberLines: true}` highlight hints.
//   - **Lint Pass**: front matter completeness and fence annotation sanity.
//   - **Default Adapter (FS + Git)**: local Markdown files with optional Git versioning.
//   - **Live Rebuild**: fsnotify-driven incremental builds.
//
// Usage:
//
//	// Initialize service with functional options
//	svc, err := mulch.New("./content",
//		mulch.WithAutoInit(true),
//		mulch.WithLogger(logger),
//	)
//
//	// Read an article
//	doc, err := svc.GetDocument(ctx, "regex/lookahead")
package mulch
