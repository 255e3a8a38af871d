package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/spf13/cobra"

	"github.com/aretw0/mulch"
	"github.com/aretw0/mulch/pkg/site"
)

var (
	serveRoot   string
	serveAddr   string
	serveDrafts bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build, serve, and rebuild on change",
	Long: `Serve builds the site, starts a local preview server over the output
directory, and watches the content directory: edits trigger incremental
rebuilds of the affected pages.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		root := contentRoot(serveRoot)

		cfg, err := site.LoadConfig(root)
		if err != nil {
			fatal("Failed to load site config", err)
		}
		if serveDrafts {
			cfg.BuildDrafts = true
		}
		// The preview server serves from the site root.
		cfg.BaseURL = "/"

		svc, err := mulch.New(cfg.ContentDir,
			mulch.WithVersioning(!gitless),
			mulch.WithMustExist(true),
			mulch.WithLogger(slog.Default()),
			mulch.WithDevSafety(false),
		)
		if err != nil {
			fatal("Failed to initialize mulch", err)
		}

		builder := site.NewBuilder(svc, cfg, slog.Default())

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if _, err := builder.Build(ctx); err != nil {
			fatal("Initial build failed", err)
		}

		events, err := svc.Watch(ctx, "**/*")
		if err != nil {
			fatal("Failed to watch content directory", err)
		}

		lifecycle.Go(ctx, func(ctx context.Context) error {
			return builder.Watch(ctx, events)
		})

		server := &http.Server{
			Addr:    serveAddr,
			Handler: http.FileServer(http.Dir(cfg.OutputDir)),
		}

		lifecycle.Go(ctx, func(ctx context.Context) error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})

		slog.Info("preview server running", "addr", serveAddr, "dir", cfg.OutputDir)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("Server failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveRoot, "root", "", "Content root (defaults to the nearest root indicator)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:1313", "Listen address for the preview server")
	serveCmd.Flags().BoolVar(&serveDrafts, "drafts", false, "Include draft articles")
}
