package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mulch"
	"github.com/aretw0/mulch/pkg/site"
)

var (
	verbose bool
	gitless bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mulch",
	Short: "A publishing engine for Markdown articles with annotated code fences",
	Long: `Mulch turns a directory of Markdown articles into a static site.
Articles carry YAML front matter (title, date, description) and code fences
with highlight annotations; mulch loads, lints, and renders them.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&gitless, "gitless", false, "Disable git versioning")
}

// contentRoot resolves the directory mulch operates on: an explicit --root
// wins, then the nearest directory carrying a root indicator, then cwd.
func contentRoot(explicit string) string {
	if explicit != "" {
		return explicit
	}

	wd, err := os.Getwd()
	if err != nil {
		fatal("Failed to get working directory", err)
	}

	if root, err := mulch.FindContentRoot(wd); err == nil {
		return root
	}
	return wd
}

// contentDir resolves the directory articles actually live in: the site
// config at the content root decides (default "<root>/content"). Every
// content-facing command goes through here so article IDs mean the same
// thing in new, list, read, lint, build and serve.
func contentDir(explicit string) string {
	cfg, err := site.LoadConfig(contentRoot(explicit))
	if err != nil {
		fatal("Failed to load site config", err)
	}
	return cfg.ContentDir
}
