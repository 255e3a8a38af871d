package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/mulch"
	"github.com/aretw0/mulch/pkg/site"
)

var (
	buildRoot   string
	buildOutput string
	buildDrafts bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the site to static HTML",
	Long: `Build loads every article under the content directory, lints the
publication contract, renders article pages plus the index, and writes the
result to the output directory. Articles with lint errors are skipped.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		root := contentRoot(buildRoot)

		cfg, err := site.LoadConfig(root)
		if err != nil {
			fatal("Failed to load site config", err)
		}
		if buildOutput != "" {
			cfg.OutputDir = buildOutput
		}
		if buildDrafts {
			cfg.BuildDrafts = true
		}

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
		result, err := builder.Build(context.Background())
		if err != nil {
			fatal("Build failed", err)
		}

		cmd.Printf("Built %d page(s), skipped %d, %d lint finding(s).\n",
			result.Pages, result.Skipped, len(result.Issues))
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildRoot, "root", "", "Content root (defaults to the nearest root indicator)")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Output directory (overrides site config)")
	buildCmd.Flags().BoolVar(&buildDrafts, "drafts", false, "Include draft articles")
}
