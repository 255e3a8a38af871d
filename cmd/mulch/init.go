package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mulch"
	"github.com/aretw0/mulch/pkg/site"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a mulch content repository",
	Long: `Initialize a new content repository in the current directory: creates
the system directory, a default site config, and runs 'git init' unless
--gitless is set.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fatal("Failed to get CWD", err)
		}

		_, err = mulch.Init(cwd,
			mulch.WithAutoInit(true),
			mulch.WithVersioning(!gitless),
			mulch.WithLogger(slog.Default()),
			mulch.WithDevSafety(false),
		)
		if err != nil {
			fatal("Failed to initialize repository", err)
		}

		if !site.ConfigExists(cwd) {
			if err := site.WriteDefaultConfig(cwd); err != nil {
				fatal("Failed to write site config", err)
			}
		}

		// The content dir from the site config is where every content
		// command operates; make sure it exists from the start.
		cfg, err := site.LoadConfig(cwd)
		if err != nil {
			fatal("Failed to load site config", err)
		}
		if err := os.MkdirAll(cfg.ContentDir, 0755); err != nil {
			fatal("Failed to create content directory", err)
		}

		fmt.Println("Initialized mulch content repository in", cwd)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
