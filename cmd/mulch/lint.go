package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mulch"
	"github.com/aretw0/mulch/pkg/lint"
)

var (
	lintRoot string
	lintJSON bool
)

var lintCmd = &cobra.Command{
	Use:   "lint [id]",
	Short: "Check articles against the publication contract",
	Long: `Lint verifies front matter completeness and code fence annotations
for every article, or for a single article when an ID is given. Exits
non-zero when any error-severity finding is present.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := mulch.New(contentDir(lintRoot),
			mulch.WithVersioning(false),
			mulch.WithMustExist(true),
			mulch.WithLogger(slog.Default()),
			mulch.WithDevSafety(false),
		)
		if err != nil {
			fatal("Failed to initialize mulch", err)
		}

		ctx := context.Background()
		var issues []lint.Issue

		if len(args) == 1 {
			doc, err := svc.GetDocument(ctx, args[0])
			if err != nil {
				fatal("Failed to read article", err)
			}
			issues = lint.Check(doc)
		} else {
			docs, err := svc.ListDocuments(ctx)
			if err != nil {
				fatal("Failed to list articles", err)
			}
			for _, summary := range docs {
				// Listings carry metadata only; lint needs the body.
				doc, err := svc.GetDocument(ctx, summary.ID)
				if err != nil {
					fatal("Failed to read article", err)
				}
				issues = append(issues, lint.Check(doc)...)
			}
		}

		if lintJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(issues); err != nil {
				fatal("Failed to encode JSON", err)
			}
		} else {
			for _, issue := range issues {
				fmt.Println(issue.String())
			}
			if len(issues) == 0 {
				fmt.Println("No findings.")
			}
		}

		if lint.HasErrors(issues) {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
	lintCmd.Flags().StringVar(&lintRoot, "root", "", "Content root (defaults to the nearest root indicator)")
	lintCmd.Flags().BoolVar(&lintJSON, "json", false, "Output in JSON format")
}
