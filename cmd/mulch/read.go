package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mulch"
	"github.com/aretw0/mulch/pkg/markdown"
)

var (
	readRoot string
	readJSON bool
	readHTML bool
)

var readCmd = &cobra.Command{
	Use:   "read [id]",
	Short: "Read an article",
	Long: `Read an article by its ID. Outputs raw markdown by default, the
rendered HTML body with --html, or the full document as JSON with --json.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]

		svc, err := mulch.New(contentDir(readRoot),
			mulch.WithVersioning(false),
			mulch.WithMustExist(true),
			mulch.WithLogger(slog.Default()),
			mulch.WithDevSafety(false),
		)
		if err != nil {
			fatal("Failed to initialize mulch", err)
		}

		doc, err := svc.GetDocument(context.Background(), id)
		if err != nil {
			fatal("Failed to read article", err)
		}

		switch {
		case readJSON:
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(doc); err != nil {
				fatal("Failed to encode JSON", err)
			}
		case readHTML:
			fmt.Print(markdown.RenderHTML(markdown.Parse(doc.Content)))
		default:
			fmt.Print(doc.Content)
		}
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().StringVar(&readRoot, "root", "", "Content root (defaults to the nearest root indicator)")
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Output in JSON format")
	readCmd.Flags().BoolVar(&readHTML, "html", false, "Output the rendered HTML body")
}
