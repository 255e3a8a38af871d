package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mulch"
	"github.com/aretw0/mulch/pkg/core"
)

var (
	listRoot   string
	listJSON   bool
	listTag    string
	listDrafts bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List articles, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := mulch.New(contentDir(listRoot),
			mulch.WithVersioning(false),
			mulch.WithMustExist(true),
			mulch.WithLogger(slog.Default()),
			mulch.WithDevSafety(false),
		)
		if err != nil {
			fatal("Failed to initialize mulch", err)
		}

		ctx := context.Background()
		var docs []core.Document
		if listTag != "" {
			docs, err = svc.ListByTag(ctx, listTag)
		} else {
			docs, err = svc.ListDocuments(ctx)
		}
		if err != nil {
			fatal("Failed to list articles", err)
		}

		if !listDrafts {
			var published []core.Document
			for _, doc := range docs {
				if !core.FrontMatterOf(doc).Draft {
					published = append(published, doc)
				}
			}
			docs = published
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(docs); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		for _, doc := range docs {
			fm := core.FrontMatterOf(doc)
			date := ""
			if !fm.Date.IsZero() {
				date = fm.Date.Format("2006-01-02")
			}
			fmt.Printf("%-10s  %-40s  %s\n", date, doc.ID, fm.Title)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listRoot, "root", "", "Content root (defaults to the nearest root indicator)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter articles by tag")
	listCmd.Flags().BoolVar(&listDrafts, "drafts", false, "Include draft articles")
}
