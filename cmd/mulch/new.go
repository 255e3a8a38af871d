package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/mulch"
	"github.com/aretw0/mulch/pkg/core"
)

var (
	newRoot        string
	newTitle       string
	newDescription string
	newTags        []string
	newDraft       bool
	newMessage     string
)

// newCmd scaffolds articles with a complete front matter block so the
// lint pass starts green.
var newCmd = &cobra.Command{
	Use:   "new [id]...",
	Short: "Scaffold new articles",
	Long: `New creates one or more articles with a filled-in front matter block
(title, date, description). When versioning is enabled the whole scaffold
lands as a single commit.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := mulch.New(contentDir(newRoot),
			mulch.WithVersioning(!gitless),
			mulch.WithMustExist(true),
			mulch.WithLogger(slog.Default()),
			mulch.WithDevSafety(false),
		)
		if err != nil {
			fatal("Failed to initialize mulch", err)
		}

		subject := fmt.Sprintf("add %s", args[0])
		if len(args) > 1 {
			subject = fmt.Sprintf("add %d articles", len(args))
		}

		var finalMsg string
		if newMessage != "" {
			finalMsg = mulch.AppendFooter(newMessage)
		} else {
			finalMsg = mulch.FormatCommitMessage(mulch.CommitTypeContent, "articles", subject, "")
		}

		ctx := context.WithValue(context.Background(), core.ChangeReasonKey, finalMsg)
		err = svc.WithTransaction(ctx, func(tx core.Transaction) error {
			for _, id := range args {
				title := newTitle
				if title == "" {
					title = id
				}

				metadata := core.Metadata{
					"title":       title,
					"date":        time.Now().Format("2006-01-02"),
					"description": newDescription,
				}
				if len(newTags) > 0 {
					metadata["tags"] = newTags
				}
				if newDraft {
					metadata["draft"] = true
				}

				doc := core.Document{
					ID:       id,
					Content:  fmt.Sprintf("## %s\n\nWrite here.\n", title),
					Metadata: metadata,
				}
				if err := tx.Save(ctx, doc); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			fatal("Failed to create articles", err)
		}

		for _, id := range args {
			fmt.Printf("Article '%s' created.\n", id)
		}
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVar(&newRoot, "root", "", "Content root (defaults to the nearest root indicator)")
	newCmd.Flags().StringVar(&newTitle, "title", "", "Article title (defaults to the ID)")
	newCmd.Flags().StringVar(&newDescription, "description", "", "Article description")
	newCmd.Flags().StringSliceVar(&newTags, "tag", nil, "Article tags (repeatable)")
	newCmd.Flags().BoolVar(&newDraft, "draft", false, "Mark the articles as drafts")
	newCmd.Flags().StringVarP(&newMessage, "message", "m", "", "Commit message (audit note)")
}
