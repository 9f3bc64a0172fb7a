package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API and database health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := opts.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd, h)
			}
			printLine(cmd, renderTable(
				[]string{"Status", "Database", "Time"},
				[][]string{{h.Status, h.Database, h.Time}},
			))
			return nil
		},
	}
}

func newSoundboardsCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "soundboards",
		Aliases: []string{"sb"},
		Short:   "List, create and delete soundboards",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <email>",
		Short: "List an owner's soundboards with audio status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := opts.client().ListSoundboards(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd, views)
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{
					v.ID,
					truncate(v.Title, 32),
					string(v.FileStatus),
					v.CreatedAt.Local().Format(time.DateTime),
				})
			}
			printLine(cmd, renderTable([]string{"ID", "Title", "Audio", "Created"}, rows))
			return nil
		},
	})

	var title, text, email string
	create := &cobra.Command{
		Use:   "create",
		Short: "Synthesize text and store it as a soundboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sb, err := opts.client().CreateSoundboard(cmd.Context(), title, text, email)
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd, sb)
			}
			printLine(cmd, fmt.Sprintf("created %s -> %s", sb.ID, sb.AudioURL))
			return nil
		},
	}
	create.Flags().StringVar(&title, "title", "", "Soundboard title")
	create.Flags().StringVar(&text, "text", "", "Text to synthesize")
	create.Flags().StringVar(&email, "email", "", "Owner email")
	for _, f := range []string{"title", "text", "email"} {
		_ = create.MarkFlagRequired(f)
	}
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a soundboard and its audio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().DeleteSoundboard(cmd.Context(), args[0]); err != nil {
				return err
			}
			printLine(cmd, "deleted "+args[0])
			return nil
		},
	})
	return cmd
}

func newHistoryCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect chat histories",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <email>",
		Short: "Show a history and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := opts.client().GetHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd, conv)
			}
			printLine(cmd, fmt.Sprintf("%s (%s)", conv.History.Title, conv.History.Email))
			rows := make([][]string, 0, len(conv.Messages))
			for _, m := range conv.Messages {
				source := "typed"
				if m.IsSpeechToText {
					source = "speech"
				}
				rows = append(rows, []string{m.CreatedAt.Local().Format(time.DateTime), source, truncate(m.Message, 60)})
			}
			printLine(cmd, renderTable([]string{"Time", "Source", "Message"}, rows))
			return nil
		},
	})
	return cmd
}

func newReportsCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Browse submitted reports",
	}
	var page, limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client().ListReports(cmd.Context(), page, limit)
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd, res)
			}
			rows := make([][]string, 0, len(res.Reports))
			for _, r := range res.Reports {
				rows = append(rows, []string{r.CreatedAt.Local().Format(time.DateTime), truncate(r.Comment, 70)})
			}
			printLine(cmd, renderTable([]string{"Created", "Comment"}, rows))
			p := res.Pagination
			printLine(cmd, fmt.Sprintf("page %d of %d (%d total)", p.Page, p.TotalPages, p.Total))
			return nil
		},
	}
	list.Flags().IntVar(&page, "page", 1, "Page number")
	list.Flags().IntVar(&limit, "limit", 10, "Reports per page (max 100)")
	cmd.AddCommand(list)
	return cmd
}

func newFeedbackCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Submit feedback",
	}
	var comment string
	var rating int
	send := &cobra.Command{
		Use:   "send",
		Short: "Send a comment with a 1-4 rating",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.client().SubmitFeedback(cmd.Context(), comment, rating)
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd, f)
			}
			printLine(cmd, "feedback #"+strconv.FormatUint(uint64(f.ID), 10)+" recorded")
			return nil
		},
	}
	send.Flags().StringVar(&comment, "comment", "", "Feedback comment")
	send.Flags().IntVar(&rating, "rating", 0, "Rating from 1 to 4")
	_ = send.MarkFlagRequired("comment")
	_ = send.MarkFlagRequired("rating")
	cmd.AddCommand(send)
	return cmd
}
