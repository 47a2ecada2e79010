package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/report"
)

func newJournalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Write and search diary entries",
		Long: `Keep dated notes alongside the trades.

Examples:
  tradejournal journal add --title "Tuesday" --content "Stuck to the plan" --mood calm
  tradejournal journal search plan
  tradejournal journal show <entry-id>`,
	}
	cmd.AddCommand(
		newJournalAddCmd(a),
		newJournalEditCmd(a),
		newJournalDeleteCmd(a),
		newJournalListCmd(a),
		newJournalSearchCmd(a),
		newJournalShowCmd(a),
	)
	return cmd
}

type entryFlags struct {
	title, content, mood string
	tags, attachments    []string
}

func (f *entryFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.title, "title", "", "entry title")
	fl.StringVar(&f.content, "content", "", "entry text")
	fl.StringVar(&f.mood, "mood", "", "how the session felt")
	fl.StringSliceVar(&f.tags, "tags", nil, "comma separated tags")
	fl.StringSliceVar(&f.attachments, "attach", nil, "attachment reference (repeatable)")
}

func (f *entryFlags) apply(cmd *cobra.Command, d *journal.Draft) {
	fl := cmd.Flags()
	if fl.Changed("title") {
		d.Title = f.title
	}
	if fl.Changed("content") {
		d.Content = f.content
	}
	if fl.Changed("mood") {
		d.Mood = f.mood
	}
	if fl.Changed("tags") {
		d.Tags = f.tags
	}
	if fl.Changed("attach") {
		d.Attachments = f.attachments
	}
}

func newJournalAddCmd(a *app) *cobra.Command {
	var f entryFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Write a new entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var d journal.Draft
			f.apply(cmd, &d)
			e, err := a.ledger.SaveEntry(d, 0)
			if err != nil {
				return fmt.Errorf("save entry: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved entry %d\n", e.ID)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newJournalEditCmd(a *app) *cobra.Command {
	var f entryFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an entry; its date is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := parseID(args[0])
			if err != nil {
				return err
			}
			cur, ok := a.ledger.Journal().Get(entryID)
			if !ok {
				return fmt.Errorf("edit %d: %w", entryID, journal.ErrEntryNotFound)
			}
			d := journal.Draft{
				Title:       cur.Title,
				Content:     cur.Content,
				Mood:        cur.Mood,
				Tags:        cur.Tags,
				Attachments: cur.Attachments,
			}
			f.apply(cmd, &d)
			if _, err := a.ledger.SaveEntry(d, entryID); err != nil {
				return fmt.Errorf("save entry: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated entry %d\n", entryID)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newJournalDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.ledger.DeleteEntry(entryID); err != nil {
				return fmt.Errorf("delete entry: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted entry %d\n", entryID)
			return nil
		},
	}
}

func newJournalListCmd(a *app) *cobra.Command {
	var org bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries in the order they were written",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.writeEntries(cmd, a.ledger.Journal().Entries(), org)
		},
	}
	cmd.Flags().BoolVar(&org, "org", false, "print Org-mode blocks")
	return cmd
}

func newJournalSearchCmd(a *app) *cobra.Command {
	var org bool
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Find entries by title, content or tag",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found := a.ledger.Journal().Search(strings.Join(args, " "))
			return a.writeEntries(cmd, found, org)
		},
	}
	cmd.Flags().BoolVar(&org, "org", false, "print Org-mode blocks")
	return cmd
}

func newJournalShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, ok := a.ledger.Journal().Get(entryID)
			if !ok {
				return fmt.Errorf("show %d: %w", entryID, journal.ErrEntryNotFound)
			}
			fmt.Fprint(cmd.OutOrStdout(), report.FormatEntryOrg(e))
			return nil
		},
	}
}

func (a *app) writeEntries(cmd *cobra.Command, entries []journal.Entry, org bool) error {
	if org {
		fmt.Fprintln(cmd.OutOrStdout(), report.FormatEntriesOrg(entries))
		return nil
	}
	tw := table(cmd)
	row(tw, "ID", "DATE", "TITLE", "MOOD", "TAGS")
	for _, e := range entries {
		date := e.Date
		if len(date) > 10 {
			date = date[:10]
		}
		row(tw, strconv.FormatInt(e.ID, 10), date, e.Title, e.Mood, strings.Join(e.Tags, ","))
	}
	return tw.Flush()
}

func newReviewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Monthly retrospectives",
	}
	cmd.AddCommand(newReviewSetCmd(a), newReviewListCmd(a), newReviewShowCmd(a))
	return cmd
}

func newReviewSetCmd(a *app) *cobra.Command {
	var r journal.Review
	var sentiment string
	cmd := &cobra.Command{
		Use:   "set <YYYY-MM>",
		Short: "Write or replace the review of a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r.Month = args[0]
			r.Sentiment = journal.Sentiment(strings.ToLower(sentiment))
			if err := a.ledger.SaveReview(r); err != nil {
				return fmt.Errorf("save review: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved review for %s\n", r.Month)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&r.Goals, "goals", "", "what the month set out to do")
	fl.StringVar(&r.Successes, "successes", "", "what went well")
	fl.StringVar(&r.Challenges, "challenges", "", "what went badly")
	fl.StringVar(&r.Lessons, "lessons", "", "what to keep in mind")
	fl.StringVar(&r.NextMonth, "next", "", "plan for next month")
	fl.StringVar(&sentiment, "sentiment", string(journal.Neutral), "positive|neutral|negative")
	return cmd
}

func newReviewListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List monthly reviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := table(cmd)
			row(tw, "MONTH", "SENTIMENT", "LESSONS")
			for _, r := range a.ledger.Journal().Reviews() {
				row(tw, r.Month, string(r.Sentiment), r.Lessons)
			}
			return tw.Flush()
		},
	}
}

func newReviewShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <YYYY-MM>",
		Short: "Show the review of a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := a.ledger.Journal().Review(args[0])
			if !ok {
				return fmt.Errorf("no review for %s", args[0])
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Review %s (%s)\n", r.Month, r.Sentiment)
			for _, f := range []struct{ name, text string }{
				{"Goals", r.Goals},
				{"Successes", r.Successes},
				{"Challenges", r.Challenges},
				{"Lessons", r.Lessons},
				{"Next month", r.NextMonth},
			} {
				if f.text != "" {
					fmt.Fprintf(out, "  %s: %s\n", f.name, f.text)
				}
			}
			return nil
		},
	}
}
