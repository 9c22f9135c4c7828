package main

import (
	"context"
	"errors"

	"github.com/aleister1102/pagewatch/internal/datastore"
	"github.com/spf13/cobra"
)

// historyReader reads recent journal rows.
type historyReader interface {
	Recent(ctx context.Context, limit int) ([]datastore.JournalEntry, error)
	RecentForTarget(ctx context.Context, url string, limit int) ([]datastore.JournalEntry, error)
}

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [name|url]",
		Short: "Show recent check outcomes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			journal := a.history()
			if journal == nil {
				return errors.New("check journal is disabled (storage_config.journal_path is empty)")
			}

			var entries []datastore.JournalEntry
			if len(args) == 1 {
				target, err := a.lookupTarget(args[0])
				if err != nil {
					return err
				}
				entries, err = journal.RecentForTarget(cmd.Context(), target.URL, limit)
				if err != nil {
					return err
				}
			} else {
				entries, err = journal.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
			}

			renderHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of rows to show")
	return cmd
}
