package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/spf13/cobra"
)

func newResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <name|url>",
		Short: "Replace a target's baseline with its current content",
		Long: `Fetch the target now and store the result as the new baseline without
comparing it to the previous snapshot or sending a notification.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			target, err := a.lookupTarget(args[0])
			if err != nil {
				return err
			}

			result := a.service.Reset(cmd.Context(), target)
			if result.Status != models.StatusEstablished {
				return fmt.Errorf("reset of %s did not complete: %s", target.String(), result.Reason())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline reset for %s\n", target.String())
			for _, d := range result.Degradations {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", d)
			}
			return nil
		},
	}
}

func newDiffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <name|url>",
		Short: "Show the last detected change of a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			target, err := a.lookupTarget(args[0])
			if err != nil {
				return err
			}

			record, err := a.store.Load(target)
			if errors.Is(err, models.ErrRecordNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s has not been checked yet.\n", target.String())
				return nil
			}
			if err != nil {
				return err
			}

			renderChangeSet(cmd.OutOrStdout(), target, record)
			return nil
		},
	}
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured targets and their schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			now := time.Now()
			renderTargets(cmd.OutOrStdout(), a.service.Scheduler().Status(now), now)
			return nil
		},
	}
}
