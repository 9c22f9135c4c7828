package main

import (
	"fmt"

	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single check cycle",
		Long: `Check every target that is due now, print the cycle report and exit.
With --all every active target is checked regardless of its interval.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			var report models.CycleReport
			if all {
				report = a.service.CheckTargets(cmd.Context(), activeTargets(a.config().MonitorTargets()))
			} else {
				report = a.service.RunOnce(cmd.Context())
			}

			renderReport(cmd.OutOrStdout(), report)

			if failed := report.Summary().Failed; failed > 0 {
				return fmt.Errorf("%d target(s) failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "check every active target, even if it is not due")
	return cmd
}

func activeTargets(targets []models.Target) []models.Target {
	active := make([]models.Target, 0, len(targets))
	for _, t := range targets {
		if t.Active {
			active = append(active, t)
		}
	}
	return active
}
