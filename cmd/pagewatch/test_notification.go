package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/notifier"
	"github.com/spf13/cobra"
)

func newTestNotificationCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test-notification",
		Short: "Send a sample change through the configured notifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			n := sampleNotification(time.Now())
			names := make([]string, 0, len(a.currentNotifier().Notifiers()))
			for _, nt := range a.currentNotifier().Notifiers() {
				names = append(names, nt.Name())
			}

			if err := a.currentNotifier().Notify(cmd.Context(), n); err != nil {
				return fmt.Errorf("test notification failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test notification sent via %s\n", strings.Join(names, ", "))
			return nil
		},
	}
}

func sampleNotification(now time.Time) notifier.ChangeNotification {
	return notifier.ChangeNotification{
		TargetName: "pagewatch test",
		TargetURL:  "https://example.com/",
		DetectedAt: now,
		Changes: &models.ChangeSet{
			DetectedAt: now,
			Changes: []models.LineChange{
				{Op: models.ChangeRemoved, Line: "Status: all systems operational"},
				{Op: models.ChangeAdded, Line: "Status: this is a test notification"},
			},
		},
	}
}
