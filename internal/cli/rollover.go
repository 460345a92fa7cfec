package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/habit-king/habitking/internal/app/engagement"
	"github.com/habit-king/habitking/internal/daemon"
)

func init() {
	rolloverCmd.Flags().StringVar(&rolloverMonth, "month", "", "Month to finalize as YYYY-MM (default: previous month)")
	rootCmd.AddCommand(rolloverCmd)
}

var rolloverMonth string

var rolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Crown champions for a closed month",
	Long: `Finalize a month for every group. Groups with a member still inside the
month are skipped and picked up by a later run. Existing champions are never changed.`,
	Args: cobra.NoArgs,
	RunE: runRollover,
}

func runRollover(cmd *cobra.Command, args []string) error {
	m, err := parseMonthFlag(rolloverMonth)
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := context.Background()
	var report engagement.RolloverReport
	if m.IsZero() {
		report, err = d.Services.Rollover.Run(ctx)
	} else {
		report, err = d.Services.Rollover.RunMonth(ctx, m)
	}

	fmt.Printf("Month %s: %d groups, %d crowned, %d skipped, %d failed\n",
		report.Month, report.Groups, report.Crowned, report.Skipped, report.Failed)
	return err
}
