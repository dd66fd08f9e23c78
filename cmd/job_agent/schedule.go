package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-agent/internal/schedule"
)

var scheduleCommand = &cobra.Command{
	Use:   "schedule",
	Short: "Run the job monitor on the configured schedule",
	Long: `Runs the monitor immediately and then at every schedule.run_times entry (HH:MM,
local time), or every schedule.check_interval_hours when no run times are set.
Stops on Ctrl+C.`,
	RunE: runScheduleCmd,
}

func init() {
	rootCmd.AddCommand(scheduleCommand)
}

func runScheduleCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	plan, err := schedule.FromConfig(cfg.Schedule.RunTimes, cfg.Schedule.Interval())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{store: true, browser: true})
	if err != nil {
		return err
	}
	defer a.Close()

	err = schedule.New(plan, a.logger).Run(ctx, a.runOnce)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
