package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-agent/internal/fetch"
)

var checkCareersCommand = &cobra.Command{
	Use:   "check-careers",
	Short: "Check the configured careers pages for keywords",
	Long: `Fetches every page in companies_to_monitor and reports the ones mentioning a
search keyword. Pages that render client side are loaded in headless Chrome.
Matches are saved to the tracker as "Manual Review Required".`,
	RunE: runCheckCareersCmd,
}

func init() {
	rootCmd.AddCommand(checkCareersCommand)
}

func runCheckCareersCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(cfg.CompaniesToMonitor) == 0 {
		return fmt.Errorf("no companies_to_monitor in config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{store: true})
	if err != nil {
		return err
	}
	defer a.Close()

	matches := a.careers().CheckAll(ctx, fetch.PagesFromMap(cfg.CompaniesToMonitor), cfg.Keywords)
	if err := a.store.UpsertJobs(context.WithoutCancel(ctx), matches); err != nil {
		return fmt.Errorf("failed to save matches: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%d of %d careers pages matched\n", len(matches), len(cfg.CompaniesToMonitor))
	for _, m := range matches {
		_, _ = fmt.Fprintf(out, "  %s: %s (%s)\n", m.Company, m.URL, m.Keyword)
	}
	return nil
}
