package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-agent/internal/config"
	"github.com/jonathan/job-agent/internal/profile"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run one job monitor pass",
	Long: `Searches LinkedIn for every keyword and location, applies to new Easy Apply
listings when auto_apply is on, finds networking contacts after each successful
application, checks the configured careers pages and exports the results.

Flags override the values from the config file.`,
	RunE: runMonitorCmd,
}

var (
	runAutoApply   bool
	runShowBrowser bool
	runNetworking  bool
	runKeywords    []string
	runLocations   []string
	runOutputDir   string
)

func init() {
	runCommand.Flags().BoolVar(&runAutoApply, "auto-apply", false, "Apply to new Easy Apply listings")
	runCommand.Flags().BoolVar(&runShowBrowser, "show-browser", false, "Show the Chrome window")
	runCommand.Flags().BoolVar(&runNetworking, "networking", true, "Find networking contacts after applying")
	runCommand.Flags().StringSliceVarP(&runKeywords, "keyword", "k", nil, "Search keyword (repeatable)")
	runCommand.Flags().StringSliceVarP(&runLocations, "location", "l", nil, "Search location (repeatable)")
	runCommand.Flags().StringVarP(&runOutputDir, "output", "o", "", "Directory for CSV exports and run state")

	rootCmd.AddCommand(runCommand)
}

// applyRunOverrides copies explicitly set flags onto cfg.
func applyRunOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("auto-apply") {
		cfg.AutoApply = runAutoApply
	}
	if cmd.Flags().Changed("show-browser") {
		cfg.ShowBrowser = runShowBrowser
	}
	if cmd.Flags().Changed("networking") {
		cfg.FindNetworkingContacts = runNetworking
	}
	if cmd.Flags().Changed("keyword") {
		cfg.Keywords = runKeywords
	}
	if cmd.Flags().Changed("location") {
		cfg.Locations = runLocations
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputDir = runOutputDir
	}
}

func runMonitorCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyRunOverrides(cmd, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{store: true, browser: true})
	if err != nil {
		return err
	}
	defer a.Close()

	return a.runOnce(ctx)
}

// runOnce performs a monitor pass and prints its summary. The profile is only needed
// when applications are enabled.
func (a *app) runOnce(ctx context.Context) error {
	var p *profile.Profile
	if a.cfg.AutoApply {
		var err error
		if p, err = a.profile(); err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
	}

	summary, err := a.monitor(p).Run(ctx)
	a.printer.PrintRunSummary(summary)
	if summary != nil {
		a.printer.PrintContacts(summary.Contacts)
	}
	return err
}
