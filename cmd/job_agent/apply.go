package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-agent/internal/apply"
	"github.com/jonathan/job-agent/internal/config"
	"github.com/jonathan/job-agent/internal/types"
)

var applyCommand = &cobra.Command{
	Use:   "apply <job-url>",
	Short: "Apply to a single job",
	Long: `Opens the job URL and walks its application flow with the applicant profile.
LinkedIn Easy Apply, Greenhouse and Workday URLs are recognised.

Submitting needs both auto_submit: true in the profile and confirm_before_submit:
false in the config. confirm_before_submit defaults to true, so by default the flow
stops at the submit button and the application is reviewed in the browser.

--quick (or quick_apply in the config) walks at most 5 pages instead of 10.`,
	Args: cobra.ExactArgs(1),
	RunE: runApplyCmd,
}

var (
	applyTitle       string
	applyCompany     string
	applyShowBrowser bool
	applyQuick       bool
)

func init() {
	applyCommand.Flags().StringVar(&applyTitle, "title", "", "Job title, used for networking searches")
	applyCommand.Flags().StringVar(&applyCompany, "company", "", "Company name, used for networking searches")
	applyCommand.Flags().BoolVar(&applyShowBrowser, "show-browser", false, "Show the Chrome window")
	applyCommand.Flags().BoolVar(&applyQuick, "quick", false, "Use the quick flow with a 5 page ceiling")

	rootCmd.AddCommand(applyCommand)
}

// jobFromURL builds the tracker record for a job applied to by URL.
func jobFromURL(jobURL, title, company string, now time.Time) types.Job {
	job := types.Job{
		Title:   title,
		Company: company,
		URL:     jobURL,
		Source:  types.SourceCompanyWebsite,
		FoundAt: now,
	}
	if apply.DetectPlatform(jobURL) == apply.PlatformLinkedIn {
		job.Source = types.SourceLinkedIn
		job.EasyApply = true
	}
	return job
}

func applyApplyOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("show-browser") {
		cfg.ShowBrowser = applyShowBrowser
	}
	if cmd.Flags().Changed("quick") {
		cfg.QuickApply = applyQuick
	}
}

func runApplyCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyApplyOverrides(cmd, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{store: true, browser: true})
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.profile()
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	job := jobFromURL(args[0], applyTitle, applyCompany, time.Now())
	if job.Source == types.SourceLinkedIn && !a.login(ctx) {
		return fmt.Errorf("linkedin login is required for easy apply")
	}
	// networking searches need a company to look for
	if job.Company == "" {
		cfg.FindNetworkingContacts = false
	}

	session, contacts, err := a.monitor(p).ApplyOne(ctx, job)
	if session != nil {
		a.printer.PrintSession(session)
		a.printer.PrintContacts(contacts)
	}
	return err
}
