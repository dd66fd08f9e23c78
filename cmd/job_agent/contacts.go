package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-agent/internal/types"
)

var contactsCommand = &cobra.Command{
	Use:   "contacts",
	Short: "Find networking contacts for a company and role",
	Long: `Searches LinkedIn people results for recruiters, managers and people in the
role's department at the company, ranks them and drafts a connection message for
each. Results are saved to the tracker and printed.`,
	RunE: runContactsCmd,
}

var (
	contactsCompany string
	contactsTitle   string
	contactsJobURL  string
)

func init() {
	contactsCommand.Flags().StringVar(&contactsCompany, "company", "", "Company name")
	contactsCommand.Flags().StringVar(&contactsTitle, "title", "", "Job title")
	contactsCommand.Flags().StringVar(&contactsJobURL, "job-url", "", "Job URL recorded with each contact")
	_ = contactsCommand.MarkFlagRequired("company")
	_ = contactsCommand.MarkFlagRequired("title")

	rootCmd.AddCommand(contactsCommand)
}

func runContactsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
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

	if !a.login(ctx) {
		return fmt.Errorf("linkedin login is required to search people")
	}

	job := types.Job{Title: contactsTitle, Company: contactsCompany, URL: contactsJobURL, FoundAt: time.Now()}
	contacts := a.finder().Find(ctx, job)
	if err := a.store.UpsertContacts(context.WithoutCancel(ctx), contacts); err != nil {
		return fmt.Errorf("failed to save contacts: %w", err)
	}

	if len(contacts) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No networking contacts found")
		return nil
	}
	a.printer.PrintContacts(contacts)
	return nil
}
