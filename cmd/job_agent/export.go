package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-agent/internal/tracker"
	"github.com/jonathan/job-agent/internal/types"
)

var exportCommand = &cobra.Command{
	Use:   "export",
	Short: "Regenerate the tracker CSV files",
	Long: `Writes job_tracker_master.csv and networking_targets.csv in the output directory
from the tracker database.`,
	RunE: runExportCmd,
}

var statusCommand = &cobra.Command{
	Use:   "status",
	Short: "Show the last run and tracker totals",
	RunE:  runStatusCmd,
}

var exportOutputDir string

func init() {
	exportCommand.Flags().StringVarP(&exportOutputDir, "output", "o", "", "Directory for the CSV files (defaults to output_dir from the config)")

	rootCmd.AddCommand(exportCommand)
	rootCmd.AddCommand(statusCommand)
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputDir = exportOutputDir
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg, appOptions{store: true})
	if err != nil {
		return err
	}
	defer a.Close()

	exp := a.exporter()
	if err := exp.ExportAll(ctx, a.store); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", filepath.Join(exp.Dir, tracker.MasterFile))
	return nil
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg, appOptions{store: true})
	if err != nil {
		return err
	}
	defer a.Close()

	return writeStatus(ctx, cmd.OutOrStdout(), a.store)
}

func writeStatus(ctx context.Context, w io.Writer, store tracker.Store) error {
	jobs, err := store.Jobs(ctx)
	if err != nil {
		return err
	}
	contacts, err := store.Contacts(ctx)
	if err != nil {
		return err
	}

	byStatus := make(map[string]int)
	for _, j := range jobs {
		byStatus[j.Status]++
	}

	_, _ = fmt.Fprintf(w, "Tracked jobs: %d\n", len(jobs))
	statuses := make([]string, 0, len(byStatus))
	for s := range byStatus {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		_, _ = fmt.Fprintf(w, "  %s: %d\n", s, byStatus[s])
	}
	_, _ = fmt.Fprintf(w, "Networking contacts: %d\n", len(contacts))

	last, err := store.LastRun(ctx)
	if errors.Is(err, tracker.ErrNotFound) {
		_, _ = fmt.Fprintln(w, "Last run: never")
		return nil
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Last run: %s (%d found, %d applied, %d contacts)\n",
		last.LastRun.Local().Format(types.TimeLayout), last.JobsFound, last.JobsApplied, last.NetworkingContacts)
	return nil
}
