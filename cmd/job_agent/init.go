package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-agent/internal/config"
)

var initCommand = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.json",
	Long: `Writes the default configuration to the --config path. An existing file is
never overwritten. Credentials are better kept in .env as LINKEDIN_EMAIL and
LINKEDIN_PASSWORD than in the config file.

Applications are only submitted when the profile sets auto_submit and the config sets
confirm_before_submit to false. The written config keeps confirm_before_submit on.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeInitConfig(cmd.OutOrStdout(), configPath)
	},
}

const submitHint = `Note: applications stop at the submit button for review. To submit automatically,
set "auto_submit": true in the profile and "confirm_before_submit": false here.
`

func writeInitConfig(w io.Writer, path string) error {
	if err := config.WriteDefault(path); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Wrote %s\n%s", path, submitHint)
	return nil
}

func init() {
	rootCmd.AddCommand(initCommand)
}
