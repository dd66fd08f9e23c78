// Package main provides the job_agent command line: job monitoring, Easy Apply
// automation and networking target discovery.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "job_agent",
	Short: "Job monitor and Easy Apply form filler",
	Long: `job_agent searches LinkedIn and company careers pages for new listings, fills
Easy Apply forms from an applicant profile, finds people to network with and keeps
a tracker of everything it has seen.

Configuration is read from config.json (see "job_agent init"). LINKEDIN_EMAIL,
LINKEDIN_PASSWORD and DATABASE_URL may be set in the environment or a .env file.`,
	SilenceUsage: true,
}

var (
	configPath string
	logLevel   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "Path to config.json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
