package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-agent/internal/answer"
	"github.com/jonathan/job-agent/internal/classify"
	"github.com/jonathan/job-agent/internal/profile"
)

var classifyCommand = &cobra.Command{
	Use:   "classify <label>",
	Short: "Show how a form question would be answered",
	Long: `Classifies a form control label and resolves the answer from the applicant
profile, without opening a browser. Useful for checking a profile against the
questions an application asks.

Example:
  job_agent classify "Will you now or in the future require sponsorship?" --kind radio-group --option Yes --option No`,
	Args: cobra.ExactArgs(1),
	RunE: runClassifyCmd,
}

var (
	classifyKind    string
	classifyOptions []string
	classifyProfile string
)

func init() {
	classifyCommand.Flags().StringVar(&classifyKind, "kind", string(classify.KindText), "Control kind: text, dropdown, radio-group or file")
	classifyCommand.Flags().StringArrayVar(&classifyOptions, "option", nil, "Visible option text for dropdowns and radio groups (repeatable)")
	classifyCommand.Flags().StringVar(&classifyProfile, "profile", "", "Profile JSON (defaults to profile_path from the config)")

	rootCmd.AddCommand(classifyCommand)
}

func parseKind(s string) (classify.Kind, error) {
	k := classify.Kind(s)
	if classify.RulesFor(k) == nil {
		return "", fmt.Errorf("unknown control kind %q", s)
	}
	return k, nil
}

// explain writes the category and resolved action for one control.
func explain(w io.Writer, p *profile.Profile, kind classify.Kind, label string, options []string) error {
	category := classify.Classify(kind, label)
	action, err := answer.NewResolver(p).Resolve(kind, category, label, options)

	_, _ = fmt.Fprintf(w, "Category: %s\n", category)
	_, _ = fmt.Fprintf(w, "Action:   %s\n", action)
	if action.Kind == answer.SelectOption && action.Index < len(options) {
		_, _ = fmt.Fprintf(w, "Option:   %s\n", options[action.Index])
	}
	return err
}

func runClassifyCmd(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(classifyKind)
	if err != nil {
		return err
	}

	path := classifyProfile
	if path == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path = cfg.ProfilePath
	}
	p, err := profile.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	return explain(cmd.OutOrStdout(), p, kind, args[0], classifyOptions)
}
