// Package cmd provides the command-line interface for quill.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/quill/internal/config"
	"github.com/danielolaszy/quill/internal/logging"
)

// globalOptions are the persistent flags of the root command.
type globalOptions struct {
	configPath string
	tracker    string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "quill",
		Short: "Quill turns free text into tracker issues",
		Long: `Quill is a CLI tool that turns selected text and a few hints into a
ready-to-create tracker issue. An AI model drafts the title, description and
the team, project, cycle and owner names; quill resolves those names against
the tracker and creates the issue.

Supported trackers: linear (default), jira, github and trello.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default $HOME/.config/quill/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&opts.tracker, "tracker", "t", "", "Tracker backend: linear, jira, github or trello")

	rootCmd.AddCommand(newCreateCmd(opts))
	rootCmd.AddCommand(newDraftCmd(opts))
	rootCmd.AddCommand(newDirectoryCmd(opts))

	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// loadConfig reads the configuration and applies the --tracker override.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.tracker != "" {
		cfg.Tracker.Backend = strings.ToLower(strings.TrimSpace(o.tracker))
	}

	logging.Debug("configuration loaded",
		"tracker", cfg.Tracker.Backend,
		"primary_ai", cfg.AI.UsePrimary)
	return cfg, nil
}
