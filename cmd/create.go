package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/quill/internal/draft"
	"github.com/danielolaszy/quill/internal/logging"
	"github.com/danielolaszy/quill/internal/resolve"
)

func newCreateCmd(global *globalOptions) *cobra.Command {
	var (
		input  inputOptions
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tracker issue from free text",
		Long: `Create a tracker issue from selected text and optional context.

The AI model drafts the title, description and the team, project, cycle and
owner names. Quill resolves the team first and fails when it cannot. The
project, cycle and owner are resolved concurrently; names that match nothing
are left out of the issue and logged as warnings. When no cycle matches, the
team's active cycle is used.

Examples:
  quill create -s "App crashes when saving a draft on iOS 17" -c "team Mobile, owner Yan"
  pbpaste | quill create --stdin -c "Payments, current sprint"
  quill create --clipboard --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}

			reporterContext, selection, err := readInput(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}
			if err := requireContent(reporterContext, selection); err != nil {
				return err
			}

			gen, err := generatorFactory(ctx, cfg)
			if err != nil {
				return err
			}
			dir, err := directoryFactory(ctx, cfg)
			if err != nil {
				return err
			}

			extractor := draft.NewExtractor(gen)
			orchestrator := resolve.NewOrchestrator(dir, logging.NewEventLogger(nil))

			if dryRun {
				parsed, err := extractor.Extract(ctx, reporterContext, selection)
				if err != nil {
					return err
				}
				req, err := orchestrator.Build(ctx, parsed)
				if err != nil {
					return err
				}
				out, err := json.MarshalIndent(req, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode request: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			url, err := orchestrator.CreateFromText(ctx, extractor, reporterContext, selection)
			if err != nil {
				return err
			}

			logging.Info("issue created", "tracker", cfg.Tracker.Backend, "url", url)
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}

	addInputFlags(cmd, &input)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the resolved request as JSON instead of creating the issue")
	return cmd
}
