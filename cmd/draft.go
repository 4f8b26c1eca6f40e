package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danielolaszy/quill/internal/draft"
	"github.com/danielolaszy/quill/pkg/models"
)

func newDraftCmd(global *globalOptions) *cobra.Command {
	var (
		input  inputOptions
		format string
	)

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Extract an issue draft without contacting the tracker",
		Long: `Run only the AI extraction and print the normalized draft.

Unspecified fields are printed as null. Use this to check what the model
reads out of a piece of text before creating anything.`,
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

			parsed, err := draft.NewExtractor(gen).Extract(ctx, reporterContext, selection)
			if err != nil {
				return err
			}

			out, err := encodeDraft(parsed, format)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	addInputFlags(cmd, &input)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	return cmd
}

// encodeDraft renders d as JSON or YAML, newline terminated.
func encodeDraft(d models.ParsedDraft, format string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		out, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode draft: %w", err)
		}
		return string(out) + "\n", nil
	case "yaml", "yml":
		out, err := yaml.Marshal(d)
		if err != nil {
			return "", fmt.Errorf("failed to encode draft: %w", err)
		}
		return string(out), nil
	}
	return "", fmt.Errorf("unsupported format %q: expected json or yaml", format)
}
