package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/danielolaszy/quill/internal/logging"
	"github.com/danielolaszy/quill/pkg/models"
)

// maxInputChars caps each interactive field.
const maxInputChars = 20000

// Replaced in tests.
var (
	readClipboard = clipboard.ReadAll
	runInputForm  = promptForInput
)

// inputOptions are the reporter input flags shared by create and draft.
type inputOptions struct {
	selection   string
	context     string
	stdin       bool
	clipboard   bool
	interactive bool
}

func addInputFlags(cmd *cobra.Command, opts *inputOptions) {
	cmd.Flags().StringVarP(&opts.selection, "selection", "s", "", "Selected text to turn into an issue")
	cmd.Flags().StringVarP(&opts.context, "context", "c", "", "Additional context: team, owner, cycle or project hints")
	cmd.Flags().BoolVar(&opts.stdin, "stdin", false, "Read the selected text from standard input")
	cmd.Flags().BoolVar(&opts.clipboard, "clipboard", false, "Read the selected text from the system clipboard")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Edit the selected text and context in a form")
	cmd.MarkFlagsMutuallyExclusive("stdin", "clipboard")
}

// readInput gathers the reporter input. --selection wins over --stdin and
// --clipboard; the form runs last, pre-filled with whatever was gathered.
func readInput(in io.Reader, opts inputOptions) (reporterContext, selection string, err error) {
	selection = opts.selection
	reporterContext = opts.context

	if selection == "" {
		switch {
		case opts.stdin:
			data, err := io.ReadAll(in)
			if err != nil {
				return "", "", fmt.Errorf("failed to read standard input: %w", err)
			}
			selection = string(data)
		case opts.clipboard:
			text, err := readClipboard()
			if err != nil {
				return "", "", fmt.Errorf("failed to read clipboard: %w", err)
			}
			selection = text
		}
	}

	if opts.interactive {
		if err := runInputForm(&selection, &reporterContext); err != nil {
			return "", "", fmt.Errorf("input form: %w", err)
		}
	}

	logging.Debug("reporter input",
		"selection_chars", len(selection),
		"context_chars", len(reporterContext))
	return reporterContext, selection, nil
}

// requireContent fails with ErrContentMissing when both inputs are blank.
func requireContent(reporterContext, selection string) error {
	if strings.TrimSpace(reporterContext) == "" && strings.TrimSpace(selection) == "" {
		return models.ErrContentMissing
	}
	return nil
}

func promptForInput(selection, reporterContext *string) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Selected Text").
				Description("The notes, log or conversation to turn into an issue").
				CharLimit(maxInputChars).
				Lines(8).
				Value(selection),
			huh.NewText().
				Title("Additional Context").
				Description("Optional: team, owner, cycle or project to use").
				CharLimit(maxInputChars).
				Lines(4).
				Value(reporterContext),
		),
	)
	return form.Run()
}
