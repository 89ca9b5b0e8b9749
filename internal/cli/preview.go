package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tyemirov/treeforge/internal/forest"
	"github.com/tyemirov/treeforge/internal/output"
	"github.com/tyemirov/treeforge/internal/parser"
	"github.com/tyemirov/treeforge/internal/types"
)

const (
	previewUse              = "preview [file|-]"
	previewAlias            = "p"
	previewShortDescription = "show how a tree is understood (" + previewAlias + ")"
	// previewLongDescription provides detailed help for the preview command.
	previewLongDescription = `Parse a directory tree and print it back in canonical form.
Use --format to select raw, json, xml or yaml output and --copy to place the result on the clipboard.`
	// previewUsageExample demonstrates preview command usage.
	previewUsageExample = `  # Preview a tree saved in a file
  treeforge preview tree.txt

  # Preview a tree from the clipboard as JSON
  treeforge preview --clipboard --format json`

	summaryFlagName        = "summary"
	copyFlagName           = "copy"
	summaryFlagDescription = "include directory and file counts"
	copyFlagDescription    = "copy the rendered output to the clipboard"
	warningCopyFailed      = "failed to copy output to clipboard"
)

// createPreviewCommand returns the preview subcommand.
func (app *application) createPreviewCommand() *cobra.Command {
	var input inputOptions
	var outputFormat string
	var summaryEnabled bool
	var copyEnabled bool

	previewCommand := &cobra.Command{
		Use:     previewUse,
		Aliases: []string{previewAlias},
		Short:   previewShortDescription,
		Long:    previewLongDescription,
		Example: previewUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			previewConfiguration := app.configuration.Preview
			format := strings.ToLower(resolveString(command, formatFlagName, outputFormat, previewConfiguration.Format))
			if !isSupportedFormat(format) {
				return fmt.Errorf(invalidFormatMessage, format)
			}
			withSummary := resolveBool(command, summaryFlagName, summaryEnabled, previewConfiguration.Summary)
			withCopy := resolveBool(command, copyFlagName, copyEnabled, previewConfiguration.Copy)

			text, readError := app.readTreeText(arguments, input)
			if readError != nil {
				return readError
			}
			parsed := parser.Parse(text)
			if parsed.IsEmpty() {
				return errNoTreeEntries
			}

			rendered, renderError := renderForest(parsed, format, withSummary)
			if renderError != nil {
				return renderError
			}
			fmt.Fprint(command.OutOrStdout(), rendered)

			if withCopy && app.dependencies.Clipboard != nil {
				if copyError := app.dependencies.Clipboard.Copy(rendered); copyError != nil {
					app.dependencies.Logger.Warn(warningCopyFailed)
					return fmt.Errorf("%s: %w", warningCopyFailed, copyError)
				}
			}
			return nil
		},
	}

	addInputFlags(previewCommand, &input)
	previewCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	registerBooleanFlag(previewCommand.Flags(), &summaryEnabled, summaryFlagName, true, summaryFlagDescription)
	registerBooleanFlag(previewCommand.Flags(), &copyEnabled, copyFlagName, false, copyFlagDescription)
	return previewCommand
}

// renderForest renders a forest in the requested format. Raw output is the
// canonical tree text followed by an optional summary line.
func renderForest(parsed *forest.Forest, format string, withSummary bool) (string, error) {
	if format == types.FormatRaw {
		rendered := output.RenderTree(parsed)
		if withSummary {
			rendered += "\n" + output.FormatSummaryLine(parsed.Stats()) + "\n"
		}
		return rendered, nil
	}
	rendered, renderError := output.RenderDocument(output.BuildTreeDocument(parsed, withSummary), format)
	if renderError != nil {
		return "", renderError
	}
	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	return rendered, nil
}
