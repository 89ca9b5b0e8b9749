package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/treeforge/internal/materialize"
	"github.com/tyemirov/treeforge/internal/output"
	"github.com/tyemirov/treeforge/internal/parser"
	"github.com/tyemirov/treeforge/internal/types"
	"github.com/tyemirov/treeforge/internal/utils"
)

const (
	createUse              = "create [file|-]"
	createAlias            = "c"
	createShortDescription = "create the directories and files of a tree (" + createAlias + ")"
	// createLongDescription provides detailed help for the create command.
	createLongDescription = `Parse a directory tree and create it under --dest.
Existing files and directories are never overwritten; they are reported as skipped.
A failing entry does not stop the run, and the command exits with an error when any entry failed.`
	// createUsageExample demonstrates create command usage.
	createUsageExample = `  # Create a tree from a file inside ./project
  treeforge create tree.txt --dest ./project

  # Show what would be created without touching the disk
  pbpaste | treeforge create - --dry-run`

	destinationFlagName        = "dest"
	destinationFlagShorthand   = "d"
	headersFlagName            = "headers"
	workersFlagName            = "workers"
	dryRunFlagName             = "dry-run"
	previewFlagName            = "preview"
	saveFlagName               = "save"
	streamFlagName             = "stream"
	defaultDestination         = "."
	defaultWorkers             = 1
	destinationFlagDescription = "directory to create the tree in"
	headersFlagDescription     = "seed new files with a comment header built from the tree comment"
	workersFlagDescription     = "number of subtrees created concurrently"
	dryRunFlagDescription      = "report what would be created without writing anything"
	previewFlagDescription     = "print the parsed tree before creating it"
	saveFlagDescription        = "also save the tree text to this file"
	streamFlagDescription      = "write one JSON event per line while creating instead of a final report"

	logMessageSavedTree     = "saved tree text"
	logMessageCreateSummary = "materialization finished"
	errorInvalidWorkers     = "workers must be at least 1, got %d"
	errorEntriesFailed      = "%d of %d entries failed"
)

var errEntriesFailed = errors.New("materialization incomplete")

type createOptions struct {
	input        inputOptions
	destination  string
	outputFormat string
	headers      bool
	workers      int
	dryRun       bool
	preview      bool
	savePath     string
	stream       bool
}

// createCreateCommand returns the create subcommand.
func (app *application) createCreateCommand() *cobra.Command {
	var options createOptions

	createCommand := &cobra.Command{
		Use:     createUse,
		Aliases: []string{createAlias},
		Short:   createShortDescription,
		Long:    createLongDescription,
		Example: createUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return app.runCreate(command, arguments, app.resolveCreateOptions(command, options))
		},
	}

	addInputFlags(createCommand, &options.input)
	createCommand.Flags().StringVarP(&options.destination, destinationFlagName, destinationFlagShorthand, defaultDestination, destinationFlagDescription)
	createCommand.Flags().StringVar(&options.outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	createCommand.Flags().IntVar(&options.workers, workersFlagName, defaultWorkers, workersFlagDescription)
	createCommand.Flags().StringVar(&options.savePath, saveFlagName, "", saveFlagDescription)
	registerBooleanFlag(createCommand.Flags(), &options.headers, headersFlagName, true, headersFlagDescription)
	registerBooleanFlag(createCommand.Flags(), &options.dryRun, dryRunFlagName, false, dryRunFlagDescription)
	registerBooleanFlag(createCommand.Flags(), &options.preview, previewFlagName, false, previewFlagDescription)
	registerBooleanFlag(createCommand.Flags(), &options.stream, streamFlagName, false, streamFlagDescription)
	return createCommand
}

func (app *application) resolveCreateOptions(command *cobra.Command, options createOptions) createOptions {
	createConfiguration := app.configuration.Create
	resolved := options
	resolved.destination = resolveString(command, destinationFlagName, options.destination, createConfiguration.Destination)
	resolved.outputFormat = strings.ToLower(resolveString(command, formatFlagName, options.outputFormat, createConfiguration.Format))
	resolved.headers = resolveBool(command, headersFlagName, options.headers, createConfiguration.Headers)
	resolved.workers = resolveInt(command, workersFlagName, options.workers, createConfiguration.Workers)
	resolved.dryRun = resolveBool(command, dryRunFlagName, options.dryRun, createConfiguration.DryRun)
	resolved.preview = resolveBool(command, previewFlagName, options.preview, createConfiguration.Preview)
	return resolved
}

func (app *application) runCreate(command *cobra.Command, arguments []string, options createOptions) error {
	if !isSupportedFormat(options.outputFormat) {
		return fmt.Errorf(invalidFormatMessage, options.outputFormat)
	}
	if options.workers < 1 {
		return fmt.Errorf(errorInvalidWorkers, options.workers)
	}
	destination, expandError := utils.ExpandHomeDirectory(options.destination)
	if expandError != nil {
		return expandError
	}

	text, readError := app.readTreeText(arguments, options.input)
	if readError != nil {
		return readError
	}
	parsed := parser.Parse(text)
	if parsed.IsEmpty() {
		return errNoTreeEntries
	}

	if options.savePath != "" {
		if saveError := saveTreeText(options.savePath, text); saveError != nil {
			return saveError
		}
		app.dependencies.Logger.Info(logMessageSavedTree, zap.String("path", options.savePath))
	}

	writer := command.OutOrStdout()
	if options.preview && options.outputFormat == types.FormatRaw && !options.stream {
		fmt.Fprintln(writer, output.RenderTree(parsed))
	}

	logger := app.dependencies.Logger
	materializeOptions := materialize.Options{
		Headers: options.headers,
		Workers: options.workers,
		DryRun:  options.dryRun,
		Logger:  logger,
		Observer: func(entry materialize.Entry) {
			if entry.Status == materialize.StatusFailed {
				logger.Warn(output.FormatProgressLine(entry))
				return
			}
			logger.Info(output.FormatProgressLine(entry))
		},
	}

	var report materialize.Report
	var materializeError error
	if options.stream {
		report, materializeError = streamCreate(command.Context(), writer, parsed, destination, materializeOptions)
		if materializeError != nil && errors.Is(materializeError, materialize.ErrDestinationUnavailable) {
			return materializeError
		}
	} else {
		report, materializeError = materialize.Materialize(command.Context(), parsed, destination, materializeOptions)
		if materializeError != nil && errors.Is(materializeError, materialize.ErrDestinationUnavailable) {
			return materializeError
		}
		if renderError := writeReport(command, report, options.outputFormat); renderError != nil {
			return renderError
		}
	}
	logger.Info(logMessageCreateSummary,
		zap.String("destination", report.Destination),
		zap.Int("created", report.Created()),
		zap.Int("skipped", report.Skipped()),
		zap.Int("failed", report.Failed()),
	)

	if materializeError != nil {
		return materializeError
	}
	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%w: "+errorEntriesFailed, errEntriesFailed, failed, len(report.Entries))
	}
	return nil
}

func writeReport(command *cobra.Command, report materialize.Report, format string) error {
	writer := command.OutOrStdout()
	if format == types.FormatRaw {
		_, err := fmt.Fprintln(writer, output.FormatReportSummary(report))
		return err
	}
	rendered, renderError := output.RenderDocument(output.BuildReportDocument(report), format)
	if renderError != nil {
		return renderError
	}
	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	_, err := fmt.Fprint(writer, rendered)
	return err
}
