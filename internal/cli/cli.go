// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/treeforge/internal/config"
	"github.com/tyemirov/treeforge/internal/services/clipboard"
	"github.com/tyemirov/treeforge/internal/types"
	"github.com/tyemirov/treeforge/internal/utils"
)

const (
	versionFlagName        = "version"
	configFlagName         = "config"
	formatFlagName         = "format"
	textFlagName           = "text"
	clipboardFlagName      = "clipboard"
	versionTemplate        = "treeforge version: %s\n"
	rootUse                = "treeforge"
	rootShortDescription   = "turn pasted directory trees into real files"
	rootLongDescription    = `treeforge reads a directory tree drawn with box-drawing or ASCII connectors,
as pasted from documentation or chat, and either previews it or creates the
directories and files it describes.
Use preview to check how a tree is understood and create to write it to disk.`
	versionFlagDescription   = "display application version"
	configFlagDescription    = "path to a configuration file (defaults to ./" + utils.ConfigFileName + ")"
	formatFlagDescription    = "output format: raw, json, xml or yaml"
	textFlagDescription      = "tree text given inline instead of a file"
	clipboardFlagDescription = "read the tree text from the clipboard"
	invalidFormatMessage     = "invalid format value '%s'"
	errorLoadConfiguration   = "load configuration: %w"
)

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatRaw, types.FormatJSON, types.FormatXML, types.FormatYAML:
		return true
	default:
		return false
	}
}

// Dependencies carries the collaborators the commands use.
type Dependencies struct {
	Logger    *zap.Logger
	Clipboard ClipboardService
	Input     io.Reader
}

// ClipboardService reads tree text from and copies rendered output to the clipboard.
type ClipboardService interface {
	clipboard.Copier
	clipboard.Reader
}

// application holds the state shared by every command of one invocation.
type application struct {
	dependencies      Dependencies
	configurationPath string
	configuration     config.ApplicationConfiguration
}

// Execute runs the treeforge application.
func Execute(ctx context.Context, logger *zap.Logger) error {
	rootCommand := NewRootCommand(Dependencies{
		Logger:    logger,
		Clipboard: clipboard.NewService(),
		Input:     os.Stdin,
	})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// NewRootCommand builds the root Cobra command with all subcommands.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Input == nil {
		dependencies.Input = os.Stdin
	}
	app := &application{dependencies: dependencies}
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return nil
			}
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if command.Name() == types.CommandInit {
				return nil
			}
			loaded, loadError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: app.configurationPath})
			if loadError != nil {
				return fmt.Errorf(errorLoadConfiguration, loadError)
			}
			app.configuration = loaded
			return nil
		},
	}
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&app.configurationPath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		app.createPreviewCommand(),
		app.createCreateCommand(),
		app.createScanCommand(),
		app.createServeCommand(),
		createInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// inputOptions stores the flags that select where tree text comes from.
type inputOptions struct {
	text          string
	fromClipboard bool
}

func addInputFlags(command *cobra.Command, options *inputOptions) {
	command.Flags().StringVar(&options.text, textFlagName, "", textFlagDescription)
	registerBooleanFlag(command.Flags(), &options.fromClipboard, clipboardFlagName, false, clipboardFlagDescription)
}
