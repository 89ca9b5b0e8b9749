package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tyemirov/treeforge/internal/config"
	"github.com/tyemirov/treeforge/internal/scan"
	"github.com/tyemirov/treeforge/internal/types"
	"github.com/tyemirov/treeforge/internal/utils"
)

const (
	scanUse              = "scan [directory]"
	scanShortDescription = "print an existing directory as tree text"
	// scanLongDescription provides detailed help for the scan command.
	scanLongDescription = `List an existing directory in the same tree format that preview and create read.
The .git directory and paths matched by .gitignore files are left out unless disabled.`
	// scanUsageExample demonstrates scan command usage.
	scanUsageExample = `  # Capture the layout of a project and recreate it elsewhere
  treeforge scan ./service > layout.txt
  treeforge create layout.txt --dest ./service-copy`

	excludeFlagName           = "exclude"
	gitignoreFlagName         = "gitignore"
	includeGitFlagName        = "git"
	depthFlagName             = "depth"
	excludeFlagDescription    = "additional ignore pattern; repeatable"
	gitignoreFlagDescription  = "skip paths matched by .gitignore files"
	includeGitFlagDescription = "include the .git directory"
	depthFlagDescription      = "maximum depth below the scanned directory, 0 for unlimited"
	defaultScanDirectory      = "."
)

// createScanCommand returns the scan subcommand.
func (app *application) createScanCommand() *cobra.Command {
	var outputFormat string
	var summaryEnabled bool
	var copyEnabled bool
	var gitignoreEnabled bool
	var includeGit bool
	var exclusionPatterns []string
	var maxDepth int

	scanCommand := &cobra.Command{
		Use:     scanUse,
		Short:   scanShortDescription,
		Long:    scanLongDescription,
		Example: scanUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			scanConfiguration := app.configuration.Scan
			format := strings.ToLower(resolveString(command, formatFlagName, outputFormat, scanConfiguration.Format))
			if !isSupportedFormat(format) {
				return fmt.Errorf(invalidFormatMessage, format)
			}
			withSummary := resolveBool(command, summaryFlagName, summaryEnabled, scanConfiguration.Summary)
			useGitignore := resolveBool(command, gitignoreFlagName, gitignoreEnabled, scanConfiguration.Gitignore)
			exclusions := exclusionPatterns
			if !command.Flags().Changed(excludeFlagName) {
				exclusions = scanConfiguration.Exclude
			}

			directory := defaultScanDirectory
			if len(arguments) > 0 {
				directory = arguments[0]
			}
			directory, expandError := utils.ExpandHomeDirectory(directory)
			if expandError != nil {
				return expandError
			}

			ignorePatterns, ignoreError := config.LoadRecursiveIgnorePatterns(directory, config.IgnoreOptions{
				ExclusionPatterns: exclusions,
				UseGitignore:      useGitignore,
				IncludeGit:        includeGit,
			})
			if ignoreError != nil {
				return ignoreError
			}
			scanned, scanError := scan.Scan(command.Context(), directory, scan.Options{
				IgnorePatterns: ignorePatterns,
				MaxDepth:       maxDepth,
				Logger:         app.dependencies.Logger,
			})
			if scanError != nil {
				return scanError
			}

			rendered, renderError := renderForest(scanned, format, withSummary)
			if renderError != nil {
				return renderError
			}
			fmt.Fprint(command.OutOrStdout(), rendered)
			if copyEnabled && app.dependencies.Clipboard != nil {
				if copyError := app.dependencies.Clipboard.Copy(rendered); copyError != nil {
					app.dependencies.Logger.Warn(warningCopyFailed)
					return fmt.Errorf("%s: %w", warningCopyFailed, copyError)
				}
			}
			return nil
		},
	}

	scanCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	scanCommand.Flags().StringArrayVarP(&exclusionPatterns, excludeFlagName, "e", nil, excludeFlagDescription)
	scanCommand.Flags().IntVar(&maxDepth, depthFlagName, 0, depthFlagDescription)
	registerBooleanFlag(scanCommand.Flags(), &summaryEnabled, summaryFlagName, true, summaryFlagDescription)
	registerBooleanFlag(scanCommand.Flags(), &copyEnabled, copyFlagName, false, copyFlagDescription)
	registerBooleanFlag(scanCommand.Flags(), &gitignoreEnabled, gitignoreFlagName, true, gitignoreFlagDescription)
	registerBooleanFlag(scanCommand.Flags(), &includeGit, includeGitFlagName, false, includeGitFlagDescription)
	return scanCommand
}
