package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tyemirov/treeforge/internal/config"
	"github.com/tyemirov/treeforge/internal/types"
	"github.com/tyemirov/treeforge/internal/utils"
)

const (
	initUse                    = types.CommandInit
	initShortDescription       = "write a default configuration file"
	initLongDescription        = `Write the default configuration to ./` + utils.ConfigFileName + `, or to ~/` + utils.GlobalConfigDirectoryName + `/` + utils.GlobalConfigFileName + ` with --global.`
	globalFlagName             = "global"
	forceFlagName              = "force"
	globalFlagDescription      = "write the global configuration instead of the local one"
	forceFlagDescription       = "overwrite an existing configuration file"
	initCompletedMessageFormat = "configuration written to %s\n"
)

// createInitCommand returns the init subcommand.
func createInitCommand() *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			path, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initError != nil {
				return initError
			}
			fmt.Fprintf(command.OutOrStdout(), initCompletedMessageFormat, path)
			return nil
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
