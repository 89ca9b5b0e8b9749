package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	booleanFlagTypeName              = "bool"
	booleanFlagTrueLiteral           = "true"
	booleanFlagAcceptedValuesListing = "true, false, yes, no, on, off, 1, 0"
	booleanFlagInvalidValueFormat    = "invalid boolean value %q for --%s; accepted values: %s"
)

var booleanFlagLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

func parseBooleanLiteral(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return true, true
	}
	parsed, ok := booleanFlagLiterals[normalized]
	return parsed, ok
}

// booleanFlagValue is a pflag.Value that accepts yes/no style literals and
// may be given without a value.
type booleanFlagValue struct {
	target  *bool
	flagKey string
}

func (value *booleanFlagValue) Set(input string) error {
	parsed, ok := parseBooleanLiteral(input)
	if !ok || value.target == nil {
		return fmt.Errorf(booleanFlagInvalidValueFormat, input, value.flagKey, booleanFlagAcceptedValuesListing)
	}
	*value.target = parsed
	return nil
}

func (value *booleanFlagValue) String() string {
	if value == nil || value.target == nil {
		return booleanFlagTrueLiteral
	}
	return strconv.FormatBool(*value.target)
}

func (value *booleanFlagValue) Type() string {
	return booleanFlagTypeName
}

func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	if flagSet == nil || target == nil {
		return
	}
	*target = defaultValue
	flagSet.Var(&booleanFlagValue{target: target, flagKey: name}, name, usage)
	if lookup := flagSet.Lookup(name); lookup != nil {
		lookup.DefValue = strconv.FormatBool(defaultValue)
		lookup.NoOptDefVal = booleanFlagTrueLiteral
	}
}

// normalizeBooleanFlagArguments folds "--flag no" into "--flag=no" for every
// boolean flag of the command tree so the literal is not taken as a positional
// argument.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	if command == nil || len(arguments) == 0 {
		return arguments
	}
	booleanFlags := map[string]struct{}{}
	collectBooleanFlagNames(command, booleanFlags)
	if len(booleanFlags) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		currentArgument := arguments[index]
		if currentArgument == "--" {
			return append(normalized, arguments[index:]...)
		}
		normalized = append(normalized, currentArgument)
		if !strings.HasPrefix(currentArgument, "--") || strings.Contains(currentArgument, "=") || index+1 >= len(arguments) {
			continue
		}
		flagName := strings.TrimPrefix(currentArgument, "--")
		if _, isBoolean := booleanFlags[flagName]; !isBoolean {
			continue
		}
		nextArgument := arguments[index+1]
		if strings.HasPrefix(nextArgument, "-") || strings.TrimSpace(nextArgument) == "" {
			continue
		}
		if _, isLiteral := parseBooleanLiteral(nextArgument); isLiteral {
			normalized[len(normalized)-1] = fmt.Sprintf("--%s=%s", flagName, nextArgument)
			index++
		}
	}
	return normalized
}

func collectBooleanFlagNames(command *cobra.Command, target map[string]struct{}) {
	if command == nil || target == nil {
		return
	}
	visit := func(flagSet *pflag.FlagSet) {
		if flagSet == nil {
			return
		}
		flagSet.VisitAll(func(flag *pflag.Flag) {
			if flag != nil && flag.Value != nil && flag.Value.Type() == booleanFlagTypeName {
				target[flag.Name] = struct{}{}
			}
		})
	}
	visit(command.PersistentFlags())
	visit(command.Flags())
	for _, child := range command.Commands() {
		collectBooleanFlagNames(child, target)
	}
}

// resolveBool returns the flag value when the user set it, otherwise the
// configured value, otherwise the flag default.
func resolveBool(command *cobra.Command, name string, flagValue bool, configured *bool) bool {
	if command.Flags().Changed(name) || configured == nil {
		return flagValue
	}
	return *configured
}

func resolveInt(command *cobra.Command, name string, flagValue int, configured *int) int {
	if command.Flags().Changed(name) || configured == nil {
		return flagValue
	}
	return *configured
}

func resolveFloat(command *cobra.Command, name string, flagValue float64, configured *float64) float64 {
	if command.Flags().Changed(name) || configured == nil {
		return flagValue
	}
	return *configured
}

func resolveString(command *cobra.Command, name string, flagValue string, configured string) string {
	if command.Flags().Changed(name) || configured == "" {
		return flagValue
	}
	return configured
}
