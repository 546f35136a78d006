package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	toggleFlagTypeName      = "bool"
	toggleTrueLiteral       = "true"
	toggleAcceptedLiterals  = "true, false, yes, no, on, off, 1, 0"
	toggleInvalidValueLabel = "invalid boolean value"
	flagPrefix              = "--"
	argumentTerminator      = "--"
)

var toggleLiterals = map[string]bool{
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

func parseToggleLiteral(input string) (bool, bool) {
	parsed, known := toggleLiterals[strings.ToLower(strings.TrimSpace(input))]
	return parsed, known
}

// toggleFlagValue is a boolean flag accepting the literals above, so that
// "--copy no" and "--copy=off" both work.
type toggleFlagValue struct {
	target  *bool
	flagKey string
}

func (value *toggleFlagValue) Set(input string) error {
	if strings.TrimSpace(input) == "" {
		*value.target = true
		return nil
	}
	parsed, known := parseToggleLiteral(input)
	if !known {
		return fmt.Errorf("%s %q for --%s; accepted values: %s", toggleInvalidValueLabel, input, value.flagKey, toggleAcceptedLiterals)
	}
	*value.target = parsed
	return nil
}

func (value *toggleFlagValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleFlagValue) Type() string {
	return toggleFlagTypeName
}

func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	*target = defaultValue
	flagSet.Var(&toggleFlagValue{target: target, flagKey: name}, name, usage)
	registered := flagSet.Lookup(name)
	registered.DefValue = strconv.FormatBool(defaultValue)
	registered.NoOptDefVal = toggleTrueLiteral
}

// normalizeBooleanFlagArguments rewrites "--flag literal" into "--flag=literal"
// for boolean flags. A literal that names an existing directory is left alone,
// since it is the repository path argument.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	booleanFlags := map[string]struct{}{}
	collectBooleanFlagNames(command, booleanFlags)

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		currentArgument := arguments[index]
		if currentArgument == argumentTerminator {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		flagName, isLongFlag := strings.CutPrefix(currentArgument, flagPrefix)
		if isLongFlag && !strings.Contains(flagName, "=") && index+1 < len(arguments) {
			if _, isBoolean := booleanFlags[flagName]; isBoolean && isToggleValueArgument(arguments[index+1]) {
				normalized = append(normalized, currentArgument+"="+arguments[index+1])
				index++
				continue
			}
		}
		normalized = append(normalized, currentArgument)
	}
	return normalized
}

func isToggleValueArgument(argument string) bool {
	if strings.HasPrefix(argument, "-") {
		return false
	}
	if _, known := parseToggleLiteral(argument); !known {
		return false
	}
	if info, statErr := os.Stat(argument); statErr == nil && info.IsDir() {
		return false
	}
	return true
}

func collectBooleanFlagNames(command *cobra.Command, target map[string]struct{}) {
	visit := func(flag *pflag.Flag) {
		if flag.Value.Type() == toggleFlagTypeName {
			target[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(visit)
	command.Flags().VisitAll(visit)
	for _, child := range command.Commands() {
		collectBooleanFlagNames(child, target)
	}
}
