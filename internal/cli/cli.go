// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repoctx/internal/config"
	"github.com/temirov/repoctx/internal/output"
	"github.com/temirov/repoctx/internal/pipeline"
	"github.com/temirov/repoctx/internal/services/clipboard"
	"github.com/temirov/repoctx/internal/types"
	"github.com/temirov/repoctx/internal/utils"
)

const (
	formatFlagName      = "format"
	outputFlagName      = "output"
	outputFlagShorthand = "o"
	nameFlagName        = "name"
	noGitignoreFlagName = "no-gitignore"
	ignoreFileFlagName  = "ignore-file"
	maxFileSizeFlagName = "max-file-size"
	tokensFlagName      = "tokens"
	modelFlagName       = "model"
	copyFlagName        = "copy"
	configFlagName      = "config"
	verboseFlagName     = "verbose"
	versionFlagName     = "version"
	globalFlagName      = "global"
	forceFlagName       = "force"

	versionTemplate      = "repoctx version: %s\n"
	initCompletedMessage = "configuration written to %s\n"
	defaultPath          = "."
	rootUse              = "repoctx [path]"
	rootShortDescription = "serialize a repository into a single LLM-ready document"
	rootLongDescription  = `repoctx walks a local repository and writes every text file that survives
.gitignore and .gptignore rules into one document, as plain text or JSON,
together with an estimate of the tokens it occupies.
Configuration is read from ~/.repoctx/config.yaml, <path>/.repoctx.yaml and
REPOCTX_* environment variables; flags take precedence.`
	rootUsageExample = `  # Snapshot the current directory as text
  repoctx

  # Write a JSON snapshot of another repository to a file
  repoctx ../service --format json -o service.json

  # Use a shared ignore file and copy the result to the clipboard
  repoctx --ignore-file ~/prompts/.gptignore --copy`
	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write a default configuration to ./.repoctx.yaml, or to
~/.repoctx/config.yaml with --global. Existing files are kept unless --force is given.`

	formatFlagDescription      = "output format (text or json)"
	outputFlagDescription      = "write the document to a file instead of stdout"
	nameFlagDescription        = "repository name recorded in the document"
	noGitignoreFlagDescription = "do not apply .gitignore rules"
	ignoreFileFlagDescription  = "supplementary ignore file (default <path>/.gptignore)"
	maxFileSizeFlagDescription = "skip files larger than this size, e.g. 512kb (0 means unlimited)"
	tokensFlagDescription      = "report the estimated token count"
	modelFlagDescription       = "also count tokens with this model's tokenizer, e.g. gpt-4o"
	copyFlagDescription        = "copy the document to the system clipboard"
	configFlagDescription      = "configuration file used instead of <path>/.repoctx.yaml"
	verboseFlagDescription     = "log every skipped path"
	versionFlagDescription     = "display application version"
	globalFlagDescription      = "write the global configuration"
	forceFlagDescription       = "overwrite an existing configuration file"

	loggerErrorFormat            = "initialize logger: %w"
	resolvePathErrorFormat       = "resolve path %s: %w"
	loadConfigurationErrorFormat = "load configuration: %w"
	maxFileSizeFlagErrorFormat   = "--%s: %w"
)

// LoggerFactory builds the logger used for a run.
type LoggerFactory func(verbose bool) (*zap.Logger, error)

type dependencies struct {
	clipboard     clipboard.Copier
	loggerFactory LoggerFactory
}

// snapshotFlags holds the values of the root command flags.
type snapshotFlags struct {
	format            string
	outputPath        string
	name              string
	disableGitignore  bool
	ignoreFile        string
	maxFileSize       string
	tokens            bool
	model             string
	copyToClipboard   bool
	configurationPath string
	verbose           bool
	showVersion       bool
}

// Execute runs the repoctx application with the process arguments.
func Execute(ctx context.Context) error {
	rootCommand := createRootCommand(dependencies{
		clipboard:     clipboard.NewService(),
		loggerFactory: utils.NewApplicationLogger,
	})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// createRootCommand builds the root Cobra command.
func createRootCommand(deps dependencies) *cobra.Command {
	var flags snapshotFlags

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if flags.showVersion {
				_, err := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return err
			}
			rootPath := defaultPath
			if len(arguments) > 0 {
				rootPath = arguments[0]
			}
			return runSnapshot(command, rootPath, flags, deps)
		},
	}

	flagSet := rootCommand.Flags()
	flagSet.StringVar(&flags.format, formatFlagName, types.FormatText, formatFlagDescription)
	flagSet.StringVarP(&flags.outputPath, outputFlagName, outputFlagShorthand, "", outputFlagDescription)
	flagSet.StringVar(&flags.name, nameFlagName, "", nameFlagDescription)
	registerBooleanFlag(flagSet, &flags.disableGitignore, noGitignoreFlagName, false, noGitignoreFlagDescription)
	flagSet.StringVar(&flags.ignoreFile, ignoreFileFlagName, "", ignoreFileFlagDescription)
	flagSet.StringVar(&flags.maxFileSize, maxFileSizeFlagName, "0", maxFileSizeFlagDescription)
	registerBooleanFlag(flagSet, &flags.tokens, tokensFlagName, true, tokensFlagDescription)
	flagSet.StringVar(&flags.model, modelFlagName, "", modelFlagDescription)
	registerBooleanFlag(flagSet, &flags.copyToClipboard, copyFlagName, false, copyFlagDescription)
	flagSet.StringVar(&flags.configurationPath, configFlagName, "", configFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &flags.verbose, verboseFlagName, false, verboseFlagDescription)
	registerBooleanFlag(flagSet, &flags.showVersion, versionFlagName, false, versionFlagDescription)

	rootCommand.AddCommand(createInitCommand())
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

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
			writtenPath, initErr := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initErr != nil {
				return initErr
			}
			_, err := fmt.Fprintf(command.OutOrStdout(), initCompletedMessage, writtenPath)
			return err
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

func runSnapshot(command *cobra.Command, rootPath string, flags snapshotFlags, deps dependencies) error {
	logger, loggerErr := deps.loggerFactory(flags.verbose)
	if loggerErr != nil {
		return fmt.Errorf(loggerErrorFormat, loggerErr)
	}
	defer func() { _ = logger.Sync() }()

	absoluteRoot, absoluteErr := filepath.Abs(rootPath)
	if absoluteErr != nil {
		return fmt.Errorf(resolvePathErrorFormat, rootPath, absoluteErr)
	}
	configurationPath := flags.configurationPath
	if configurationPath != "" {
		if configurationPath, absoluteErr = filepath.Abs(configurationPath); absoluteErr != nil {
			return fmt.Errorf(resolvePathErrorFormat, flags.configurationPath, absoluteErr)
		}
	}
	applicationConfiguration, configurationErr := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: absoluteRoot,
		ExplicitFilePath: configurationPath,
	})
	if configurationErr != nil {
		return fmt.Errorf(loadConfigurationErrorFormat, configurationErr)
	}

	settings, settingsErr := resolveSettings(command, absoluteRoot, flags, applicationConfiguration)
	if settingsErr != nil {
		return settingsErr
	}
	logger.Debug("resolved settings",
		zap.String("root", settings.options.Root),
		zap.String("format", settings.options.Format),
		zap.Bool("gitignore", settings.options.UseNativeIgnore),
		zap.String("ignore_file", settings.options.SupplementaryIgnorePath),
		zap.Int64("max_file_size", settings.options.MaxFileSizeBytes))

	result, runErr := pipeline.Run(command.Context(), settings.options, logger)
	if runErr != nil {
		return runErr
	}

	sink := output.Sink{FilePath: settings.outputPath, Writer: command.OutOrStdout()}
	if settings.copyToClipboard {
		sink.Clipboard = deps.clipboard
	}
	return sink.Deliver(result.Rendered)
}

type resolvedSettings struct {
	options         pipeline.Options
	outputPath      string
	copyToClipboard bool
}

// resolveSettings layers explicitly set flags over configuration over defaults.
func resolveSettings(command *cobra.Command, absoluteRoot string, flags snapshotFlags, applicationConfiguration config.ApplicationConfiguration) (resolvedSettings, error) {
	changed := func(flagName string) bool {
		return command.Flags().Changed(flagName)
	}
	options := pipeline.DefaultOptions(absoluteRoot)

	if applicationConfiguration.Format != "" {
		options.Format = applicationConfiguration.Format
	}
	if changed(formatFlagName) {
		options.Format = flags.format
	}
	if formatErr := output.ValidateFormat(options.Format); formatErr != nil {
		return resolvedSettings{}, formatErr
	}

	options.Name = applicationConfiguration.Name
	if changed(nameFlagName) {
		options.Name = flags.name
	}

	if applicationConfiguration.Paths.UseGitignore != nil {
		options.UseNativeIgnore = *applicationConfiguration.Paths.UseGitignore
	}
	if changed(noGitignoreFlagName) {
		options.UseNativeIgnore = !flags.disableGitignore
	}

	options.SupplementaryIgnorePath = applicationConfiguration.Paths.IgnoreFile
	if changed(ignoreFileFlagName) {
		ignoreFilePath, absoluteErr := filepath.Abs(flags.ignoreFile)
		if absoluteErr != nil {
			return resolvedSettings{}, fmt.Errorf(resolvePathErrorFormat, flags.ignoreFile, absoluteErr)
		}
		options.SupplementaryIgnorePath = ignoreFilePath
	}

	maxFileSizeBytes, sizeErr := applicationConfiguration.MaxFileSizeBytes()
	if sizeErr != nil {
		return resolvedSettings{}, sizeErr
	}
	if changed(maxFileSizeFlagName) {
		flagSizeBytes, flagSizeErr := utils.ParseFileSize(flags.maxFileSize)
		if flagSizeErr != nil {
			return resolvedSettings{}, fmt.Errorf(maxFileSizeFlagErrorFormat, maxFileSizeFlagName, flagSizeErr)
		}
		maxFileSizeBytes = flagSizeBytes
	}
	options.MaxFileSizeBytes = maxFileSizeBytes

	if applicationConfiguration.Tokens.Enabled != nil {
		options.EmitTokenEstimate = *applicationConfiguration.Tokens.Enabled
	}
	if changed(tokensFlagName) {
		options.EmitTokenEstimate = flags.tokens
	}
	options.TokenModel = applicationConfiguration.Tokens.Model
	if changed(modelFlagName) {
		options.TokenModel = flags.model
		if flags.model != "" {
			options.EmitTokenEstimate = true
		}
	}

	settings := resolvedSettings{options: options, outputPath: applicationConfiguration.Output}
	if changed(outputFlagName) {
		settings.outputPath = flags.outputPath
	}
	if applicationConfiguration.Copy != nil {
		settings.copyToClipboard = *applicationConfiguration.Copy
	}
	if changed(copyFlagName) {
		settings.copyToClipboard = flags.copyToClipboard
	}
	return settings, nil
}

