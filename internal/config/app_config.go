// Package config loads repoctx configuration files and repository ignore sources.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/temirov/repoctx/internal/utils"
)

const (
	// EnvironmentPrefix prefixes environment variables that override configuration keys.
	EnvironmentPrefix = "REPOCTX"

	environmentKeySeparator = "."
)

// environmentKeys lists the configuration keys that may be supplied through
// environment variables such as REPOCTX_TOKENS_MODEL.
var environmentKeys = []string{
	"format",
	"output",
	"name",
	"copy",
	"tokens.enabled",
	"tokens.model",
	"paths.use_gitignore",
	"paths.ignore_file",
	"paths.max_file_size",
}

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds the defaults applied to a snapshot run.
// Pointer fields distinguish an unset value from an explicit false.
type ApplicationConfiguration struct {
	Format string             `mapstructure:"format"`
	Output string             `mapstructure:"output"`
	Name   string             `mapstructure:"name"`
	Copy   *bool              `mapstructure:"copy"`
	Tokens TokenConfiguration `mapstructure:"tokens"`
	Paths  PathConfiguration  `mapstructure:"paths"`
}

// TokenConfiguration controls token reporting.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// PathConfiguration configures which repository files are considered.
type PathConfiguration struct {
	UseGitignore *bool  `mapstructure:"use_gitignore"`
	IgnoreFile   string `mapstructure:"ignore_file"`
	MaxFileSize  string `mapstructure:"max_file_size"`
}

// LoadApplicationConfiguration merges the global configuration, the local (or
// explicitly named) configuration and REPOCTX_* environment variables, in that order.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if options.ExplicitFilePath != "" {
		if _, statErr := os.Stat(localPath); statErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf("configuration file %s: %w", localPath, statErr)
		}
	}
	localConfig, loadErr := loadConfigurationFromPath(localPath)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	environmentConfig, environmentErr := loadConfigurationFromEnvironment()
	if environmentErr != nil {
		return ApplicationConfiguration{}, environmentErr
	}
	return merged.Merge(environmentConfig), nil
}

// MaxFileSizeBytes parses paths.max_file_size. Zero means unlimited.
func (config ApplicationConfiguration) MaxFileSizeBytes() (int64, error) {
	sizeBytes, parseErr := utils.ParseFileSize(config.Paths.MaxFileSize)
	if parseErr != nil {
		return 0, fmt.Errorf("paths.max_file_size: %w", parseErr)
	}
	return sizeBytes, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.ConfigFileName)
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath
	}
	return filepath.Join(workingDirectory, explicitPath)
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

func loadConfigurationFromEnvironment() (ApplicationConfiguration, error) {
	reader := viper.New()
	reader.SetEnvPrefix(EnvironmentPrefix)
	reader.SetEnvKeyReplacer(strings.NewReplacer(environmentKeySeparator, "_"))
	for _, key := range environmentKeys {
		if bindErr := reader.BindEnv(key); bindErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf("bind environment for %s: %w", key, bindErr)
		}
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode %s_* environment: %w", EnvironmentPrefix, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.Name != "" {
		result.Name = override.Name
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	result.Paths = result.Paths.merge(override.Paths)
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func (config PathConfiguration) merge(override PathConfiguration) PathConfiguration {
	result := config
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	if override.IgnoreFile != "" {
		result.IgnoreFile = override.IgnoreFile
	}
	if override.MaxFileSize != "" {
		result.MaxFileSize = override.MaxFileSize
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
