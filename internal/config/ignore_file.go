package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repoctx/internal/ignore"
	"github.com/temirov/repoctx/internal/utils"
)

const (
	openIgnoreFileErrorFormat   = "open ignore file %s: %w"
	readIgnoreFileErrorFormat   = "read ignore file %s: %w"
	ignoreFileIsDirectoryFormat = "ignore file %s is a directory"
)

// IgnoreOptions selects the ignore sources consulted for a repository.
type IgnoreOptions struct {
	// UseNativeIgnore loads <root>/.gitignore when true.
	UseNativeIgnore bool
	// SupplementaryIgnorePath overrides <root>/.gptignore. Relative paths are
	// resolved against the repository root.
	SupplementaryIgnorePath string
}

// LoadIgnoreFilePatterns reads ignore patterns from a file, one per line.
// A missing file yields no patterns and no error.
func LoadIgnoreFilePatterns(ignoreFilePath string) ([]string, error) {
	fileInfo, statError := os.Stat(ignoreFilePath)
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(openIgnoreFileErrorFormat, ignoreFilePath, statError)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf(ignoreFileIsDirectoryFormat, ignoreFilePath)
	}

	fileHandle, openError := os.Open(ignoreFilePath)
	if openError != nil {
		return nil, fmt.Errorf(openIgnoreFileErrorFormat, ignoreFilePath, openError)
	}
	defer fileHandle.Close()

	var patterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		patterns = append(patterns, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf(readIgnoreFileErrorFormat, ignoreFilePath, scanError)
	}
	return patterns, nil
}

// ResolveSupplementaryIgnorePath returns the absolute location of the
// supplementary ignore file for a repository root.
func ResolveSupplementaryIgnorePath(rootDirectory string, configuredPath string) string {
	if configuredPath == "" {
		return filepath.Join(rootDirectory, utils.SupplementaryIgnoreFileName)
	}
	if filepath.IsAbs(configuredPath) {
		return filepath.Clean(configuredPath)
	}
	return filepath.Join(rootDirectory, configuredPath)
}

// LoadIgnoreSet assembles the ordered rule set for a repository: built-in
// rules, then .gitignore when enabled, then the supplementary ignore file.
func LoadIgnoreSet(rootDirectory string, options IgnoreOptions, logger *zap.Logger) (ignore.Set, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sources := [][]ignore.Rule{ignore.BuiltinRules()}

	if options.UseNativeIgnore {
		nativePath := filepath.Join(rootDirectory, utils.GitIgnoreFileName)
		nativeRules, loadError := loadRules(nativePath, logger)
		if loadError != nil {
			return nil, loadError
		}
		sources = append(sources, nativeRules)
	}

	supplementaryPath := ResolveSupplementaryIgnorePath(rootDirectory, options.SupplementaryIgnorePath)
	supplementaryRules, loadError := loadRules(supplementaryPath, logger)
	if loadError != nil {
		return nil, loadError
	}
	sources = append(sources, supplementaryRules)

	return ignore.NewSet(sources...), nil
}

func loadRules(ignoreFilePath string, logger *zap.Logger) ([]ignore.Rule, error) {
	patterns, loadError := LoadIgnoreFilePatterns(ignoreFilePath)
	if loadError != nil {
		return nil, loadError
	}
	rules := ignore.CompileLines(patterns, ignoreFilePath, logger)
	logger.Debug("loaded ignore rules", zap.String("source", ignoreFilePath), zap.Int("rules", len(rules)))
	return rules, nil
}
