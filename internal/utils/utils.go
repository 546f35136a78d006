// Package utils contains general helper functions used across repoctx.
package utils

import (
	"path/filepath"
	"strings"
)

// File and directory names with a fixed meaning to the tool.
const (
	// SupplementaryIgnoreFileName is the default name of the user-supplied ignore file.
	SupplementaryIgnoreFileName = ".gptignore"
	// GitIgnoreFileName is the name of the repository-native ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the repository metadata directory.
	GitDirectoryName = ".git"
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = ".repoctx.yaml"
	// GlobalConfigDirectoryName is the directory under the home directory holding the global configuration.
	GlobalConfigDirectoryName = ".repoctx"
	// GlobalConfigFileName is the name of the configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
)

const pathSegmentSeparator = "/"

// NormalizeRelativePath strips leading "./" and trailing separators from a
// slash-separated relative path. Only "/" separates segments; a backslash is an
// ordinary file name character.
func NormalizeRelativePath(relativePath string) string {
	normalizedPath := relativePath
	for strings.HasPrefix(normalizedPath, "./") {
		normalizedPath = strings.TrimPrefix(normalizedPath, "./")
	}
	normalizedPath = strings.TrimSuffix(normalizedPath, pathSegmentSeparator)
	if normalizedPath == "." {
		return ""
	}
	return normalizedPath
}

// SplitPathSegments splits a normalized relative path into its segments.
// The empty path has no segments.
func SplitPathSegments(relativePath string) []string {
	normalizedPath := NormalizeRelativePath(relativePath)
	if normalizedPath == "" {
		return nil
	}
	return strings.Split(normalizedPath, pathSegmentSeparator)
}

// IsLocalRelativePath reports whether a slash-separated path is relative and stays
// inside the directory it is relative to.
func IsLocalRelativePath(relativePath string) bool {
	if relativePath == "" || strings.HasPrefix(relativePath, pathSegmentSeparator) {
		return false
	}
	return filepath.IsLocal(filepath.FromSlash(relativePath))
}
