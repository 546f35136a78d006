// Package repository derives descriptive metadata for a repository root.
package repository

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

const (
	originRemoteName = "origin"
	fallbackName     = "repository"
)

// remoteRepositoryPattern captures owner and repository from remote URLs such
// as git@github.com:owner/repo.git and https://github.com/owner/repo.
var remoteRepositoryPattern = regexp.MustCompile(`[:/]([^/:]+)/([^/]+?)(?:\.git)?/?$`)

// ResolveName returns override when set, otherwise "owner/repo" from the
// origin remote, otherwise the base name of the root directory.
func ResolveName(rootDirectory string, override string, logger *zap.Logger) string {
	if trimmedOverride := strings.TrimSpace(override); trimmedOverride != "" {
		return trimmedOverride
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if remoteName := nameFromOriginRemote(rootDirectory, logger); remoteName != "" {
		return remoteName
	}
	absoluteRoot, absoluteErr := filepath.Abs(rootDirectory)
	if absoluteErr != nil {
		return fallbackName
	}
	baseName := filepath.Base(absoluteRoot)
	if baseName == string(filepath.Separator) || baseName == "." {
		return fallbackName
	}
	return baseName
}

func nameFromOriginRemote(rootDirectory string, logger *zap.Logger) string {
	gitRepository, openErr := git.PlainOpen(rootDirectory)
	if openErr != nil {
		return ""
	}
	remote, remoteErr := gitRepository.Remote(originRemoteName)
	if remoteErr != nil {
		logger.Debug("repository has no origin remote", zap.String("root", rootDirectory), zap.Error(remoteErr))
		return ""
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return ""
	}
	return ParseRemoteName(urls[0])
}

// ParseRemoteName extracts "owner/repo" from a remote URL, or "" when the URL
// has no such suffix.
func ParseRemoteName(remoteURL string) string {
	matches := remoteRepositoryPattern.FindStringSubmatch(strings.TrimSpace(remoteURL))
	if len(matches) != 3 || matches[2] == "" {
		return ""
	}
	return matches[1] + "/" + matches[2]
}
