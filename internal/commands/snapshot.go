// Package commands builds repository snapshots from walked paths.
package commands

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/temirov/repoctx/internal/types"
	"github.com/temirov/repoctx/internal/utils"
)

const (
	warningFileRead    = "skipping file that could not be read"
	warningFileNotText = "skipping file that is no longer text"

	duplicatePathErrorFormat = "%w: %s"
	escapingPathErrorFormat  = "%w: %q"
)

var (
	// ErrDuplicatePath reports that the same path was supplied twice.
	ErrDuplicatePath = errors.New("duplicate path in repository snapshot")
	// ErrPathEscapesRoot reports a path that is absolute or leaves the repository root.
	ErrPathEscapesRoot = errors.New("path escapes repository root")
)

// BuildSnapshot reads every path and returns a model with files sorted by
// path. Paths are relative to rootDirectory. Files that cannot be read or
// decoded are skipped with a warning; duplicate or escaping paths are errors.
func BuildSnapshot(rootDirectory string, relativePaths []string, name string, logger *zap.Logger) (*types.RepositoryModel, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	normalizedPaths := make([]string, 0, len(relativePaths))
	for _, relativePath := range relativePaths {
		normalizedPath := utils.NormalizeRelativePath(relativePath)
		if !utils.IsLocalRelativePath(normalizedPath) {
			return nil, fmt.Errorf(escapingPathErrorFormat, ErrPathEscapesRoot, relativePath)
		}
		normalizedPaths = append(normalizedPaths, normalizedPath)
	}
	slices.Sort(normalizedPaths)
	for pathIndex := 1; pathIndex < len(normalizedPaths); pathIndex++ {
		if normalizedPaths[pathIndex] == normalizedPaths[pathIndex-1] {
			return nil, fmt.Errorf(duplicatePathErrorFormat, ErrDuplicatePath, normalizedPaths[pathIndex])
		}
	}

	model := &types.RepositoryModel{Name: name, Files: make([]types.FileRecord, 0, len(normalizedPaths))}
	for _, relativePath := range normalizedPaths {
		record, included := inspectFile(rootDirectory, relativePath, logger)
		if !included {
			continue
		}
		model.Files = append(model.Files, record)
	}
	logger.Debug("built repository snapshot",
		zap.String("name", name),
		zap.Int("files", len(model.Files)),
		zap.Int("skipped", len(normalizedPaths)-len(model.Files)))
	return model, nil
}

