// Package walker enumerates the text files of a repository that survive the
// ignore policy.
package walker

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repoctx/internal/ignore"
	"github.com/temirov/repoctx/internal/utils"
)

const (
	skipReasonIgnored   = "ignored"
	skipReasonNotText   = "not text"
	skipReasonTooLarge  = "exceeds size limit"
	skipReasonSymlink   = "symbolic link"
	skipReasonIrregular = "not a regular file"
	skipReasonNewline   = "name contains a newline"
)

// PathPolicy decides whether a root-relative path is excluded.
type PathPolicy interface {
	IsIgnored(relativePath string, isDirectory bool) bool
}

// Walker traverses a directory tree depth-first, pruning ignored directories
// and yielding the root-relative paths of included text files.
type Walker struct {
	Policy PathPolicy
	Logger *zap.Logger
	// MaxFileSizeBytes excludes larger files before they are read. Zero disables the limit.
	MaxFileSizeBytes int64
	// ReadFile loads file content for the text check. Nil means os.ReadFile.
	ReadFile func(name string) ([]byte, error)
}

// New returns a Walker over policy. A nil policy excludes only repository metadata.
func New(policy PathPolicy, logger *zap.Logger) *Walker {
	return &Walker{Policy: policy, Logger: logger, ReadFile: os.ReadFile}
}

// Files returns a lazy sequence of included file paths, relative to root and
// slash-separated. Each range over the sequence walks the tree again. A root
// that is a symbolic link is resolved once; links below it are never followed.
func (walker *Walker) Files(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		walker.walk(root, yield)
	}
}

// Collect walks root once and returns the included paths sorted.
func (walker *Walker) Collect(root string) []string {
	paths := slices.Collect(walker.Files(root))
	slices.Sort(paths)
	return paths
}

func (walker *Walker) walk(root string, yield func(string) bool) {
	logger := walker.logger()
	policy := walker.policy()
	if resolvedRoot, resolveError := filepath.EvalSymlinks(root); resolveError == nil {
		root = resolvedRoot
	}

	_ = filepath.WalkDir(root, func(currentPath string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			if currentPath == root {
				logger.Warn("cannot read repository root", zap.String("path", root), zap.Error(walkError))
				return walkError
			}
			logger.Warn("skipping unreadable path", zap.String("path", currentPath), zap.Error(walkError))
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if currentPath == root {
			return nil
		}

		relativePath, relativeError := filepath.Rel(root, currentPath)
		if relativeError != nil {
			logger.Warn("skipping path outside root", zap.String("path", currentPath), zap.Error(relativeError))
			return nil
		}
		relativePath = filepath.ToSlash(relativePath)
		if strings.ContainsAny(entry.Name(), "\n\r") {
			return walker.skip(relativePath, entry, skipReasonNewline)
		}

		entryType := entry.Type()
		switch {
		case entryType&fs.ModeSymlink != 0:
			return walker.skip(relativePath, entry, skipReasonSymlink)
		case entry.IsDir():
			if policy.IsIgnored(relativePath, true) {
				return walker.skip(relativePath, entry, skipReasonIgnored)
			}
			return nil
		case !entryType.IsRegular():
			return walker.skip(relativePath, entry, skipReasonIrregular)
		}

		if policy.IsIgnored(relativePath, false) {
			return walker.skip(relativePath, entry, skipReasonIgnored)
		}
		if !walker.isIncludedFile(currentPath, relativePath, entry) {
			return nil
		}
		if !yield(relativePath) {
			return filepath.SkipAll
		}
		return nil
	})
}

// isIncludedFile applies the size limit and decodes the full content.
func (walker *Walker) isIncludedFile(absolutePath string, relativePath string, entry fs.DirEntry) bool {
	logger := walker.logger()
	if walker.MaxFileSizeBytes > 0 {
		fileInfo, infoError := entry.Info()
		if infoError != nil {
			logger.Warn("skipping file", zap.String("path", relativePath), zap.Error(infoError))
			return false
		}
		if fileInfo.Size() > walker.MaxFileSizeBytes {
			walker.skip(relativePath, entry, skipReasonTooLarge)
			return false
		}
	}
	data, readError := walker.readFile(absolutePath)
	if readError != nil {
		logger.Warn("skipping file", zap.String("path", relativePath), zap.Error(readError))
		return false
	}
	if _, isText := utils.DecodeText(data); !isText {
		walker.skip(relativePath, entry, skipReasonNotText)
		return false
	}
	return true
}

// skip logs an exclusion and prunes directories.
func (walker *Walker) skip(relativePath string, entry fs.DirEntry, reason string) error {
	walker.logger().Debug("skipping path", zap.String("path", relativePath), zap.String("reason", reason))
	if entry.IsDir() {
		return filepath.SkipDir
	}
	return nil
}

func (walker *Walker) logger() *zap.Logger {
	if walker.Logger == nil {
		return zap.NewNop()
	}
	return walker.Logger
}

func (walker *Walker) readFile(absolutePath string) ([]byte, error) {
	if walker.ReadFile == nil {
		return os.ReadFile(absolutePath)
	}
	return walker.ReadFile(absolutePath)
}

func (walker *Walker) policy() PathPolicy {
	if walker.Policy == nil {
		return ignore.NewPolicy(nil, walker.Logger)
	}
	return walker.Policy
}
