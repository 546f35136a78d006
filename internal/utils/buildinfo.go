package utils

import (
	"runtime/debug"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const (
	unknownVersion    = "unknown"
	develVersion      = "(devel)"
	shortHashLength   = 7
	dirtyVersionLabel = "-dirty"
)

// GetApplicationVersion reports the module version recorded by the Go toolchain.
// Development builds fall back to the tag or commit checked out in the
// surrounding Git working tree.
func GetApplicationVersion() string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != develVersion {
		return buildInfo.Main.Version
	}
	if version := versionFromWorkingTree("."); version != "" {
		return version
	}
	return unknownVersion
}

// versionFromWorkingTree returns the tag pointing at HEAD, or the abbreviated
// HEAD hash when no tag matches.
func versionFromWorkingTree(startDirectory string) string {
	repository, openError := git.PlainOpenWithOptions(startDirectory, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return ""
	}
	head, headError := repository.Head()
	if headError != nil {
		return ""
	}

	version := head.Hash().String()[:shortHashLength]
	tags, tagsError := repository.Tags()
	if tagsError == nil {
		_ = tags.ForEach(func(reference *plumbing.Reference) error {
			targetHash := reference.Hash()
			if annotated, annotatedError := repository.TagObject(targetHash); annotatedError == nil {
				targetHash = annotated.Target
			}
			if targetHash == head.Hash() {
				version = reference.Name().Short()
			}
			return nil
		})
	}

	if worktree, worktreeError := repository.Worktree(); worktreeError == nil {
		if status, statusError := worktree.Status(); statusError == nil && !status.IsClean() {
			version += dirtyVersionLabel
		}
	}
	return version
}
