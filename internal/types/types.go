// Package types defines the data structures shared across repoctx packages.
package types

const (
	FormatText = "text"
	FormatJSON = "json"
)

// SupportedFormats lists the serialization formats in the order they are documented.
var SupportedFormats = []string{FormatText, FormatJSON}

// FileRecord is one included file.
type FileRecord struct {
	// Path is relative to the repository root and slash-separated.
	Path string
	// Content is the decoded text, never truncated.
	Content string
	// SizeBytes is the size of the file on disk.
	SizeBytes int64
}

// RepositoryModel is the snapshot of a repository that gets serialized.
// Files are sorted by Path and unique.
type RepositoryModel struct {
	Name  string
	Files []FileRecord
	// EstimatedTokens is derived from the rendered artifact; zero until estimated.
	EstimatedTokens int
	// TokenModel and ModelTokens report an optional model-specific token count.
	TokenModel  string
	ModelTokens int
}

// TotalSizeBytes sums the on-disk size of every file.
func (model *RepositoryModel) TotalSizeBytes() int64 {
	var totalSize int64
	for _, file := range model.Files {
		totalSize += file.SizeBytes
	}
	return totalSize
}
