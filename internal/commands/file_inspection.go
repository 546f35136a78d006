package commands

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/repoctx/internal/types"
	"github.com/temirov/repoctx/internal/utils"
)

// inspectFile reads and decodes one file. The boolean result is false when the
// file could not be read or is no longer text; the caller skips such files.
func inspectFile(rootDirectory string, relativePath string, logger *zap.Logger) (types.FileRecord, bool) {
	absolutePath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
	fileBytes, readErr := os.ReadFile(absolutePath)
	if readErr != nil {
		logger.Warn(warningFileRead, zap.String("path", relativePath), zap.Error(readErr))
		return types.FileRecord{}, false
	}
	content, isText := utils.DecodeText(fileBytes)
	if !isText {
		logger.Warn(warningFileNotText, zap.String("path", relativePath))
		return types.FileRecord{}, false
	}
	return types.FileRecord{
		Path:      relativePath,
		Content:   content,
		SizeBytes: int64(len(fileBytes)),
	}, true
}
