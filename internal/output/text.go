package output

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/repoctx/internal/types"
)

const (
	textPreamble = "The following text is a Git repository with code. " +
		"The structure of the text are sections that begin with ----, followed by a line " +
		"\"File: <path> (<n> bytes)\" naming the file, followed by exactly <n> bytes of file contents, " +
		"a newline, and a line \"End of file: <path>\". " +
		"The text representing the Git repository ends when the symbols --END-- are encountered. " +
		"Any further text beyond --END-- are meant to be interpreted as instructions " +
		"using the aforementioned Git repository as context.\n"

	repositoryNamePrefix = "Repository: "
	sectionSeparator     = "----"
	documentTerminator   = "--END--"
	fileHeaderPrefix     = "File: "
	fileHeaderSizeStart  = " ("
	fileHeaderSizeEnd    = " bytes)"
	fileFooterPrefix     = "End of file: "
	lineBreak            = "\n"

	malformedTextErrorFormat = "%w: %s"
)

// ErrMalformedText reports a document that does not follow the text layout.
var ErrMalformedText = errors.New("malformed text document")

var nameSanitizer = strings.NewReplacer("\r", " ", "\n", " ")

// RenderText serializes the model as the plain-text layout described by its
// own preamble. Each section header records the content length in bytes, so
// contents containing delimiter lines are still recoverable.
func RenderText(model *types.RepositoryModel) string {
	var builder strings.Builder
	builder.WriteString(textPreamble)
	if model.Name != "" {
		builder.WriteString(repositoryNamePrefix + nameSanitizer.Replace(model.Name) + lineBreak)
	}
	for _, file := range model.Files {
		builder.WriteString(sectionSeparator + lineBreak)
		builder.WriteString(fileHeaderPrefix + file.Path + fileHeaderSizeStart + strconv.Itoa(len(file.Content)) + fileHeaderSizeEnd + lineBreak)
		builder.WriteString(file.Content)
		builder.WriteString(lineBreak)
		builder.WriteString(fileFooterPrefix + file.Path + lineBreak)
	}
	builder.WriteString(documentTerminator + lineBreak)
	return builder.String()
}

// ParseText recovers the repository name and the ordered (path, content)
// pairs from a document produced by RenderText. Text after --END-- is ignored.
func ParseText(document string) (*types.RepositoryModel, error) {
	model := &types.RepositoryModel{}
	remaining := document

	for {
		line, rest, found := strings.Cut(remaining, lineBreak)
		if !found {
			return nil, malformed("missing " + documentTerminator)
		}
		if line == sectionSeparator || line == documentTerminator {
			break
		}
		if strings.HasPrefix(line, repositoryNamePrefix) {
			model.Name = strings.TrimPrefix(line, repositoryNamePrefix)
		}
		remaining = rest
	}

	for {
		line, rest, _ := strings.Cut(remaining, lineBreak)
		if line == documentTerminator {
			return model, nil
		}
		if line != sectionSeparator {
			return nil, malformed("expected " + sectionSeparator)
		}
		file, afterFile, parseError := parseFileSection(rest)
		if parseError != nil {
			return nil, parseError
		}
		model.Files = append(model.Files, file)
		remaining = afterFile
	}
}

func parseFileSection(section string) (types.FileRecord, string, error) {
	header, rest, found := strings.Cut(section, lineBreak)
	if !found || !strings.HasPrefix(header, fileHeaderPrefix) || !strings.HasSuffix(header, fileHeaderSizeEnd) {
		return types.FileRecord{}, "", malformed("invalid file header")
	}
	headerBody := strings.TrimSuffix(strings.TrimPrefix(header, fileHeaderPrefix), fileHeaderSizeEnd)
	sizeStart := strings.LastIndex(headerBody, fileHeaderSizeStart)
	if sizeStart < 0 {
		return types.FileRecord{}, "", malformed("missing content length in " + header)
	}
	path := headerBody[:sizeStart]
	contentLength, convertError := strconv.Atoi(headerBody[sizeStart+len(fileHeaderSizeStart):])
	if convertError != nil || contentLength < 0 || contentLength > len(rest) {
		return types.FileRecord{}, "", malformed("invalid content length in " + header)
	}

	content := rest[:contentLength]
	expectedFooter := lineBreak + fileFooterPrefix + path + lineBreak
	if !strings.HasPrefix(rest[contentLength:], expectedFooter) {
		return types.FileRecord{}, "", malformed("missing end of file marker for " + path)
	}
	record := types.FileRecord{Path: path, Content: content, SizeBytes: int64(contentLength)}
	return record, rest[contentLength+len(expectedFooter):], nil
}

func malformed(detail string) error {
	return fmt.Errorf(malformedTextErrorFormat, ErrMalformedText, detail)
}
