package output

import (
	"fmt"
	"io"
	"os"
)

const (
	outputFilePermissions = 0o644

	writeOutputFileErrorFormat = "write output file %s: %w"
	writeOutputErrorFormat     = "write output: %w"
)

// Clipboard copies rendered output.
type Clipboard interface {
	Copy(text string) error
}

// Sink delivers a fully rendered document to a file or a writer.
type Sink struct {
	// FilePath, when set, receives the document instead of Writer.
	FilePath string
	Writer   io.Writer
	// Clipboard, when set, also receives the document.
	Clipboard Clipboard
}

// Deliver writes the document. The clipboard is only updated after the primary
// write succeeded.
func (sink Sink) Deliver(document string) error {
	if sink.FilePath != "" {
		if writeError := os.WriteFile(sink.FilePath, []byte(document), outputFilePermissions); writeError != nil {
			return fmt.Errorf(writeOutputFileErrorFormat, sink.FilePath, writeError)
		}
	} else if sink.Writer != nil {
		if _, writeError := io.WriteString(sink.Writer, document); writeError != nil {
			return fmt.Errorf(writeOutputErrorFormat, writeError)
		}
	}
	if sink.Clipboard != nil {
		return sink.Clipboard.Copy(document)
	}
	return nil
}
