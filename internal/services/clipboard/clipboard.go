// Package clipboard copies rendered snapshots to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable reports a platform without a usable clipboard utility.
var ErrClipboardUnavailable = errors.New("system clipboard is unavailable (install xclip, xsel or wl-clipboard)")

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a clipboard Service.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	if copyError := clipboard.WriteAll(text); copyError != nil {
		return fmt.Errorf("copy to clipboard: %w", copyError)
	}
	return nil
}

var _ Copier = (*Service)(nil)
