// Package output serializes repository snapshots and writes the result.
package output

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/temirov/repoctx/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	unsupportedFormatErrorFormat = "%w: %q (supported: %s)"
)

// ErrUnsupportedFormat reports a format other than text or json.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// TokenEstimator returns the estimated token count of a piece of text.
type TokenEstimator func(text string) int

// Options adjusts what a rendered document reports besides file contents.
type Options struct {
	// Estimator, when set, adds per-file token estimates and the model's
	// EstimatedTokens to formats that carry them.
	Estimator TokenEstimator
}

// Render serializes model in format without token annotations.
func Render(model *types.RepositoryModel, format string) (string, error) {
	return RenderWithOptions(model, format, Options{})
}

// RenderWithOptions serializes model in format. Nothing is returned for an
// unsupported format.
func RenderWithOptions(model *types.RepositoryModel, format string, options Options) (string, error) {
	switch format {
	case types.FormatText:
		return RenderText(model), nil
	case types.FormatJSON:
		return RenderJSON(model, options)
	default:
		return "", unsupportedFormat(format)
	}
}

// ValidateFormat returns ErrUnsupportedFormat for unknown formats.
func ValidateFormat(format string) error {
	if slices.Contains(types.SupportedFormats, format) {
		return nil
	}
	return unsupportedFormat(format)
}

func unsupportedFormat(format string) error {
	return fmt.Errorf(unsupportedFormatErrorFormat, ErrUnsupportedFormat, format, strings.Join(types.SupportedFormats, ", "))
}
