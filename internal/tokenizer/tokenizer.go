// Package tokenizer estimates how many language-model tokens a rendered
// snapshot occupies.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter counts model tokens for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config selects the model whose tokenizer is used.
type Config struct {
	Model string
}

const (
	defaultEncodingName = "cl100k_base"

	fallbackTokenizerErrorFormat = "initialize fallback tokenizer %s: %w"
)

// ErrModelRequired reports an empty model name.
var ErrModelRequired = errors.New("token model is required")

// NewCounter returns a tiktoken Counter for the requested model and the name
// it reports under. Models without a known encoding use cl100k_base.
func NewCounter(cfg Config) (Counter, string, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, "", ErrModelRequired
	}
	lowerModel := strings.ToLower(model)

	encoding, encodingErr := tiktoken.EncodingForModel(lowerModel)
	if encodingErr == nil && encoding != nil {
		return openAICounter{encoding: encoding, name: lowerModel}, model, nil
	}
	fallback, fallbackErr := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackErr != nil {
		return nil, "", fmt.Errorf(fallbackTokenizerErrorFormat, defaultEncodingName, fallbackErr)
	}
	return openAICounter{encoding: fallback, name: defaultEncodingName}, defaultEncodingName, nil
}
