package tokenizer

import (
	"fmt"
	"unicode/utf8"

	"github.com/temirov/repoctx/internal/output"
	"github.com/temirov/repoctx/internal/types"
)

const (
	// charactersPerToken is the average number of characters per GPT-4 token.
	// Estimate computes ceil(characters / 3.5) as ceil(2 * characters / 7).
	charactersPerTokenNumerator   = 7
	charactersPerTokenDenominator = 2

	maxFixedPointIterations = 8

	modelTokenCountErrorFormat = "count %s tokens: %w"
)

// Estimate returns ceil(characters / 3.5) for text. It is pure and
// non-decreasing in the length of text.
func Estimate(text string) int {
	characters := utf8.RuneCountInString(text)
	return (charactersPerTokenDenominator*characters + charactersPerTokenNumerator - 1) / charactersPerTokenNumerator
}

// EstimateRendered renders model in format, stores the estimate of the
// rendered document in model.EstimatedTokens and returns the document. When
// counter is not nil the model-specific count is stored as well.
//
// JSON documents embed their own counts, so rendering repeats until the
// embedded values equal the counts of the document that contains them.
func EstimateRendered(model *types.RepositoryModel, format string, counter Counter) (string, error) {
	options := output.Options{Estimator: Estimate}
	if counter != nil {
		model.TokenModel = counter.Name()
	}

	rendered, renderErr := output.RenderWithOptions(model, format, options)
	if renderErr != nil {
		return "", renderErr
	}
	for iteration := 0; iteration < maxFixedPointIterations; iteration++ {
		estimatedTokens := Estimate(rendered)
		modelTokens, countErr := countModelTokens(counter, rendered)
		if countErr != nil {
			return "", countErr
		}
		if estimatedTokens == model.EstimatedTokens && modelTokens == model.ModelTokens {
			return rendered, nil
		}
		model.EstimatedTokens = estimatedTokens
		model.ModelTokens = modelTokens
		if format != types.FormatJSON {
			return rendered, nil
		}
		rendered, renderErr = output.RenderWithOptions(model, format, options)
		if renderErr != nil {
			return "", renderErr
		}
	}
	return rendered, nil
}

func countModelTokens(counter Counter, document string) (int, error) {
	if counter == nil {
		return 0, nil
	}
	tokens, countErr := counter.CountString(document)
	if countErr != nil {
		return 0, fmt.Errorf(modelTokenCountErrorFormat, counter.Name(), countErr)
	}
	return tokens, nil
}
