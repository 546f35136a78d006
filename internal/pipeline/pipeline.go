// Package pipeline runs a snapshot end to end: load ignore sources, walk the
// tree, build the model, render it and estimate its tokens.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/repoctx/internal/commands"
	"github.com/temirov/repoctx/internal/config"
	"github.com/temirov/repoctx/internal/ignore"
	"github.com/temirov/repoctx/internal/output"
	"github.com/temirov/repoctx/internal/repository"
	"github.com/temirov/repoctx/internal/tokenizer"
	"github.com/temirov/repoctx/internal/types"
	"github.com/temirov/repoctx/internal/utils"
	"github.com/temirov/repoctx/internal/walker"
)

const (
	rootNotDirectoryErrorFormat = "repository root %s is not a directory"
	rootAccessErrorFormat       = "access repository root %s: %w"
	loadIgnoreErrorFormat       = "load ignore rules: %w"
	tokenizerErrorFormat        = "initialize tokenizer for %s: %w"
)

// Options configures one run.
type Options struct {
	Root string
	// Name overrides the repository name derived from the origin remote or directory.
	Name                    string
	UseNativeIgnore         bool
	SupplementaryIgnorePath string
	Format                  string
	EmitTokenEstimate       bool
	// MaxFileSizeBytes excludes larger files. Zero disables the limit.
	MaxFileSizeBytes int64
	// TokenModel adds a model-specific token count when EmitTokenEstimate is set.
	TokenModel string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions(root string) Options {
	return Options{
		Root:              root,
		UseNativeIgnore:   true,
		Format:            types.FormatText,
		EmitTokenEstimate: true,
	}
}

// Result is the outcome of a successful run.
type Result struct {
	Model    *types.RepositoryModel
	Rendered string
	// EstimatedTokens is zero when estimation was disabled.
	EstimatedTokens int
}

// Run produces the serialized snapshot of options.Root. No output is produced
// on error. The context is checked once per walked file.
func Run(ctx context.Context, options Options, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if formatErr := output.ValidateFormat(options.Format); formatErr != nil {
		return Result{}, formatErr
	}
	rootInfo, statErr := os.Stat(options.Root)
	if statErr != nil {
		return Result{}, fmt.Errorf(rootAccessErrorFormat, options.Root, statErr)
	}
	if !rootInfo.IsDir() {
		return Result{}, fmt.Errorf(rootNotDirectoryErrorFormat, options.Root)
	}

	rules, loadErr := config.LoadIgnoreSet(options.Root, config.IgnoreOptions{
		UseNativeIgnore:         options.UseNativeIgnore,
		SupplementaryIgnorePath: options.SupplementaryIgnorePath,
	}, logger)
	if loadErr != nil {
		return Result{}, fmt.Errorf(loadIgnoreErrorFormat, loadErr)
	}

	var counter tokenizer.Counter
	if options.EmitTokenEstimate && options.TokenModel != "" {
		modelCounter, _, counterErr := tokenizer.NewCounter(tokenizer.Config{Model: options.TokenModel})
		if counterErr != nil {
			return Result{}, fmt.Errorf(tokenizerErrorFormat, options.TokenModel, counterErr)
		}
		counter = modelCounter
	}

	fileWalker := walker.New(ignore.NewPolicy(rules, logger), logger)
	fileWalker.MaxFileSizeBytes = options.MaxFileSizeBytes
	var relativePaths []string
	for relativePath := range fileWalker.Files(options.Root) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		relativePaths = append(relativePaths, relativePath)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}

	name := repository.ResolveName(options.Root, options.Name, logger)
	model, buildErr := commands.BuildSnapshot(options.Root, relativePaths, name, logger)
	if buildErr != nil {
		return Result{}, buildErr
	}

	rendered, renderErr := render(model, options, counter)
	if renderErr != nil {
		return Result{}, renderErr
	}

	summaryFields := []zap.Field{
		zap.String("name", model.Name),
		zap.Int("files", len(model.Files)),
		zap.String("size", utils.FormatFileSize(model.TotalSizeBytes())),
	}
	if options.EmitTokenEstimate {
		summaryFields = append(summaryFields, zap.Int("estimated_tokens", model.EstimatedTokens))
	}
	if model.TokenModel != "" {
		summaryFields = append(summaryFields, zap.String("model", model.TokenModel), zap.Int("model_tokens", model.ModelTokens))
	}
	logger.Info("repository snapshot ready", summaryFields...)
	return Result{Model: model, Rendered: rendered, EstimatedTokens: model.EstimatedTokens}, nil
}

func render(model *types.RepositoryModel, options Options, counter tokenizer.Counter) (string, error) {
	if !options.EmitTokenEstimate {
		return output.Render(model, options.Format)
	}
	return tokenizer.EstimateRendered(model, options.Format, counter)
}
