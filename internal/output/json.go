package output

import (
	"bytes"
	"encoding/json"

	"github.com/temirov/repoctx/internal/types"
)

type jsonDocument struct {
	Name            string     `json:"name"`
	FileCount       int        `json:"file_count"`
	Files           []jsonFile `json:"files"`
	EstimatedTokens *int       `json:"estimated_tokens,omitempty"`
	Model           string     `json:"model,omitempty"`
	ModelTokens     *int       `json:"model_tokens,omitempty"`
}

type jsonFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Size    int64  `json:"size"`
	Tokens  *int   `json:"tokens,omitempty"`
}

// RenderJSON serializes the model as an indented JSON object. File order
// matches the model and HTML characters are not escaped.
func RenderJSON(model *types.RepositoryModel, options Options) (string, error) {
	document := jsonDocument{
		Name:      model.Name,
		FileCount: len(model.Files),
		Files:     make([]jsonFile, 0, len(model.Files)),
	}
	for _, file := range model.Files {
		entry := jsonFile{Path: file.Path, Content: file.Content, Size: file.SizeBytes}
		if options.Estimator != nil {
			fileTokens := options.Estimator(file.Content)
			entry.Tokens = &fileTokens
		}
		document.Files = append(document.Files, entry)
	}
	if options.Estimator != nil {
		estimatedTokens := model.EstimatedTokens
		document.EstimatedTokens = &estimatedTokens
	}
	if model.TokenModel != "" {
		modelTokens := model.ModelTokens
		document.Model = model.TokenModel
		document.ModelTokens = &modelTokens
	}

	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent(indentPrefix, indentSpacer)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return "", encodeError
	}
	return buffer.String(), nil
}

// ParseJSON decodes a document produced by RenderJSON back into a model.
func ParseJSON(document string) (*types.RepositoryModel, error) {
	var decoded jsonDocument
	if decodeError := json.Unmarshal([]byte(document), &decoded); decodeError != nil {
		return nil, decodeError
	}
	model := &types.RepositoryModel{Name: decoded.Name, TokenModel: decoded.Model}
	if decoded.EstimatedTokens != nil {
		model.EstimatedTokens = *decoded.EstimatedTokens
	}
	if decoded.ModelTokens != nil {
		model.ModelTokens = *decoded.ModelTokens
	}
	for _, file := range decoded.Files {
		model.Files = append(model.Files, types.FileRecord{Path: file.Path, Content: file.Content, SizeBytes: file.Size})
	}
	return model, nil
}
