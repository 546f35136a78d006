package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/repoctx/internal/utils"
)

type configTestCase struct {
	name               string
	globalContent      string
	localContent       string
	explicitPath       string
	explicitContent    string
	environment        map[string]string
	expectFormat       string
	expectName         string
	expectCopy         *bool
	expectTokens       *bool
	expectModel        string
	expectUseGitignore *bool
	expectIgnoreFile   string
	expectMaxFileSize  string
}

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

func isolateHome(testingHandle *testing.T) string {
	testingHandle.Helper()
	homeDirectory := testingHandle.TempDir()
	testingHandle.Setenv("HOME", homeDirectory)
	testingHandle.Setenv("USERPROFILE", homeDirectory)
	for _, key := range environmentKeys {
		testingHandle.Setenv(environmentVariableName(key), "")
		os.Unsetenv(environmentVariableName(key))
	}
	return homeDirectory
}

func environmentVariableName(key string) string {
	return EnvironmentPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func TestLoadApplicationConfigurationMergesSources(testingHandle *testing.T) {
	testCases := []configTestCase{
		{
			name:               "local_overrides_global",
			globalContent:      "format: json\ncopy: true\ntokens:\n  enabled: false\n  model: gpt-4o\n",
			localContent:       "format: text\nname: acme/widgets\ntokens:\n  enabled: true\npaths:\n  use_gitignore: false\n",
			expectFormat:       "text",
			expectName:         "acme/widgets",
			expectCopy:         boolPointer(true),
			expectTokens:       boolPointer(true),
			expectModel:        "gpt-4o",
			expectUseGitignore: boolPointer(false),
		},
		{
			name:              "explicit_path_replaces_local",
			localContent:      "format: json\n",
			explicitPath:      "custom.yaml",
			explicitContent:   "paths:\n  ignore_file: prompts/.llmignore\n  max_file_size: 64kb\n",
			expectIgnoreFile:  "prompts/.llmignore",
			expectMaxFileSize: "64kb",
		},
		{
			name:         "environment_overrides_files",
			localContent: "format: text\ncopy: true\n",
			environment:  map[string]string{"REPOCTX_FORMAT": "json", "REPOCTX_COPY": "false", "REPOCTX_TOKENS_MODEL": "gpt-4"},
			expectFormat: "json",
			expectCopy:   boolPointer(false),
			expectModel:  "gpt-4",
		},
		{
			name: "nothing_configured",
		},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(t *testing.T) {
			homeDirectory := isolateHome(t)
			workingDirectory := t.TempDir()
			if testCase.globalContent != "" {
				configDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
				require.NoError(t, os.MkdirAll(configDirectory, 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(configDirectory, utils.GlobalConfigFileName), []byte(testCase.globalContent), 0o600))
			}
			if testCase.localContent != "" {
				require.NoError(t, os.WriteFile(filepath.Join(workingDirectory, utils.ConfigFileName), []byte(testCase.localContent), 0o600))
			}
			if testCase.explicitPath != "" {
				require.NoError(t, os.WriteFile(filepath.Join(workingDirectory, testCase.explicitPath), []byte(testCase.explicitContent), 0o600))
			}
			for key, value := range testCase.environment {
				t.Setenv(key, value)
			}

			loadedConfig, loadErr := LoadApplicationConfiguration(LoadOptions{
				WorkingDirectory: workingDirectory,
				ExplicitFilePath: testCase.explicitPath,
			})
			require.NoError(t, loadErr)

			assert.Equal(t, testCase.expectFormat, loadedConfig.Format)
			assert.Equal(t, testCase.expectName, loadedConfig.Name)
			assert.Equal(t, testCase.expectCopy, loadedConfig.Copy)
			assert.Equal(t, testCase.expectTokens, loadedConfig.Tokens.Enabled)
			assert.Equal(t, testCase.expectModel, loadedConfig.Tokens.Model)
			assert.Equal(t, testCase.expectUseGitignore, loadedConfig.Paths.UseGitignore)
			assert.Equal(t, testCase.expectIgnoreFile, loadedConfig.Paths.IgnoreFile)
			assert.Equal(t, testCase.expectMaxFileSize, loadedConfig.Paths.MaxFileSize)
		})
	}
}

func TestLoadApplicationConfigurationMissingExplicitFile(testingHandle *testing.T) {
	isolateHome(testingHandle)

	_, loadErr := LoadApplicationConfiguration(LoadOptions{
		WorkingDirectory: testingHandle.TempDir(),
		ExplicitFilePath: "absent.yaml",
	})
	require.Error(testingHandle, loadErr)
	assert.ErrorIs(testingHandle, loadErr, os.ErrNotExist)
}

func TestLoadApplicationConfigurationRejectsMalformedYAML(testingHandle *testing.T) {
	isolateHome(testingHandle)
	workingDirectory := testingHandle.TempDir()
	require.NoError(testingHandle, os.WriteFile(filepath.Join(workingDirectory, utils.ConfigFileName), []byte("format: [unclosed\n"), 0o600))

	_, loadErr := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDirectory})
	require.Error(testingHandle, loadErr)
}

func TestMaxFileSizeBytes(testingHandle *testing.T) {
	configuration := ApplicationConfiguration{Paths: PathConfiguration{MaxFileSize: "2kb"}}
	sizeBytes, parseErr := configuration.MaxFileSizeBytes()
	require.NoError(testingHandle, parseErr)
	assert.Equal(testingHandle, int64(2048), sizeBytes)

	unlimited, parseErr := ApplicationConfiguration{}.MaxFileSizeBytes()
	require.NoError(testingHandle, parseErr)
	assert.Zero(testingHandle, unlimited)

	_, parseErr = ApplicationConfiguration{Paths: PathConfiguration{MaxFileSize: "lots"}}.MaxFileSizeBytes()
	assert.Error(testingHandle, parseErr)
}

func TestMergeKeepsUnsetFields(testingHandle *testing.T) {
	base := ApplicationConfiguration{Format: "json", Copy: boolPointer(true), Paths: PathConfiguration{IgnoreFile: ".llmignore"}}
	merged := base.Merge(ApplicationConfiguration{Copy: boolPointer(false)})

	assert.Equal(testingHandle, "json", merged.Format)
	assert.Equal(testingHandle, boolPointer(false), merged.Copy)
	assert.Equal(testingHandle, ".llmignore", merged.Paths.IgnoreFile)
	assert.True(testingHandle, *base.Copy)
}
