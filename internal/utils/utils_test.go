package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/repoctx/internal/utils"
)

func TestNormalizeRelativePath(testingHandle *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "a/b.txt", expected: "a/b.txt"},
		{name: "dot_prefix", input: "./a/b.txt", expected: "a/b.txt"},
		{name: "backslash_is_not_separator", input: `a\b\c.go`, expected: `a\b\c.go`},
		{name: "trailing_separator", input: "build/", expected: "build"},
		{name: "self", input: ".", expected: ""},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, utils.NormalizeRelativePath(testCase.input))
		})
	}
}

func TestSplitPathSegments(testingHandle *testing.T) {
	assert.Equal(testingHandle, []string{"a", "b.txt"}, utils.SplitPathSegments("./a/b.txt/"))
	assert.Equal(testingHandle, []string{`a\b.txt`}, utils.SplitPathSegments(`a\b.txt`))
	assert.Empty(testingHandle, utils.SplitPathSegments("."))
}

func TestIsLocalRelativePath(testingHandle *testing.T) {
	assert.True(testingHandle, utils.IsLocalRelativePath("a/b.txt"))
	assert.False(testingHandle, utils.IsLocalRelativePath("../outside.txt"))
	assert.False(testingHandle, utils.IsLocalRelativePath("/etc/passwd"))
	assert.False(testingHandle, utils.IsLocalRelativePath(""))
}

func TestDecodeText(testingHandle *testing.T) {
	testCases := []struct {
		name          string
		input         []byte
		expectedText  string
		expectDecoded bool
	}{
		{name: "empty", input: []byte{}, expectedText: "", expectDecoded: true},
		{name: "utf8", input: []byte("héllo\n"), expectedText: "héllo\n", expectDecoded: true},
		{name: "nul_byte", input: []byte("a\x00b"), expectDecoded: false},
		{name: "invalid_utf8", input: []byte{0xC3, 0x28, 0x61}, expectDecoded: false},
		{name: "utf16_little_endian", input: []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}, expectedText: "hi", expectDecoded: true},
		{name: "utf16_big_endian", input: []byte{0xFE, 0xFF, 0x00, 'o', 0x00, 'k'}, expectedText: "ok", expectDecoded: true},
		{name: "utf16_odd_length", input: []byte{0xFF, 0xFE, 'h'}, expectDecoded: false},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(t *testing.T) {
			decodedText, decoded := utils.DecodeText(testCase.input)
			require.Equal(t, testCase.expectDecoded, decoded)
			if testCase.expectDecoded {
				assert.Equal(t, testCase.expectedText, decodedText)
			}
		})
	}
}

func TestParseFileSize(testingHandle *testing.T) {
	testCases := []struct {
		input       string
		expected    int64
		expectError bool
	}{
		{input: "", expected: 0},
		{input: "512", expected: 512},
		{input: "64kb", expected: 64 * 1024},
		{input: "1MB", expected: 1024 * 1024},
		{input: "1.5kb", expected: 1536},
		{input: "lots", expectError: true},
		{input: "-1", expectError: true},
		{input: "1e30", expectError: true},
		{input: "99999999pb", expectError: true},
		{input: "inf", expectError: true},
		{input: "nan", expectError: true},
		{input: "8191pb", expected: 8191 << 50},
	}
	for _, testCase := range testCases {
		parsed, parseError := utils.ParseFileSize(testCase.input)
		if testCase.expectError {
			assert.Error(testingHandle, parseError, testCase.input)
			continue
		}
		require.NoError(testingHandle, parseError, testCase.input)
		assert.Equal(testingHandle, testCase.expected, parsed, testCase.input)
	}
}

func TestFormatFileSize(testingHandle *testing.T) {
	assert.Equal(testingHandle, "512b", utils.FormatFileSize(512))
	assert.Equal(testingHandle, "1.5kb", utils.FormatFileSize(1536))
	assert.Equal(testingHandle, "0b", utils.FormatFileSize(-1))
}

func TestGetApplicationVersionOutsideRepository(testingHandle *testing.T) {
	testingHandle.Chdir(testingHandle.TempDir())

	assert.NotEmpty(testingHandle, utils.GetApplicationVersion())
}
