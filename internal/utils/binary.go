package utils

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	utf16BigEndianByteOrderMark    = []byte{0xFE, 0xFF}
	utf16LittleEndianByteOrderMark = []byte{0xFF, 0xFE}
)

// IsBinary reports whether the provided byte slice appears to contain binary data.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}
	return bytes.IndexByte(data, 0) >= 0
}

// DecodeText decodes file bytes as text. UTF-8 content is returned unchanged;
// content starting with a UTF-16 byte order mark is transcoded to UTF-8.
// The boolean result is false when the bytes are not text.
func DecodeText(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", true
	}
	if bytes.HasPrefix(data, utf16BigEndianByteOrderMark) || bytes.HasPrefix(data, utf16LittleEndianByteOrderMark) {
		return decodeUTF16(data)
	}
	if IsBinary(data) {
		return "", false
	}
	return string(data), true
}

func decodeUTF16(data []byte) (string, bool) {
	if len(data)%2 != 0 {
		return "", false
	}
	decoder := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	decoded, _, decodeError := transform.Bytes(decoder, data)
	if decodeError != nil {
		return "", false
	}
	text := string(decoded)
	if strings.ContainsRune(text, utf8.RuneError) || strings.ContainsRune(text, 0) {
		return "", false
	}
	return text, true
}
