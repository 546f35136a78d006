package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	invalidSizeErrorFormat  = "invalid size %q"
	sizeTooLargeErrorFormat = "size %q exceeds the largest supported size"
)

var sizeUnits = []string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize converts a byte length into a human-readable lower-case unit string.
func FormatFileSize(bytes int64) string {
	if bytes < 0 {
		return "0b"
	}
	value := float64(bytes)
	unitIndex := 0
	for value >= 1024 && unitIndex < len(sizeUnits)-1 {
		value /= 1024
		unitIndex++
	}
	if unitIndex == 0 {
		return fmt.Sprintf("%db", bytes)
	}
	if value < 10 {
		formatted := fmt.Sprintf("%.1f", value)
		formatted = strings.TrimSuffix(formatted, ".0")
		return formatted + sizeUnits[unitIndex]
	}
	return fmt.Sprintf("%.0f%s", value, sizeUnits[unitIndex])
}

// ParseFileSize parses sizes such as "512", "64kb" or "1.5mb" into bytes.
// Units are case-insensitive and use powers of 1024. An empty string is zero.
func ParseFileSize(input string) (int64, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return 0, nil
	}
	multiplier := int64(1)
	numberPart := normalized
	for unitIndex := len(sizeUnits) - 1; unitIndex >= 0; unitIndex-- {
		if strings.HasSuffix(normalized, sizeUnits[unitIndex]) {
			numberPart = strings.TrimSpace(strings.TrimSuffix(normalized, sizeUnits[unitIndex]))
			multiplier = int64(1) << (10 * unitIndex)
			break
		}
	}
	value, parseError := strconv.ParseFloat(numberPart, 64)
	if parseError != nil || value < 0 || math.IsNaN(value) {
		return 0, fmt.Errorf(invalidSizeErrorFormat, input)
	}
	byteCount := value * float64(multiplier)
	if byteCount >= math.MaxInt64 {
		return 0, fmt.Errorf(sizeTooLargeErrorFormat, input)
	}
	return int64(byteCount), nil
}
