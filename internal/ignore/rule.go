// Package ignore compiles gitignore-style patterns and decides which repository
// paths are excluded from a snapshot.
package ignore

import (
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repoctx/internal/utils"
)

const (
	commentPrefix      = "#"
	negationPrefix     = "!"
	escapePrefix       = `\`
	separator          = "/"
	doubleStarSegment  = "**"
	globValidationName = "name"
)

// Rule is one compiled ignore pattern. Rules are immutable once compiled.
type Rule struct {
	// Raw is the pattern exactly as written in its source.
	Raw string
	// Source names where the rule came from, such as a file path or "builtin".
	Source string
	// Anchored rules match from the repository root rather than at any depth.
	Anchored bool
	// DirectoryOnly rules match directories only.
	DirectoryOnly bool
	// Negated rules re-include a path excluded by an earlier rule.
	Negated bool

	segments []string
}

// Compile parses one ignore-file line. The boolean result is false for blank
// lines, comments and malformed patterns, none of which produce a rule.
func Compile(pattern string) (Rule, bool) {
	if isBlankOrComment(pattern) {
		return Rule{}, false
	}
	rule := Rule{Raw: pattern}
	body := strings.TrimSpace(pattern)

	if strings.HasPrefix(body, negationPrefix) {
		rule.Negated = true
		body = strings.TrimPrefix(body, negationPrefix)
	} else if strings.HasPrefix(body, escapePrefix+negationPrefix) || strings.HasPrefix(body, escapePrefix+commentPrefix) {
		body = strings.TrimPrefix(body, escapePrefix)
	}

	if strings.HasSuffix(body, separator) {
		rule.DirectoryOnly = true
		body = strings.TrimRight(body, separator)
	}
	if strings.HasPrefix(body, separator) {
		rule.Anchored = true
		body = strings.TrimLeft(body, separator)
	}
	if strings.Contains(body, separator) {
		rule.Anchored = true
	}

	for _, segment := range strings.Split(body, separator) {
		if segment == "" {
			continue
		}
		if segment != doubleStarSegment {
			if _, matchError := path.Match(segment, globValidationName); matchError != nil {
				return Rule{}, false
			}
		}
		rule.segments = append(rule.segments, segment)
	}
	if len(rule.segments) == 0 {
		return Rule{}, false
	}
	return rule, true
}

// CompileLines compiles every line of one ignore source in order. Lines that do
// not produce a rule are skipped; malformed ones are reported at debug level.
func CompileLines(lines []string, source string, logger *zap.Logger) []Rule {
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := make([]Rule, 0, len(lines))
	for lineIndex, line := range lines {
		rule, compiled := Compile(line)
		if !compiled {
			if !isBlankOrComment(line) {
				logger.Debug("dropping malformed ignore pattern",
					zap.String("source", source),
					zap.Int("line", lineIndex+1),
					zap.String("pattern", line))
			}
			continue
		}
		rule.Source = source
		rules = append(rules, rule)
	}
	return rules
}

// Matches reports whether the rule structurally matches a root-relative path.
// Anchored rules match the path or one of its ancestors from the root;
// unanchored rules match any single segment. Directory-only rules never match
// a non-directory path.
func (rule Rule) Matches(relativePath string, isDirectory bool) bool {
	if rule.DirectoryOnly && !isDirectory {
		return false
	}
	pathSegments := utils.SplitPathSegments(relativePath)
	if len(pathSegments) == 0 {
		return false
	}
	if !rule.Anchored {
		for _, pathSegment := range pathSegments {
			if matchSegments(rule.segments, []string{pathSegment}) {
				return true
			}
		}
		return false
	}
	for prefixLength := 1; prefixLength <= len(pathSegments); prefixLength++ {
		if matchSegments(rule.segments, pathSegments[:prefixLength]) {
			return true
		}
	}
	return false
}

// matchSegments matches glob segments against path segments. A "**" segment
// consumes zero or more path segments, or at least one when it ends the pattern.
func matchSegments(patternSegments []string, pathSegments []string) bool {
	if len(patternSegments) == 0 {
		return len(pathSegments) == 0
	}
	if patternSegments[0] == doubleStarSegment {
		minimumConsumed := 0
		if len(patternSegments) == 1 {
			minimumConsumed = 1
		}
		for consumed := minimumConsumed; consumed <= len(pathSegments); consumed++ {
			if matchSegments(patternSegments[1:], pathSegments[consumed:]) {
				return true
			}
		}
		return false
	}
	if len(pathSegments) == 0 {
		return false
	}
	isMatched, matchError := path.Match(patternSegments[0], pathSegments[0])
	if matchError != nil || !isMatched {
		return false
	}
	return matchSegments(patternSegments[1:], pathSegments[1:])
}

func isBlankOrComment(line string) bool {
	trimmedLine := strings.TrimSpace(line)
	return trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix)
}
