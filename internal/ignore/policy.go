package ignore

import (
	"go.uber.org/zap"

	"github.com/temirov/repoctx/internal/utils"
)

// BuiltinSource labels the default rules that precede every configured source.
const BuiltinSource = "builtin"

// builtinPatterns exclude the ignore files themselves. They are ordinary rules,
// so a later "!.gitignore" re-includes the file.
var builtinPatterns = []string{
	utils.GitIgnoreFileName,
	utils.SupplementaryIgnoreFileName,
}

// Set is an ordered sequence of rules evaluated with last-match-wins semantics.
type Set []Rule

// NewSet concatenates rule sources in order, so rules from later sources
// override rules from earlier ones.
func NewSet(sources ...[]Rule) Set {
	var combined Set
	for _, source := range sources {
		combined = append(combined, source...)
	}
	return combined
}

// BuiltinRules returns the default rules placed before repository-native rules.
func BuiltinRules() []Rule {
	return CompileLines(builtinPatterns, BuiltinSource, nil)
}

// IsAlwaysExcluded reports whether a path lies in the repository metadata
// directory. Such paths are excluded before any rule is consulted.
func IsAlwaysExcluded(relativePath string) bool {
	for _, pathSegment := range utils.SplitPathSegments(relativePath) {
		if pathSegment == utils.GitDirectoryName {
			return true
		}
	}
	return false
}

// IsIgnored evaluates rules in order; the last matching rule decides. A negated
// match keeps the path, any other match excludes it, and no match keeps it.
func IsIgnored(rules Set, relativePath string, isDirectory bool) bool {
	ignored, _ := evaluate(rules, relativePath, isDirectory)
	return ignored
}

func evaluate(rules Set, relativePath string, isDirectory bool) (bool, *Rule) {
	if IsAlwaysExcluded(relativePath) {
		return true, nil
	}
	var decidingRule *Rule
	for ruleIndex := range rules {
		if rules[ruleIndex].Matches(relativePath, isDirectory) {
			decidingRule = &rules[ruleIndex]
		}
	}
	if decidingRule == nil {
		return false, nil
	}
	return !decidingRule.Negated, decidingRule
}

// Policy wraps a rule set for use by the tree walker.
type Policy struct {
	rules  Set
	logger *zap.Logger
}

// NewPolicy constructs a Policy over rules. A nil logger disables logging.
func NewPolicy(rules Set, logger *zap.Logger) *Policy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{rules: rules, logger: logger}
}

// Rules returns the ordered rules consulted by the policy.
func (policy *Policy) Rules() Set {
	return policy.rules
}

// IsIgnored reports whether a root-relative path is excluded.
func (policy *Policy) IsIgnored(relativePath string, isDirectory bool) bool {
	ignored, decidingRule := evaluate(policy.rules, relativePath, isDirectory)
	if ignored {
		if decidingRule == nil {
			policy.logger.Debug("excluding repository metadata", zap.String("path", relativePath))
		} else {
			policy.logger.Debug("excluding path",
				zap.String("path", relativePath),
				zap.String("pattern", decidingRule.Raw),
				zap.String("source", decidingRule.Source))
		}
	}
	return ignored
}
