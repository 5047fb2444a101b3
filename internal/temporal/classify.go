package temporal

import "strings"

// PatternType identifies a category of coding construct tracked for habit
// shifts (not a design pattern in the architectural sense).
type PatternType string

const (
	PatternVariableDeclaration PatternType = "variable_declaration"
	PatternFunctionSyntax      PatternType = "function_syntax"
	PatternImportStyle         PatternType = "import_style"
	PatternAsyncPatterns       PatternType = "async_patterns"
	PatternErrorHandling       PatternType = "error_handling"
	PatternTestingApproach     PatternType = "testing_approach"
)

// patternTypes fixes the analysis order across languages.
var patternTypes = []PatternType{
	PatternVariableDeclaration,
	PatternFunctionSyntax,
	PatternImportStyle,
	PatternAsyncPatterns,
	PatternErrorHandling,
	PatternTestingApproach,
}

// labelUnknown is the canonical label for relevant suggestions that match
// no rule of their pattern type.
const labelUnknown = "unknown"

// ClassifierFunc maps a suggestion text to a canonical pattern label.
// Classification is deliberately pluggable: the defaults are keyword
// heuristics, and a caller can swap in a real tokenizer without touching
// the windowing or detection code.
type ClassifierFunc func(suggestion string) string

// labelRule pairs a canonical label with the substrings that select it.
// Rules are checked in order; first match wins.
type labelRule struct {
	label    string
	keywords []string
}

var patternRules = map[PatternType][]labelRule{
	PatternVariableDeclaration: {
		{"var", []string{"var "}},
		{"let", []string{"let "}},
		{"const", []string{"const "}},
	},
	PatternFunctionSyntax: {
		{"arrow", []string{"=>"}},
		{"function", []string{"function "}},
		{"method", []string{"func "}},
	},
	PatternImportStyle: {
		{"import", []string{"import "}},
		{"require", []string{"require("}},
		{"from_import", []string{"from "}},
	},
	PatternAsyncPatterns: {
		{"async_await", []string{"async ", "await "}},
		{"promise", []string{".then(", "promise"}},
		{"callback", []string{"callback"}},
	},
	PatternErrorHandling: {
		{"try_catch", []string{"try ", "catch"}},
		{"error_return", []string{"if err", "error"}},
		{"optional_chain", []string{"?.", "optional"}},
	},
	PatternTestingApproach: {
		{"test_block", []string{"test(", "it(", "func test"}},
		{"assertion", []string{"expect(", "assert"}},
		{"mock", []string{"mock"}},
	},
}

// relevantTo reports whether a suggestion belongs to a pattern type's
// stream at all: any keyword of any rule matches.
func relevantTo(pt PatternType, suggestion string) bool {
	text := strings.ToLower(suggestion)
	for _, rule := range patternRules[pt] {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return true
			}
		}
	}
	return false
}

// classifierFor returns the default keyword classifier for a pattern type.
func classifierFor(pt PatternType) ClassifierFunc {
	rules := patternRules[pt]
	return func(suggestion string) string {
		text := strings.ToLower(suggestion)
		for _, rule := range rules {
			for _, kw := range rule.keywords {
				if strings.Contains(text, kw) {
					return rule.label
				}
			}
		}
		return labelUnknown
	}
}

func defaultClassifiers() map[PatternType]ClassifierFunc {
	classifiers := make(map[PatternType]ClassifierFunc, len(patternTypes))
	for _, pt := range patternTypes {
		classifiers[pt] = classifierFor(pt)
	}
	return classifiers
}
