// Package policy implements pattern matching for gate decisions.
package policy

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// Decision is the outcome of classifying a proposed action.
type Decision string

const (
	// DecisionAllow lets the action proceed silently.
	DecisionAllow Decision = "allow"
	// DecisionBlock stops the action with an explanatory message.
	DecisionBlock Decision = "block"
	// DecisionWarn lets the action proceed with an advisory message.
	DecisionWarn Decision = "warn"
)

// Rule pairs a matcher with the category used to select guidance text.
type Rule struct {
	// Pattern is the regex pattern string.
	Pattern string
	// Category is the stable key identifying why this rule matched.
	Category string
	// Source indicates where this rule came from.
	Source string // "builtin", "project"
	// Compiled is the compiled regex.
	Compiled *regexp2.Regexp
}

// Matches reports whether the rule's pattern is found anywhere in input.
func (r *Rule) Matches(input string) bool {
	ok, err := r.Compiled.MatchString(input)
	if err != nil {
		// regexp2 only errors on match timeout; treat as no match.
		return false
	}
	return ok
}

// RuleSet holds the ordered allow and block rules for one domain.
// The allow list is always evaluated in full before any block rule.
type RuleSet struct {
	Allow []Rule
	Block []Rule
}

// Result contains the outcome of classification.
type Result struct {
	// Decision is the gate decision for the input.
	Decision Decision
	// Category is the matched block rule's category, empty on allow.
	Category string
	// MatchedPattern is the pattern that matched, for inspection.
	MatchedPattern string
	// ParseError indicates the input could not be tokenized cleanly.
	ParseError bool
}

// Classify determines the decision for a command.
//
// Allow rules are checked first in declaration order; the first match
// returns an allow with no category, overriding every block rule. Operators
// opt commands back in by adding a narrower allow rule, never by loosening
// the block list. If no allow rule matches, block rules are checked in
// declaration order and the first match selects the category. An input
// matching neither list is allowed (the gate is a denylist with carve-outs).
func (rs *RuleSet) Classify(input string) Result {
	if strings.TrimSpace(input) == "" {
		return Result{Decision: DecisionAllow}
	}

	normalized := NormalizeCommand(input)
	result := Result{ParseError: normalized.ParseError}

	for i := range rs.Allow {
		if rs.Allow[i].Matches(normalized.Text) {
			result.Decision = DecisionAllow
			result.MatchedPattern = rs.Allow[i].Pattern
			return result
		}
	}

	for i := range rs.Block {
		if rs.Block[i].Matches(normalized.Text) {
			result.Decision = DecisionBlock
			result.Category = rs.Block[i].Category
			result.MatchedPattern = rs.Block[i].Pattern
			return result
		}
	}

	result.Decision = DecisionAllow
	return result
}

// compileRules compiles pattern/category pairs into rules.
// Builtin rules must always be valid; invalid project rules are skipped.
func compileRules(source string, specs []RuleSpec) []Rule {
	result := make([]Rule, 0, len(specs))
	for _, s := range specs {
		compiled, err := regexp2.Compile(s.Pattern, regexp2.IgnoreCase)
		if err != nil {
			if source == SourceBuiltin {
				panic(fmt.Sprintf("invalid builtin pattern %q: %v", s.Pattern, err))
			}
			continue
		}
		result = append(result, Rule{
			Pattern:  s.Pattern,
			Category: s.Category,
			Source:   source,
			Compiled: compiled,
		})
	}
	return result
}

// RuleSpec is an uncompiled pattern/category pair.
type RuleSpec struct {
	Pattern  string
	Category string
}

// Rule sources.
const (
	SourceBuiltin = "builtin"
	SourceProject = "project"
)
