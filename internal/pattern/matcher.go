// Package pattern compiles glob-like path patterns into matchers.
//
// A pattern uses '*' as a wildcard for any run of characters; every other
// character is literal. A compiled pattern matches when it occurs anywhere in
// the tested path, so "*.txt" matches "a/b/report.txt" and also
// "a/report.txt.bak". A MatcherSet is the logical OR of its patterns and an
// empty set matches nothing.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// wildcard is the only meta character a pattern understands
const wildcard = "*"

// PatternError reports a pattern that could not be compiled.
type PatternError struct {
	Pattern    string // Pattern as supplied by the user
	Expression string // Translated regular expression
	Err        error  // Underlying compile error
}

// Error implements the error interface for PatternError.
func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q (expression %q): %v", e.Pattern, e.Expression, e.Err)
}

// Unwrap returns the underlying compile error.
func (e *PatternError) Unwrap() error {
	return e.Err
}

// MatcherSet is a compiled set of patterns. It is immutable after Compile
// and safe for concurrent use.
type MatcherSet struct {
	patterns []string
	regexps  []*regexp.Regexp
}

// Expression translates a pattern into its regular expression form.
// Literal runs are quoted and each '*' becomes ".*".
func Expression(pattern string) string {
	parts := strings.Split(pattern, wildcard)
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return strings.Join(parts, ".*")
}

// Compile translates and compiles every pattern.
// The first pattern that fails aborts compilation with a *PatternError.
func Compile(patterns []string) (*MatcherSet, error) {
	set := &MatcherSet{
		patterns: make([]string, 0, len(patterns)),
		regexps:  make([]*regexp.Regexp, 0, len(patterns)),
	}

	for _, p := range patterns {
		expr := Expression(p)
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, &PatternError{Pattern: p, Expression: expr, Err: err}
		}
		set.patterns = append(set.patterns, p)
		set.regexps = append(set.regexps, re)
	}

	return set, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package-level defaults.
func MustCompile(patterns ...string) *MatcherSet {
	set, err := Compile(patterns)
	if err != nil {
		panic(err)
	}
	return set
}

// Matches reports whether path contains a match for any pattern in the set.
func (s *MatcherSet) Matches(path string) bool {
	if s == nil {
		return false
	}
	for _, re := range s.regexps {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled patterns.
func (s *MatcherSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.regexps)
}

// Patterns returns a copy of the source patterns in compile order.
func (s *MatcherSet) Patterns() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// SplitList parses a comma separated pattern list. Entries are trimmed and
// empty entries dropped, so "" yields an empty list.
func SplitList(list string) []string {
	var out []string
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
