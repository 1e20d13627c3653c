// Package extract finds substrings of recognized text that look like
// mathematical expressions.
//
// Rules are intentionally loose and may overlap. Every rule runs over the
// whole text and all matches are concatenated in rule order, so the same
// substring can appear more than once. Downstream conversion falls back to
// literal text for anything that is not really math, which makes a missed
// expression worse than a false positive.
//
// That literal fallback does not escape the matched text. A candidate
// holding "$" or one of %, # and & is wrapped as is.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/ironsheep/math-ocr-mcp/internal/config"
)

// Built-in rule names.
const (
	RuleEquation   = "equation"
	RuleArithmetic = "arithmetic"
	RuleAssignment = "assignment"
	RuleBinary     = "binary"
)

// matchGroup names the capture group that delimits a match when the
// surrounding pattern needs context it must not report.
const matchGroup = "m"

// Rule is one named extraction pattern.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Candidate is a matched substring of the recognized text.
//
// Start and End are byte offsets, so text[Start:End] == Text.
type Candidate struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Rule  string `json:"rule"`
}

// DefaultRules returns the built-in rules in the order they run.
func DefaultRules() []Rule {
	return []Rule{
		// A single-letter identifier, then "=", then everything up to the
		// end of the sentence.
		{RuleEquation, regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(?P<m>\p{L}\s*=\s*[^.!?\n]*)`)},
		{RuleArithmetic, regexp.MustCompile(`\d+\s[+\-/]\s\d+`)},
		{RuleAssignment, regexp.MustCompile(`[\p{L}\p{N}_]+\s*=\s*[^.]*`)},
		{RuleBinary, regexp.MustCompile(`[\p{L}\p{N}_]+\s*[+\-*/]\s*[\p{L}\p{N}_]+`)},
	}
}

// NewRule compiles a named rule. A capture group named "m" narrows the
// reported match to that group. Patterns that match the empty string are
// rejected, since they would report a candidate at every position.
func NewRule(name, pattern string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: %w", name, err)
	}
	if re.MatchString("") {
		return Rule{}, fmt.Errorf("rule %s: pattern %q matches the empty string", name, pattern)
	}
	return Rule{Name: name, Pattern: re}, nil
}

// Extractor applies an ordered list of rules.
type Extractor struct {
	rules []Rule
}

// New returns an extractor running rules in the given order, or the
// built-in rules when none are given.
func New(rules ...Rule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules}
}

// NewFromConfig returns the built-in rules followed by the configured extras.
func NewFromConfig(extra []config.RuleConfig) (*Extractor, error) {
	rules := DefaultRules()
	for _, rc := range extra {
		r, err := NewRule(rc.Name, rc.Pattern)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return New(rules...), nil
}

// Rules returns the rule names in execution order.
func (e *Extractor) Rules() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// Extract returns every match of every rule, in rule order then text order.
// Nothing is merged or deduplicated. Empty text yields an empty slice.
func (e *Extractor) Extract(text string) []Candidate {
	candidates := []Candidate{}
	if text == "" {
		return candidates
	}
	for _, r := range e.rules {
		candidates = append(candidates, r.find(text)...)
	}
	return candidates
}

func (r Rule) find(text string) []Candidate {
	group := r.Pattern.SubexpIndex(matchGroup)

	var out []Candidate
	for _, loc := range r.Pattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		if group > 0 && loc[2*group] >= 0 {
			start, end = loc[2*group], loc[2*group+1]
		}
		s := strings.TrimRightFunc(text[start:end], unicode.IsSpace)
		if s == "" {
			// Every match is reported; only a non-blank one is trimmed.
			s = text[start:end]
		}
		out = append(out, Candidate{
			Text:  s,
			Start: start,
			End:   start + len(s),
			Rule:  r.Name,
		})
	}
	return out
}

// Texts returns the candidate strings in order.
func Texts(candidates []Candidate) []string {
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}
	return texts
}
