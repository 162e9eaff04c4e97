package rules

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"warden-hq/warden/pkg/policy"
)

// StrEqual is satisfied when the checked value is a string equal to the
// configured one, optionally ignoring case.
type StrEqual struct {
	Value string `json:"value"`
	CI    bool   `json:"ci,omitempty"`
}

// Satisfied implements policy.Rule.
func (r *StrEqual) Satisfied(what any, _ *policy.Inquiry) bool {
	s, ok := toStr(what)
	if !ok {
		return false
	}
	if r.CI {
		return strings.EqualFold(s, r.Value)
	}
	return s == r.Value
}

// StartsWith is satisfied when the checked string starts with the configured
// prefix.
type StartsWith struct {
	Value string `json:"value"`
	CI    bool   `json:"ci,omitempty"`
}

// Satisfied implements policy.Rule.
func (r *StartsWith) Satisfied(what any, _ *policy.Inquiry) bool {
	s, ok := toStr(what)
	if !ok {
		return false
	}
	if r.CI {
		return strings.HasPrefix(strings.ToLower(s), strings.ToLower(r.Value))
	}
	return strings.HasPrefix(s, r.Value)
}

// EndsWith is satisfied when the checked string ends with the configured
// suffix.
type EndsWith struct {
	Value string `json:"value"`
	CI    bool   `json:"ci,omitempty"`
}

// Satisfied implements policy.Rule.
func (r *EndsWith) Satisfied(what any, _ *policy.Inquiry) bool {
	s, ok := toStr(what)
	if !ok {
		return false
	}
	if r.CI {
		return strings.HasSuffix(strings.ToLower(s), strings.ToLower(r.Value))
	}
	return strings.HasSuffix(s, r.Value)
}

// Contains is satisfied when the checked string contains the configured
// substring.
type Contains struct {
	Value string `json:"value"`
	CI    bool   `json:"ci,omitempty"`
}

// Satisfied implements policy.Rule.
func (r *Contains) Satisfied(what any, _ *policy.Inquiry) bool {
	s, ok := toStr(what)
	if !ok {
		return false
	}
	if r.CI {
		return strings.Contains(strings.ToLower(s), strings.ToLower(r.Value))
	}
	return strings.Contains(s, r.Value)
}

// RegexMatch is satisfied when the checked string fully matches the
// configured pattern.
type RegexMatch struct {
	Pattern string

	re *regexp.Regexp
}

// NewRegexMatch compiles pattern and returns the rule, failing on invalid
// regular expressions.
func NewRegexMatch(pattern string) (*RegexMatch, error) {
	re, err := compileAnchored(pattern)
	if err != nil {
		return nil, fmt.Errorf("rules: invalid regex %q: %w", pattern, err)
	}
	return &RegexMatch{Pattern: pattern, re: re}, nil
}

// Satisfied implements policy.Rule.
func (r *RegexMatch) Satisfied(what any, _ *policy.Inquiry) bool {
	s, ok := toStr(what)
	if !ok {
		return false
	}
	re := r.re
	if re == nil {
		var err error
		if re, err = compileAnchored(r.Pattern); err != nil {
			return false
		}
	}
	return re.MatchString(s)
}

// MarshalJSON stores only the pattern source.
func (r *RegexMatch) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Pattern string `json:"pattern"`
	}{Pattern: r.Pattern})
}

// UnmarshalJSON restores and recompiles the pattern.
func (r *RegexMatch) UnmarshalJSON(data []byte) error {
	var doc struct {
		Pattern string `json:"pattern"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	re, err := compileAnchored(doc.Pattern)
	if err != nil {
		return fmt.Errorf("rules: invalid regex %q: %w", doc.Pattern, err)
	}
	r.Pattern = doc.Pattern
	r.re = re
	return nil
}

func compileAnchored(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`\A(?:` + pattern + `)\z`)
}

// PairsEqual is satisfied when the checked value is a sequence of
// two-element sequences and every pair's elements are equal. An empty
// sequence is vacuously satisfied; any malformed element is not.
type PairsEqual struct{}

// Satisfied implements policy.Rule.
func (r *PairsEqual) Satisfied(what any, _ *policy.Inquiry) bool {
	pairs, ok := asSequence(what)
	if !ok {
		return false
	}
	for _, p := range pairs {
		pair, ok := asSequence(p)
		if !ok || len(pair) != 2 {
			return false
		}
		if !equals(pair[0], pair[1]) {
			return false
		}
	}
	return true
}
