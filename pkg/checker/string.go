package checker

import (
	"strings"

	"warden-hq/warden/pkg/pattern"
	"warden-hq/warden/pkg/policy"
)

// stringChecker carries the shared structure of the three string-based
// strategies: OR across the patterns within a field, AND across the three
// fields, AND across the context rules. Only the single pattern-vs-string
// comparison differs per strategy.
type stringChecker struct {
	kind  Kind
	match func(p *policy.Policy, pattern, value string) (bool, error)
}

// Kind implements Checker.
func (c *stringChecker) Kind() Kind {
	return c.kind
}

// Fits implements Checker.
func (c *stringChecker) Fits(p *policy.Policy, inquiry *policy.Inquiry) (bool, error) {
	typ, ok := p.DeriveType()
	if !ok || typ != policy.TypeStringBased {
		return false, nil
	}

	fields := []struct {
		conditions []any
		value      any
	}{
		{p.Subjects, inquiry.Subject},
		{p.Resources, inquiry.Resource},
		{p.Actions, inquiry.Action},
	}

	for _, f := range fields {
		value, ok := stringValue(f.value)
		if !ok {
			// Field-map inquiry against a string-based policy: no match.
			return false, nil
		}

		matched := false
		for _, cond := range f.conditions {
			pat, ok := cond.(string)
			if !ok {
				continue
			}
			hit, err := c.match(p, pat, value)
			if err != nil {
				return false, err
			}
			if hit {
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}

	return contextSatisfied(p, inquiry), nil
}

// Exact matches patterns by exact literal string equality.
type Exact struct {
	stringChecker
}

// NewExact creates the exact-match strategy.
func NewExact() *Exact {
	c := &Exact{}
	c.kind = KindExact
	c.match = func(_ *policy.Policy, pattern, value string) (bool, error) {
		return value == pattern, nil
	}
	return c
}

// Fuzzy matches when the inquiry string contains the pattern as a
// substring.
type Fuzzy struct {
	stringChecker
}

// NewFuzzy creates the substring-match strategy.
func NewFuzzy() *Fuzzy {
	c := &Fuzzy{}
	c.kind = KindFuzzy
	c.match = func(_ *policy.Policy, pattern, value string) (bool, error) {
		return strings.Contains(value, pattern), nil
	}
	return c
}

// Regex matches when the inquiry string fully matches the tag-compiled
// pattern, using the policy's configured tag delimiters. Patterns without a
// start tag take a cheap equality path and never touch the compiler.
type Regex struct {
	stringChecker
	compiler *pattern.Compiler
}

// NewRegex creates the tagged-regex strategy. The compiler is shared by
// reference across all checkers that need one; nil means a private compiler
// with the default cache size.
func NewRegex(compiler *pattern.Compiler) *Regex {
	if compiler == nil {
		compiler = pattern.NewCompiler(pattern.DefaultCacheSize)
	}
	c := &Regex{compiler: compiler}
	c.kind = KindRegex
	c.match = func(p *policy.Policy, pat, value string) (bool, error) {
		start, end := p.Tags()
		if !strings.ContainsRune(pat, start) {
			return value == pat, nil
		}
		compiled, err := c.compiler.Compile(pat, start, end)
		if err != nil {
			return false, err
		}
		return compiled.Match(value), nil
	}
	return c
}
