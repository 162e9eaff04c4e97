// Package pattern compiles tagged string templates into anchored regular
// expressions. A template mixes literal text with delimiter-marked holes:
// text between a top-level start tag and its matching end tag is inserted
// into the compiled pattern as a regular expression (one capture group per
// hole), while text outside holes is escaped and matched literally.
//
//	myrn:something:foo:<.+>   matches   myrn:something:foo:bar
//	<create|delete>           matches   create, delete
//
// Compilation results are memoized in a bounded LRU keyed by
// (template, start tag, end tag), so evaluating one policy against many
// inquiries compiles each template once.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"warden-hq/warden/internal/lru"
)

// DefaultCacheSize bounds the compiled-pattern cache.
const DefaultCacheSize = 512

// MalformedTemplateError indicates unbalanced tag delimiters: a start tag
// without a matching end tag, or a stray end tag with no open start tag.
type MalformedTemplateError struct {
	Template string
}

// Error returns the error message.
func (e *MalformedTemplateError) Error() string {
	return fmt.Sprintf("pattern: template %q has unbalanced delimiters", e.Template)
}

// Compiled is an immutable compiled template: the anchored full-match
// pattern plus the ordered compiled sub-pattern of every hole.
type Compiled struct {
	re   *regexp.Regexp
	subs []*regexp.Regexp
}

// Match reports whether s matches the template end to end.
func (c *Compiled) Match(s string) bool {
	return c.re.MatchString(s)
}

// Subpatterns returns the compiled hole patterns in template order.
func (c *Compiled) Subpatterns() []*regexp.Regexp {
	return c.subs
}

// Compiler memoizes template compilation. The zero value is not usable;
// construct with NewCompiler. Safe for concurrent use: concurrent requests
// for the same key may compile more than once but always converge on a
// single cached result.
type Compiler struct {
	mu    sync.Mutex
	cache *lru.Cache[cacheKey, *Compiled]
}

type cacheKey struct {
	template string
	start    rune
	end      rune
}

// NewCompiler creates a compiler with the given cache capacity.
// Capacity 0 or less falls back to DefaultCacheSize.
func NewCompiler(cacheSize int) *Compiler {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Compiler{cache: lru.New[cacheKey, *Compiled](cacheSize)}
}

// Compile returns the compiled form of template, serving repeated requests
// from the cache.
func (c *Compiler) Compile(template string, start, end rune) (*Compiled, error) {
	key := cacheKey{template: template, start: start, end: end}

	c.mu.Lock()
	cached, ok := c.cache.Get(key)
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	compiled, err := Compile(template, start, end)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache.Put(key, compiled)
	c.mu.Unlock()
	return compiled, nil
}

// Len returns the number of memoized templates.
func (c *Compiler) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

// Compile compiles template without memoization.
func Compile(template string, start, end rune) (*Compiled, error) {
	idxs, err := delimiterIndices(template, start, end)
	if err != nil {
		return nil, err
	}

	startWidth := utf8.RuneLen(start)
	endWidth := utf8.RuneLen(end)

	var b strings.Builder
	b.WriteString(`\A`)

	subs := make([]*regexp.Regexp, 0, len(idxs)/2)
	prev := 0
	for i := 0; i < len(idxs); i += 2 {
		holeStart, holeEnd := idxs[i], idxs[i+1]
		raw := template[prev:holeStart]
		inner := template[holeStart+startWidth : holeEnd-endWidth]

		sub, err := regexp.Compile(`\A(?:` + inner + `)\z`)
		if err != nil {
			return nil, fmt.Errorf("pattern: invalid hole %q in template %q: %w", inner, template, err)
		}
		subs = append(subs, sub)

		b.WriteString(regexp.QuoteMeta(raw))
		b.WriteString("(")
		b.WriteString(inner)
		b.WriteString(")")
		prev = holeEnd
	}
	b.WriteString(regexp.QuoteMeta(template[prev:]))
	b.WriteString(`\z`)

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("pattern: template %q: %w", template, err)
	}
	return &Compiled{re: re, subs: subs}, nil
}

// delimiterIndices scans the template tracking nesting depth and returns
// byte-index pairs [start, end) of each top-level hole, tags included.
func delimiterIndices(s string, start, end rune) ([]int, error) {
	var idxs []int
	level := 0
	holeStart := 0

	for i, r := range s {
		switch r {
		case start:
			level++
			if level == 1 {
				holeStart = i
			}
		case end:
			level--
			switch {
			case level == 0:
				idxs = append(idxs, holeStart, i+utf8.RuneLen(end))
			case level < 0:
				return nil, &MalformedTemplateError{Template: s}
			}
		}
	}

	if level != 0 {
		return nil, &MalformedTemplateError{Template: s}
	}
	return idxs, nil
}
