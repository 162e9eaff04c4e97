package checker

import (
	"errors"
	"testing"

	"warden-hq/warden/pkg/pattern"
	"warden-hq/warden/pkg/policy"
	"warden-hq/warden/pkg/rules"
)

func TestNew(t *testing.T) {
	for _, kind := range []Kind{KindExact, KindFuzzy, KindRegex, KindRules} {
		chk, err := New(kind, nil)
		if err != nil {
			t.Fatalf("New(%q): %v", kind, err)
		}
		if chk.Kind() != kind {
			t.Errorf("Kind = %q, want %q", chk.Kind(), kind)
		}
	}

	_, err := New("psychic", nil)
	var unknown *UnknownCheckerTypeError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownCheckerTypeError, got %v", err)
	}
	if unknown.Kind != "psychic" {
		t.Errorf("Kind = %q, want psychic", unknown.Kind)
	}
}

func fits(t *testing.T, chk Checker, p *policy.Policy, inquiry *policy.Inquiry) bool {
	t.Helper()
	ok, err := chk.Fits(p, inquiry)
	if err != nil {
		t.Fatalf("Fits: %v", err)
	}
	return ok
}

func TestExact(t *testing.T) {
	chk := NewExact()
	p := &policy.Policy{
		UID:       "1",
		Subjects:  []any{"Max", "Nina"},
		Resources: []any{"book"},
		Actions:   []any{"read", "write"},
	}

	tests := []struct {
		name    string
		inquiry *policy.Inquiry
		want    bool
	}{
		{name: "all fields match", inquiry: &policy.Inquiry{Subject: "Nina", Resource: "book", Action: "write"}, want: true},
		{name: "subject mismatch", inquiry: &policy.Inquiry{Subject: "Ben", Resource: "book", Action: "read"}, want: false},
		{name: "action mismatch", inquiry: &policy.Inquiry{Subject: "Max", Resource: "book", Action: "delete"}, want: false},
		{name: "prefix is not enough", inquiry: &policy.Inquiry{Subject: "Max", Resource: "bookshelf", Action: "read"}, want: false},
		{name: "field map inquiry never matches", inquiry: &policy.Inquiry{Subject: map[string]any{"name": "Max"}, Resource: "book", Action: "read"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fits(t, chk, p, tt.inquiry); got != tt.want {
				t.Errorf("Fits = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExactEmptyField(t *testing.T) {
	chk := NewExact()
	p := &policy.Policy{UID: "1", Subjects: []any{"Max"}, Actions: []any{"read"}}
	// No resource conditions: nothing to satisfy the resource field.
	if fits(t, chk, p, &policy.Inquiry{Subject: "Max", Resource: "book", Action: "read"}) {
		t.Error("policy with an empty field should not fit")
	}
}

func TestFuzzy(t *testing.T) {
	chk := NewFuzzy()
	p := &policy.Policy{
		UID:       "1",
		Subjects:  []any{"ax"},
		Resources: []any{"oo"},
		Actions:   []any{"ea"},
	}

	if !fits(t, chk, p, &policy.Inquiry{Subject: "Max", Resource: "book", Action: "read"}) {
		t.Error("substrings should fit the fuzzy strategy")
	}
	if fits(t, chk, p, &policy.Inquiry{Subject: "Nina", Resource: "book", Action: "read"}) {
		t.Error("missing substring should not fit")
	}
}

func TestRegex(t *testing.T) {
	chk := NewRegex(pattern.NewCompiler(pattern.DefaultCacheSize))
	p := &policy.Policy{
		UID:       "1",
		Subjects:  []any{"<[\\w]+ M[\\w]+>"},
		Resources: []any{"library:books:<.+>"},
		Actions:   []any{"<read|get>"},
	}

	tests := []struct {
		name    string
		inquiry *policy.Inquiry
		want    bool
	}{
		{
			name:    "tagged patterns match",
			inquiry: &policy.Inquiry{Subject: "Jim Morrison", Resource: "library:books:dune", Action: "get"},
			want:    true,
		},
		{
			name:    "hole rejects non-matching text",
			inquiry: &policy.Inquiry{Subject: "Jim Morrison", Resource: "library:books:dune", Action: "borrow"},
			want:    false,
		},
		{
			name:    "literal prefix is anchored",
			inquiry: &policy.Inquiry{Subject: "Jim Morrison", Resource: "the-library:books:dune", Action: "read"},
			want:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fits(t, chk, p, tt.inquiry); got != tt.want {
				t.Errorf("Fits = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegexEqualityFastPath(t *testing.T) {
	chk := NewRegex(nil)
	p := &policy.Policy{UID: "1", Subjects: []any{"M[ax]"}, Resources: []any{"r"}, Actions: []any{"a"}}

	// No start tag anywhere: the pattern is compared literally, regex
	// metacharacters and all.
	if !fits(t, chk, p, &policy.Inquiry{Subject: "M[ax]", Resource: "r", Action: "a"}) {
		t.Error("untagged pattern should compare by equality")
	}
	if fits(t, chk, p, &policy.Inquiry{Subject: "Ma", Resource: "r", Action: "a"}) {
		t.Error("untagged pattern should not be interpreted as a regex")
	}
}

func TestRegexCustomTags(t *testing.T) {
	chk := NewRegex(nil)
	p := &policy.Policy{
		UID:       "1",
		Subjects:  []any{"{Ben|Henry}"},
		Resources: []any{"book"},
		Actions:   []any{"read"},
		StartTag:  '{',
		EndTag:    '}',
	}

	if !fits(t, chk, p, &policy.Inquiry{Subject: "Henry", Resource: "book", Action: "read"}) {
		t.Error("custom tags should delimit the pattern")
	}
}

func TestRegexMalformedTemplate(t *testing.T) {
	chk := NewRegex(nil)
	p := &policy.Policy{UID: "1", Subjects: []any{"<unclosed"}, Resources: []any{"r"}, Actions: []any{"a"}}

	_, err := chk.Fits(p, &policy.Inquiry{Subject: "x", Resource: "r", Action: "a"})
	var malformed *pattern.MalformedTemplateError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedTemplateError, got %v", err)
	}
}

func TestStringCheckersRejectRuleBasedPolicies(t *testing.T) {
	p := &policy.Policy{UID: "1", Subjects: []any{&rules.Eq{Value: "Max"}}}
	inquiry := &policy.Inquiry{Subject: "Max"}

	for _, chk := range []Checker{NewExact(), NewFuzzy(), NewRegex(nil)} {
		if fits(t, chk, p, inquiry) {
			t.Errorf("%q strategy should ignore rule-based policies", chk.Kind())
		}
	}
}

func TestContextConditions(t *testing.T) {
	cidr, err := rules.NewCIDR("127.0.0.1/32")
	if err != nil {
		t.Fatalf("NewCIDR: %v", err)
	}
	chk := NewExact()
	p := &policy.Policy{
		UID:       "1",
		Subjects:  []any{"Max"},
		Resources: []any{"book"},
		Actions:   []any{"read"},
		Context:   map[string]any{"ip": cidr, "tier": "gold"},
	}

	tests := []struct {
		name    string
		context map[string]any
		want    bool
	}{
		{name: "all context satisfied", context: map[string]any{"ip": "127.0.0.1", "tier": "gold"}, want: true},
		{name: "rule unsatisfied", context: map[string]any{"ip": "10.0.0.1", "tier": "gold"}, want: false},
		{name: "literal acts as equality", context: map[string]any{"ip": "127.0.0.1", "tier": "silver"}, want: false},
		{name: "missing key fails", context: map[string]any{"ip": "127.0.0.1"}, want: false},
		{name: "empty context fails", context: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inquiry := &policy.Inquiry{Subject: "Max", Resource: "book", Action: "read", Context: tt.context}
			if got := fits(t, chk, p, inquiry); got != tt.want {
				t.Errorf("Fits = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRules(t *testing.T) {
	chk := NewRules()
	p := &policy.Policy{
		UID: "1",
		Subjects: []any{
			map[string]any{"login": &rules.StrEqual{Value: "max"}, "role": &rules.In{Values: []any{"admin", "root"}}},
		},
		Resources: []any{map[string]any{"category": "administration"}},
		Actions:   []any{&rules.In{Values: []any{"read", "write"}}},
	}

	tests := []struct {
		name    string
		inquiry *policy.Inquiry
		want    bool
	}{
		{
			name: "all conditions satisfied",
			inquiry: &policy.Inquiry{
				Subject:  map[string]any{"login": "max", "role": "root", "extra": "ignored"},
				Resource: map[string]any{"category": "administration"},
				Action:   "write",
			},
			want: true,
		},
		{
			name: "one field entry unsatisfied",
			inquiry: &policy.Inquiry{
				Subject:  map[string]any{"login": "max", "role": "guest"},
				Resource: map[string]any{"category": "administration"},
				Action:   "read",
			},
			want: false,
		},
		{
			name: "missing field map key",
			inquiry: &policy.Inquiry{
				Subject:  map[string]any{"login": "max"},
				Resource: map[string]any{"category": "administration"},
				Action:   "read",
			},
			want: false,
		},
		{
			name: "string inquiry against field map",
			inquiry: &policy.Inquiry{
				Subject:  "max",
				Resource: map[string]any{"category": "administration"},
				Action:   "read",
			},
			want: false,
		},
		{
			name: "bare rule on whole action value",
			inquiry: &policy.Inquiry{
				Subject:  map[string]any{"login": "max", "role": "admin"},
				Resource: map[string]any{"category": "administration"},
				Action:   "delete",
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fits(t, chk, p, tt.inquiry); got != tt.want {
				t.Errorf("Fits = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRulesRejectsStringBasedPolicies(t *testing.T) {
	chk := NewRules()
	p := &policy.Policy{UID: "1", Subjects: []any{"Max"}, Resources: []any{"book"}, Actions: []any{"read"}}
	if fits(t, chk, p, &policy.Inquiry{Subject: "Max", Resource: "book", Action: "read"}) {
		t.Error("rules strategy should ignore string-based policies")
	}
}

func TestRulesInquiryBoundConditions(t *testing.T) {
	chk := NewRules()
	p := &policy.Policy{
		UID:       "1",
		Subjects:  []any{&rules.In{Values: []any{"Max", "Nina"}}},
		Resources: []any{map[string]any{"owner": &rules.SubjectEqual{}}},
		Actions:   []any{&rules.Eq{Value: "edit"}},
	}

	owned := &policy.Inquiry{
		Subject:  "Max",
		Resource: map[string]any{"owner": "Max"},
		Action:   "edit",
	}
	if !fits(t, chk, p, owned) {
		t.Error("owner matching the subject should fit")
	}

	foreign := &policy.Inquiry{
		Subject:  "Max",
		Resource: map[string]any{"owner": "Nina"},
		Action:   "edit",
	}
	if fits(t, chk, p, foreign) {
		t.Error("owner differing from the subject should not fit")
	}
}
