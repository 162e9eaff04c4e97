package rules

import (
	"testing"

	"warden-hq/warden/pkg/policy"
)

func TestInquiryBoundRules(t *testing.T) {
	inquiry := &policy.Inquiry{Subject: "Max", Resource: "book", Action: "read"}

	tests := []struct {
		name string
		rule policy.Rule
		what any
		want bool
	}{
		{name: "subject equal matches", rule: &SubjectEqual{}, what: "Max", want: true},
		{name: "subject equal mismatch", rule: &SubjectEqual{}, what: "Nina", want: false},
		{name: "action equal matches", rule: &ActionEqual{}, what: "read", want: true},
		{name: "action equal mismatch", rule: &ActionEqual{}, what: "write", want: false},
		{name: "resource in matches", rule: &ResourceIn{}, what: []any{"magazine", "book"}, want: true},
		{name: "resource in mismatch", rule: &ResourceIn{}, what: []any{"magazine"}, want: false},
		{name: "resource in non-sequence", rule: &ResourceIn{}, what: "book", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Satisfied(tt.what, inquiry); got != tt.want {
				t.Errorf("Satisfied(%v) = %v, want %v", tt.what, got, tt.want)
			}
		})
	}
}

func TestInquiryBoundRulesWithNilInquiry(t *testing.T) {
	for _, r := range []policy.Rule{&SubjectEqual{}, &ActionEqual{}, &ResourceIn{}} {
		if r.Satisfied("anything", nil) {
			t.Errorf("%T should not be satisfied without an inquiry", r)
		}
	}
}
