package rules

import (
	"testing"

	"warden-hq/warden/pkg/policy"
)

func TestMembershipRules(t *testing.T) {
	values := []any{1, "b", 3}

	tests := []struct {
		name string
		rule policy.Rule
		what any
		want bool
	}{
		{name: "in member", rule: &In{Values: values}, what: "b", want: true},
		{name: "in member via coercion", rule: &In{Values: values}, what: 3.0, want: true},
		{name: "in non-member", rule: &In{Values: values}, what: "z", want: false},
		{name: "not in non-member", rule: &NotIn{Values: values}, what: "z", want: true},
		{name: "not in member", rule: &NotIn{Values: values}, what: 1, want: false},

		{name: "all in subset", rule: &AllIn{Values: values}, what: []any{1, "b"}, want: true},
		{name: "all in empty sequence", rule: &AllIn{Values: values}, what: []any{}, want: true},
		{name: "all in with outsider", rule: &AllIn{Values: values}, what: []any{1, "z"}, want: false},
		{name: "all in non-sequence", rule: &AllIn{Values: values}, what: 1, want: false},

		{name: "all not in with outsider", rule: &AllNotIn{Values: values}, what: []any{1, "z"}, want: true},
		{name: "all not in subset", rule: &AllNotIn{Values: values}, what: []any{1, "b"}, want: false},
		{name: "all not in empty sequence", rule: &AllNotIn{Values: values}, what: []any{}, want: false},

		{name: "any in overlapping", rule: &AnyIn{Values: values}, what: []any{"z", 1}, want: true},
		{name: "any in disjoint", rule: &AnyIn{Values: values}, what: []any{"z", "y"}, want: false},
		{name: "any in non-sequence", rule: &AnyIn{Values: values}, what: "b", want: false},

		{name: "any not in disjoint", rule: &AnyNotIn{Values: values}, what: []any{"z", "y"}, want: true},
		{name: "any not in overlapping", rule: &AnyNotIn{Values: values}, what: []any{"z", 1}, want: false},
		{name: "any not in empty sequence", rule: &AnyNotIn{Values: values}, what: []any{}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Satisfied(tt.what, nil); got != tt.want {
				t.Errorf("Satisfied(%v) = %v, want %v", tt.what, got, tt.want)
			}
		})
	}
}

func TestMembershipAcceptsTypedSlices(t *testing.T) {
	r := &AllIn{Values: []any{"a", "b", "c"}}
	if !r.Satisfied([]string{"a", "c"}, nil) {
		t.Error("typed string slice should flatten to a sequence")
	}
}
