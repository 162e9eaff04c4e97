package rules

import (
	"testing"

	"warden-hq/warden/pkg/policy"
)

func TestEq(t *testing.T) {
	tests := []struct {
		name string
		rule policy.Rule
		what any
		want bool
	}{
		{name: "equal strings", rule: &Eq{Value: "max"}, what: "max", want: true},
		{name: "different strings", rule: &Eq{Value: "max"}, what: "sally", want: false},
		{name: "int equals float", rule: &Eq{Value: 2}, what: 2.0, want: true},
		{name: "int equals int64", rule: &Eq{Value: 2}, what: int64(2), want: true},
		{name: "number versus string", rule: &Eq{Value: 2}, what: "2", want: false},
		{name: "equal sequences", rule: &Eq{Value: []any{1, "b"}}, what: []any{1.0, "b"}, want: true},
		{name: "sequences of different length", rule: &Eq{Value: []any{1, 2}}, what: []any{1}, want: false},
		{name: "equal maps", rule: &Eq{Value: map[string]any{"a": 1}}, what: map[string]any{"a": 1.0}, want: true},
		{name: "nil equals nil", rule: &Eq{Value: nil}, what: nil, want: true},
		{name: "nil versus value", rule: &Eq{Value: nil}, what: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Satisfied(tt.what, nil); got != tt.want {
				t.Errorf("Satisfied(%v) = %v, want %v", tt.what, got, tt.want)
			}
		})
	}
}

func TestNotEq(t *testing.T) {
	if (&NotEq{Value: "max"}).Satisfied("max", nil) {
		t.Error("equal values should not satisfy NotEq")
	}
	if !(&NotEq{Value: "max"}).Satisfied("sally", nil) {
		t.Error("different values should satisfy NotEq")
	}
}

func TestOrderingRules(t *testing.T) {
	tests := []struct {
		name string
		rule policy.Rule
		what any
		want bool
	}{
		{name: "greater number", rule: &Greater{Value: 1}, what: 2, want: true},
		{name: "greater equal number", rule: &Greater{Value: 1}, what: 1, want: false},
		{name: "greater across widths", rule: &Greater{Value: 1.5}, what: int64(2), want: true},
		{name: "less number", rule: &Less{Value: 10}, what: 9, want: true},
		{name: "less string", rule: &Less{Value: "b"}, what: "a", want: true},
		{name: "greater or equal at boundary", rule: &GreaterOrEqual{Value: 5}, what: 5, want: true},
		{name: "less or equal above boundary", rule: &LessOrEqual{Value: 5}, what: 6, want: false},
		{name: "sequence orders by first difference", rule: &Greater{Value: []any{1, 2}}, what: []any{1, 3}, want: true},
		{name: "prefix sequence orders first", rule: &Less{Value: []any{1, 2}}, what: []any{1}, want: true},
		{name: "incomparable types never satisfy", rule: &Greater{Value: 1}, what: "2", want: false},
		{name: "unordered type never satisfies", rule: &Less{Value: map[string]any{}}, what: map[string]any{}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Satisfied(tt.what, nil); got != tt.want {
				t.Errorf("Satisfied(%v) = %v, want %v", tt.what, got, tt.want)
			}
		})
	}
}
