package rules

import (
	"testing"

	"warden-hq/warden/pkg/policy"
)

func TestCombinators(t *testing.T) {
	tests := []struct {
		name string
		rule policy.Rule
		what any
		want bool
	}{
		{name: "and all satisfied", rule: NewAnd(&Greater{Value: 1}, &Less{Value: 10}), what: 5, want: true},
		{name: "and one unsatisfied", rule: NewAnd(&Greater{Value: 1}, &Less{Value: 10}), what: 11, want: false},
		{name: "empty and", rule: NewAnd(), what: "anything", want: true},
		{name: "or one satisfied", rule: NewOr(&Eq{Value: "a"}, &Eq{Value: "b"}), what: "b", want: true},
		{name: "or none satisfied", rule: NewOr(&Eq{Value: "a"}, &Eq{Value: "b"}), what: "c", want: false},
		{name: "empty or", rule: NewOr(), what: "anything", want: false},
		{name: "not inverts", rule: NewNot(&Eq{Value: "a"}), what: "b", want: true},
		{name: "not inverts satisfied", rule: NewNot(&Eq{Value: "a"}), what: "a", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Satisfied(tt.what, nil); got != tt.want {
				t.Errorf("Satisfied(%v) = %v, want %v", tt.what, got, tt.want)
			}
		})
	}
}

func TestCombinatorsBindInquiry(t *testing.T) {
	inquiry := &policy.Inquiry{Subject: "Max"}
	r := NewAnd(&SubjectEqual{}, &StrEqual{Value: "Max"})
	if !r.Satisfied("Max", inquiry) {
		t.Error("sub-rules should receive the inquiry")
	}
}

func TestNestedCombinatorSerialization(t *testing.T) {
	original := NewNot(NewOr(
		&Eq{Value: "a"},
		NewAnd(&Greater{Value: 1.0}, &Less{Value: 10.0}),
	))

	data, err := policy.MarshalRule(original)
	if err != nil {
		t.Fatalf("MarshalRule: %v", err)
	}
	revived, err := policy.UnmarshalRule(data)
	if err != nil {
		t.Fatalf("UnmarshalRule: %v", err)
	}

	// Behavioral equivalence across the round trip.
	for _, tc := range []struct {
		what any
		want bool
	}{
		{what: "a", want: false},
		{what: 5.0, want: false},
		{what: 11.0, want: true},
		{what: "z", want: true},
	} {
		if got := revived.Satisfied(tc.what, nil); got != tc.want {
			t.Errorf("revived.Satisfied(%v) = %v, want %v", tc.what, got, tc.want)
		}
	}
}
