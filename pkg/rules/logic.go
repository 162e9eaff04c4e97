package rules

import (
	"encoding/json"
	"fmt"

	"warden-hq/warden/pkg/policy"
)

// And is satisfied when every sub-rule is satisfied. An empty And is
// vacuously satisfied.
type And struct {
	Rules []policy.Rule
}

// NewAnd combines sub-rules conjunctively.
func NewAnd(subs ...policy.Rule) *And {
	return &And{Rules: subs}
}

// Satisfied implements policy.Rule.
func (r *And) Satisfied(what any, inquiry *policy.Inquiry) bool {
	for _, sub := range r.Rules {
		if !sub.Satisfied(what, inquiry) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes each sub-rule as a tagged envelope.
func (r *And) MarshalJSON() ([]byte, error) {
	return marshalSubRules(r.Rules)
}

// UnmarshalJSON revives each sub-rule through the registry.
func (r *And) UnmarshalJSON(data []byte) error {
	subs, err := unmarshalSubRules(data)
	if err != nil {
		return err
	}
	r.Rules = subs
	return nil
}

// Or is satisfied when at least one sub-rule is satisfied. An empty Or is
// never satisfied.
type Or struct {
	Rules []policy.Rule
}

// NewOr combines sub-rules disjunctively.
func NewOr(subs ...policy.Rule) *Or {
	return &Or{Rules: subs}
}

// Satisfied implements policy.Rule.
func (r *Or) Satisfied(what any, inquiry *policy.Inquiry) bool {
	for _, sub := range r.Rules {
		if sub.Satisfied(what, inquiry) {
			return true
		}
	}
	return false
}

// MarshalJSON encodes each sub-rule as a tagged envelope.
func (r *Or) MarshalJSON() ([]byte, error) {
	return marshalSubRules(r.Rules)
}

// UnmarshalJSON revives each sub-rule through the registry.
func (r *Or) UnmarshalJSON(data []byte) error {
	subs, err := unmarshalSubRules(data)
	if err != nil {
		return err
	}
	r.Rules = subs
	return nil
}

// Not inverts its sub-rule.
type Not struct {
	Rule policy.Rule
}

// NewNot inverts sub.
func NewNot(sub policy.Rule) *Not {
	return &Not{Rule: sub}
}

// Satisfied implements policy.Rule.
func (r *Not) Satisfied(what any, inquiry *policy.Inquiry) bool {
	if r.Rule == nil {
		return false
	}
	return !r.Rule.Satisfied(what, inquiry)
}

// MarshalJSON encodes the sub-rule as a tagged envelope.
func (r *Not) MarshalJSON() ([]byte, error) {
	if r.Rule == nil {
		return nil, fmt.Errorf("rules: not combinator has no sub-rule")
	}
	sub, err := policy.MarshalRule(r.Rule)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Rule json.RawMessage `json:"rule"`
	}{Rule: sub})
}

// UnmarshalJSON revives the sub-rule through the registry.
func (r *Not) UnmarshalJSON(data []byte) error {
	var doc struct {
		Rule json.RawMessage `json:"rule"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	sub, err := policy.UnmarshalRule(doc.Rule)
	if err != nil {
		return err
	}
	r.Rule = sub
	return nil
}

func marshalSubRules(subs []policy.Rule) ([]byte, error) {
	encoded := make([]json.RawMessage, 0, len(subs))
	for _, sub := range subs {
		enc, err := policy.MarshalRule(sub)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, enc)
	}
	return json.Marshal(struct {
		Rules []json.RawMessage `json:"rules"`
	}{Rules: encoded})
}

func unmarshalSubRules(data []byte) ([]policy.Rule, error) {
	var doc struct {
		Rules []json.RawMessage `json:"rules"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	subs := make([]policy.Rule, 0, len(doc.Rules))
	for _, raw := range doc.Rules {
		sub, err := policy.UnmarshalRule(raw)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
