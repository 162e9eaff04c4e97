package policy

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Type identifies which matching family may consider a policy.
type Type string

const (
	// TypeStringBased marks policies whose conditions are string patterns.
	TypeStringBased Type = "string_based"

	// TypeRuleBased marks policies whose conditions are Rules or field maps.
	TypeRuleBased Type = "rule_based"
)

// Default tag delimiters for tagged regex patterns in string-based policies.
const (
	DefaultStartTag = '<'
	DefaultEndTag   = '>'
)

// Validation errors.
var (
	// ErrEmptyUID indicates a policy without a unique identifier.
	ErrEmptyUID = errors.New("policy uid is empty")

	// ErrMixedConditions indicates a policy mixing string patterns with
	// rule-based conditions; the two families are mutually exclusive.
	ErrMixedConditions = errors.New("policy mixes string-based and rule-based conditions")

	// ErrInvalidEffect indicates an effect outside {allow, deny}.
	ErrInvalidEffect = errors.New("policy effect must be allow or deny")
)

// Policy is a stored access rule: an effect plus match conditions for
// subjects, resources and actions, and a context of named Rules evaluated
// against the inquiry's context map.
//
// Condition elements are either plain strings (string-based policies) or
// Rules / field maps of Rules (rule-based policies). Literal values inside
// field maps and context act as an implicit equality rule. Policies are
// immutable value objects once handed to a Storage.
type Policy struct {
	// UID uniquely identifies the policy within a Storage.
	UID string

	// Description is free-form operator documentation.
	Description string

	// Effect is the outcome attached to a match. The zero value counts
	// as Deny.
	Effect Effect

	// Subjects, Resources and Actions hold the match conditions. Within a
	// field the elements are OR-ed; across fields the results are AND-ed.
	Subjects  []any
	Resources []any
	Actions   []any

	// Context maps inquiry-context keys to Rules (or literals). Every
	// entry must be satisfied for the policy to match.
	Context map[string]any

	// StartTag and EndTag delimit embedded regex holes in string patterns.
	// Zero values fall back to '<' and '>'.
	StartTag rune
	EndTag   rune
}

// New returns an empty deny policy with a generated UID and default tags.
// Callers building policies with struct literals get the same defaults from
// the zero-value handling in Tags and AllowAccess.
func New() *Policy {
	return &Policy{
		UID:      uuid.NewString(),
		Effect:   Deny,
		StartTag: DefaultStartTag,
		EndTag:   DefaultEndTag,
	}
}

// AllowAccess reports whether a match on this policy grants access.
func (p *Policy) AllowAccess() bool {
	return p.Effect == Allow
}

// Tags returns the pattern delimiters, substituting defaults for zero values.
func (p *Policy) Tags() (start, end rune) {
	start, end = p.StartTag, p.EndTag
	if start == 0 {
		start = DefaultStartTag
	}
	if end == 0 {
		end = DefaultEndTag
	}
	return start, end
}

// DeriveType reports the matching family the policy's conditions imply.
// A policy with no conditions at all is string-based. The second return is
// false when string and rule conditions are mixed.
func (p *Policy) DeriveType() (Type, bool) {
	var stringBased, ruleBased bool

	for _, field := range [][]any{p.Subjects, p.Resources, p.Actions} {
		for _, el := range field {
			switch el.(type) {
			case string:
				stringBased = true
			default:
				ruleBased = true
			}
		}
	}

	if stringBased && ruleBased {
		return "", false
	}
	if ruleBased {
		return TypeRuleBased, true
	}
	return TypeStringBased, true
}

// Validate checks the policy's structural invariants. Storages call it on
// Add and Update before persisting.
func (p *Policy) Validate() error {
	if p.UID == "" {
		return ErrEmptyUID
	}
	if p.Effect != "" && !p.Effect.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEffect, p.Effect)
	}
	if _, ok := p.DeriveType(); !ok {
		return fmt.Errorf("%w: uid=%s", ErrMixedConditions, p.UID)
	}
	return nil
}

// policyDocument is the structured document representation of a Policy.
type policyDocument struct {
	UID         string                     `json:"uid"`
	Description string                     `json:"description,omitempty"`
	Effect      Effect                     `json:"effect"`
	Type        Type                       `json:"type"`
	Subjects    []json.RawMessage          `json:"subjects"`
	Resources   []json.RawMessage          `json:"resources"`
	Actions     []json.RawMessage          `json:"actions"`
	Context     map[string]json.RawMessage `json:"context,omitempty"`
	StartTag    string                     `json:"start_tag"`
	EndTag      string                     `json:"end_tag"`
}

// MarshalJSON converts the policy to its lossless document form.
func (p *Policy) MarshalJSON() ([]byte, error) {
	typ, ok := p.DeriveType()
	if !ok {
		return nil, fmt.Errorf("%w: uid=%s", ErrMixedConditions, p.UID)
	}

	start, end := p.Tags()
	doc := policyDocument{
		UID:         p.UID,
		Description: p.Description,
		Effect:      p.Effect,
		Type:        typ,
		StartTag:    string(start),
		EndTag:      string(end),
	}
	if doc.Effect == "" {
		doc.Effect = Deny
	}

	var err error
	if doc.Subjects, err = encodeConditions(p.Subjects); err != nil {
		return nil, err
	}
	if doc.Resources, err = encodeConditions(p.Resources); err != nil {
		return nil, err
	}
	if doc.Actions, err = encodeConditions(p.Actions); err != nil {
		return nil, err
	}

	if len(p.Context) > 0 {
		doc.Context = make(map[string]json.RawMessage, len(p.Context))
		for k, v := range p.Context {
			enc, err := encodeConditionValue(v)
			if err != nil {
				return nil, fmt.Errorf("context %q: %w", k, err)
			}
			doc.Context[k] = enc
		}
	}

	return json.Marshal(doc)
}

// UnmarshalJSON restores a policy from its document form, reviving every
// Rule variant through the registry.
func (p *Policy) UnmarshalJSON(data []byte) error {
	var doc policyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("policy: decode document: %w", err)
	}

	p.UID = doc.UID
	p.Description = doc.Description
	p.Effect = doc.Effect
	if p.Effect == "" {
		p.Effect = Deny
	}
	p.StartTag = firstRune(doc.StartTag, DefaultStartTag)
	p.EndTag = firstRune(doc.EndTag, DefaultEndTag)

	var err error
	if p.Subjects, err = decodeConditions(doc.Subjects); err != nil {
		return err
	}
	if p.Resources, err = decodeConditions(doc.Resources); err != nil {
		return err
	}
	if p.Actions, err = decodeConditions(doc.Actions); err != nil {
		return err
	}

	p.Context = nil
	if len(doc.Context) > 0 {
		p.Context = make(map[string]any, len(doc.Context))
		for k, raw := range doc.Context {
			v, err := decodeConditionValue(raw)
			if err != nil {
				return fmt.Errorf("context %q: %w", k, err)
			}
			p.Context[k] = v
		}
	}

	return nil
}

func encodeConditions(conds []any) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(conds))
	for _, c := range conds {
		enc, err := encodeConditionValue(c)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

func decodeConditions(raw []json.RawMessage) ([]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]any, 0, len(raw))
	for _, r := range raw {
		v, err := decodeConditionValue(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func firstRune(s string, fallback rune) rune {
	for _, r := range s {
		return r
	}
	return fallback
}
