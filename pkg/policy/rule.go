package policy

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// Rule is a predicate over a single value plus the inquiry being evaluated.
// Satisfied must be a pure function of its inputs: no hidden mutation, and
// the same answer before and after a serialization round trip.
//
// Implementations live in pkg/rules; they register themselves with
// RegisterRule so deserialization can restore the exact variant.
type Rule interface {
	Satisfied(what any, inquiry *Inquiry) bool
}

// ruleEnvelope is the wire form of a Rule: an explicit variant tag plus the
// variant's constructor arguments. The tag is data, not a reflected class
// name, so documents survive refactors that move or rename Go types.
type ruleEnvelope struct {
	Type     string          `json:"type"`
	Contents json.RawMessage `json:"contents"`
}

var (
	ruleRegistryMu sync.RWMutex
	ruleFactories  = make(map[string]func() Rule)
	ruleTags       = make(map[reflect.Type]string)
)

// RegisterRule registers a Rule variant under a stable tag. The factory must
// return a fresh zero value suitable for json.Unmarshal. Registering the
// same tag twice panics; variant tags are part of the storage format.
func RegisterRule(tag string, factory func() Rule) {
	ruleRegistryMu.Lock()
	defer ruleRegistryMu.Unlock()

	if _, dup := ruleFactories[tag]; dup {
		panic(fmt.Sprintf("policy: rule tag %q registered twice", tag))
	}

	ruleFactories[tag] = factory
	ruleTags[reflect.TypeOf(factory())] = tag
}

// MarshalRule converts a Rule to its tagged document form.
func MarshalRule(r Rule) (json.RawMessage, error) {
	ruleRegistryMu.RLock()
	tag, ok := ruleTags[reflect.TypeOf(r)]
	ruleRegistryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("policy: rule type %T is not registered", r)
	}

	contents, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("policy: marshal rule %q: %w", tag, err)
	}

	return json.Marshal(ruleEnvelope{Type: tag, Contents: contents})
}

// UnmarshalRule restores a Rule from its tagged document form. The returned
// Rule is of the exact variant that produced the document.
func UnmarshalRule(data []byte) (Rule, error) {
	var env ruleEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("policy: decode rule envelope: %w", err)
	}

	ruleRegistryMu.RLock()
	factory, ok := ruleFactories[env.Type]
	ruleRegistryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("policy: unknown rule tag %q", env.Type)
	}

	rule := factory()
	if len(env.Contents) > 0 {
		if err := json.Unmarshal(env.Contents, rule); err != nil {
			return nil, fmt.Errorf("policy: decode rule %q: %w", env.Type, err)
		}
	}
	return rule, nil
}

// registeredTag reports the tag for a rule type, if any. Used by envelope
// detection when decoding condition values.
func registeredTag(tag string) bool {
	ruleRegistryMu.RLock()
	defer ruleRegistryMu.RUnlock()
	_, ok := ruleFactories[tag]
	return ok
}

// encodeConditionValue serializes one condition element or field-map value:
// a Rule becomes a tagged envelope, a field map is encoded entry by entry,
// and anything else is stored as a plain JSON literal.
func encodeConditionValue(v any) (json.RawMessage, error) {
	switch x := v.(type) {
	case Rule:
		return MarshalRule(x)
	case map[string]any:
		obj := make(map[string]json.RawMessage, len(x))
		for k, fv := range x {
			enc, err := encodeConditionValue(fv)
			if err != nil {
				return nil, err
			}
			obj[k] = enc
		}
		return json.Marshal(obj)
	default:
		return json.Marshal(v)
	}
}

// decodeConditionValue is the inverse of encodeConditionValue. A JSON object
// whose "type" names a registered rule tag is decoded as a Rule; other
// objects become field maps; everything else is a plain literal.
func decodeConditionValue(raw json.RawMessage) (any, error) {
	var env ruleEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Type != "" && registeredTag(env.Type) {
		return UnmarshalRule(raw)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil && len(raw) > 0 && raw[0] == '{' {
		fields := make(map[string]any, len(obj))
		for k, fv := range obj {
			dec, err := decodeConditionValue(fv)
			if err != nil {
				return nil, err
			}
			fields[k] = dec
		}
		return fields, nil
	}

	var lit any
	if err := json.Unmarshal(raw, &lit); err != nil {
		return nil, fmt.Errorf("policy: decode condition value: %w", err)
	}
	return lit, nil
}
