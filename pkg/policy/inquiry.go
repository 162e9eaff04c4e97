package policy

import (
	"encoding/json"
	"fmt"
)

// Inquiry describes the request being authorized. It is ephemeral and never
// persisted: the host application builds one per request and hands it to the
// Guard.
//
// Subject, Resource and Action are strings for string-based evaluation or
// field maps (map[string]any) for rule-based evaluation. Context carries
// arbitrary request attributes referenced by policy context rules.
type Inquiry struct {
	Subject  any            `json:"subject,omitempty"`
	Resource any            `json:"resource,omitempty"`
	Action   any            `json:"action,omitempty"`
	Context  map[string]any `json:"context,omitempty"`
}

// Hash returns a canonical representation of the inquiry's full content,
// suitable as a cache key. encoding/json sorts map keys, so two inquiries
// with equal content hash identically regardless of construction order.
func (i *Inquiry) Hash() string {
	data, err := json.Marshal(i)
	if err != nil {
		// Inquiries are built from JSON-compatible request data; an
		// unmarshalable value is a programming error in the host.
		return fmt.Sprintf("unhashable:%v", err)
	}
	return string(data)
}

// String implements fmt.Stringer for audit logging.
func (i *Inquiry) String() string {
	return i.Hash()
}
