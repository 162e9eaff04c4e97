package rules

import (
	"encoding/json"
	"fmt"
	"net/netip"

	"warden-hq/warden/pkg/policy"
)

// CIDR is satisfied when the checked value is a valid IP literal contained
// in the configured network block.
type CIDR struct {
	Block string

	prefix netip.Prefix
}

// NewCIDR parses block (e.g. "127.0.0.1/32") and returns the rule.
func NewCIDR(block string) (*CIDR, error) {
	prefix, err := netip.ParsePrefix(block)
	if err != nil {
		return nil, fmt.Errorf("rules: invalid CIDR %q: %w", block, err)
	}
	return &CIDR{Block: block, prefix: prefix}, nil
}

// Satisfied implements policy.Rule.
func (r *CIDR) Satisfied(what any, _ *policy.Inquiry) bool {
	s, ok := toStr(what)
	if !ok {
		return false
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return false
	}

	prefix := r.prefix
	if !prefix.IsValid() {
		if prefix, err = netip.ParsePrefix(r.Block); err != nil {
			return false
		}
	}
	return prefix.Contains(addr.Unmap())
}

// MarshalJSON stores only the block source.
func (r *CIDR) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Block string `json:"block"`
	}{Block: r.Block})
}

// UnmarshalJSON restores and reparses the block.
func (r *CIDR) UnmarshalJSON(data []byte) error {
	var doc struct {
		Block string `json:"block"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	prefix, err := netip.ParsePrefix(doc.Block)
	if err != nil {
		return fmt.Errorf("rules: invalid CIDR %q: %w", doc.Block, err)
	}
	r.Block = doc.Block
	r.prefix = prefix
	return nil
}
