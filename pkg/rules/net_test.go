package rules

import (
	"testing"

	"warden-hq/warden/pkg/policy"
)

func TestCIDR(t *testing.T) {
	r, err := NewCIDR("192.168.2.0/24")
	if err != nil {
		t.Fatalf("NewCIDR: %v", err)
	}

	tests := []struct {
		name string
		what any
		want bool
	}{
		{name: "address in block", what: "192.168.2.56", want: true},
		{name: "address outside block", what: "192.168.3.1", want: false},
		{name: "not an address", what: "not-an-ip", want: false},
		{name: "non-string", what: 192, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Satisfied(tt.what, nil); got != tt.want {
				t.Errorf("Satisfied(%v) = %v, want %v", tt.what, got, tt.want)
			}
		})
	}

	if _, err := NewCIDR("not-a-block"); err == nil {
		t.Error("expected error on invalid block")
	}

	// Literal construction defers parsing to evaluation.
	lazy := &CIDR{Block: "10.0.0.0/8"}
	if !lazy.Satisfied("10.1.2.3", nil) {
		t.Error("lazily parsed block should satisfy")
	}
	bad := &CIDR{Block: "nope"}
	if bad.Satisfied("10.1.2.3", nil) {
		t.Error("unparseable block should never satisfy")
	}
}

func TestCIDRSerialization(t *testing.T) {
	r, err := NewCIDR("127.0.0.1/32")
	if err != nil {
		t.Fatalf("NewCIDR: %v", err)
	}

	data, err := policy.MarshalRule(r)
	if err != nil {
		t.Fatalf("MarshalRule: %v", err)
	}
	revived, err := policy.UnmarshalRule(data)
	if err != nil {
		t.Fatalf("UnmarshalRule: %v", err)
	}

	if !revived.Satisfied("127.0.0.1", nil) {
		t.Error("revived rule should satisfy its own address")
	}
	if revived.Satisfied("127.0.0.2", nil) {
		t.Error("revived rule should reject addresses outside the block")
	}
}
