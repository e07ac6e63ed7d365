package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/recur/id"
)

func deriveFixture(nonce uint64) id.SubscriptionID {
	return id.Derive(
		"payer-a", "payee-b", "asset-t",
		3, 1,
		0, 30,
		1790000010,
		nil,
		nonce,
	)
}

func TestDeriveDeterministic(t *testing.T) {
	a := deriveFixture(7)
	b := deriveFixture(7)
	if a != b {
		t.Errorf("same inputs derived different ids: %s vs %s", a, b)
	}
}

func TestDeriveNonceUniqueness(t *testing.T) {
	seen := make(map[id.SubscriptionID]bool)
	for nonce := uint64(0); nonce < 100; nonce++ {
		sid := deriveFixture(nonce)
		if seen[sid] {
			t.Fatalf("nonce %d collided with an earlier derivation", nonce)
		}
		seen[sid] = true
	}
}

func TestDeriveFieldSensitivity(t *testing.T) {
	base := deriveFixture(1)

	tests := []struct {
		name string
		got  id.SubscriptionID
	}{
		{"payer", id.Derive("payer-x", "payee-b", "asset-t", 3, 1, 0, 30, 1790000010, nil, 1)},
		{"payee", id.Derive("payer-a", "payee-x", "asset-t", 3, 1, 0, 30, 1790000010, nil, 1)},
		{"asset", id.Derive("payer-a", "payee-b", "asset-x", 3, 1, 0, 30, 1790000010, nil, 1)},
		{"amount_initial", id.Derive("payer-a", "payee-b", "asset-t", 4, 1, 0, 30, 1790000010, nil, 1)},
		{"amount_recurring", id.Derive("payer-a", "payee-b", "asset-t", 3, 2, 0, 30, 1790000010, nil, 1)},
		{"period_type", id.Derive("payer-a", "payee-b", "asset-t", 3, 1, 1, 30, 1790000010, nil, 1)},
		{"multiplier", id.Derive("payer-a", "payee-b", "asset-t", 3, 1, 0, 31, 1790000010, nil, 1)},
		{"start_time", id.Derive("payer-a", "payee-b", "asset-t", 3, 1, 0, 30, 1790000011, nil, 1)},
		{"annotation", id.Derive("payer-a", "payee-b", "asset-t", 3, 1, 0, 30, 1790000010, []byte("x"), 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got == base {
				t.Errorf("changing %s did not change the derived id", tt.name)
			}
		})
	}
}

func TestDeriveBoundaryConfusion(t *testing.T) {
	// Length prefixing keeps shifted field boundaries apart.
	a := id.Derive("ab", "c", "asset-t", 3, 1, 0, 30, 1790000010, nil, 1)
	b := id.Derive("a", "bc", "asset-t", 3, 1, 0, 30, 1790000010, nil, 1)
	if a == b {
		t.Error("field boundary shift produced the same id")
	}
}

func TestSubscriptionIDString(t *testing.T) {
	sid := deriveFixture(1)
	s := sid.String()

	if len(s) != 66 {
		t.Errorf("id string length: got %d, want 66", len(s))
	}
	if !strings.HasPrefix(s, "0x") {
		t.Errorf("id string missing 0x prefix: %q", s)
	}
}

func TestSubscriptionIDRoundTrip(t *testing.T) {
	sid := deriveFixture(42)

	parsed, err := id.ParseSubscriptionID(sid.String())
	if err != nil {
		t.Fatal(err)
	}
	if parsed != sid {
		t.Errorf("round trip: got %s, want %s", parsed, sid)
	}

	text, err := sid.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var back id.SubscriptionID
	if err := back.UnmarshalText(text); err != nil {
		t.Fatal(err)
	}
	if back != sid {
		t.Errorf("text round trip: got %s, want %s", back, sid)
	}
}

func TestParseSubscriptionIDRejectsMalformed(t *testing.T) {
	tests := []string{
		"",
		"0x",
		"0x1234",
		"0x" + strings.Repeat("zz", 32),
		strings.Repeat("0", 65),
	}
	for _, in := range tests {
		if _, err := id.ParseSubscriptionID(in); err == nil {
			t.Errorf("ParseSubscriptionID(%q): expected error", in)
		}
	}
}

func TestAttemptID(t *testing.T) {
	a := id.NewAttemptID()
	if a.IsNil() {
		t.Fatal("expected non-nil attempt id")
	}
	if !strings.HasPrefix(a.String(), "satt_") {
		t.Errorf("expected satt_ prefix, got %q", a.String())
	}

	parsed, err := id.ParseAttemptID(a.String())
	if err != nil {
		t.Fatal(err)
	}
	if parsed.String() != a.String() {
		t.Errorf("round trip: got %s, want %s", parsed, a)
	}

	if _, err := id.ParseAttemptID("plan_01h2xcejqtf2nbrexx3vqjhp41"); err == nil {
		t.Error("expected error for wrong prefix")
	}
}
