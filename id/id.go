// Package id defines identity types for Recur entities.
//
// Subscription identifiers are deterministic: a SHA-256 digest over
// the canonical byte encoding of every defining parameter plus a
// per-call creation nonce. Two otherwise-identical subscription
// requests therefore derive distinct ids, while the same parameters
// and nonce always derive the same id. The string form is 0x-prefixed
// lowercase hex, 66 characters for the 32-byte value.
//
// Settlement attempts use TypeID-based identifiers ("satt_" prefix):
// K-sortable, globally unique, URL-safe — suited to log and audit
// correlation where determinism is not wanted.
package id

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"go.jetify.com/typeid/v2"
)

// domainTag separates subscription-id digests from any other use of
// SHA-256 over similar field sets.
const domainTag = "recur.subscription.v1"

// SubscriptionID is the unique 32-byte identifier of a subscription.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type SubscriptionID [32]byte

// NilSubscription is the zero-value SubscriptionID.
var NilSubscription SubscriptionID

// Derive computes the subscription id for the given defining
// parameters and creation nonce. The encoding is canonical: every
// variable-length field is length-prefixed and every integer is
// fixed-width big-endian, so field boundaries can never be confused.
func Derive(
	payer, payee, asset string,
	amountInitial, amountRecurring int64,
	periodCode uint8,
	periodMultiplier uint32,
	startUnix int64,
	annotation []byte,
	nonce uint64,
) SubscriptionID {
	h := sha256.New()

	writeBytes := func(b []byte) {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(b)))
		h.Write(n[:])
		h.Write(b)
	}
	writeU64 := func(v uint64) {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], v)
		h.Write(n[:])
	}

	writeBytes([]byte(domainTag))
	writeBytes([]byte(payer))
	writeBytes([]byte(payee))
	writeBytes([]byte(asset))
	writeU64(uint64(amountInitial))
	writeU64(uint64(amountRecurring))
	h.Write([]byte{periodCode})
	writeU64(uint64(periodMultiplier))
	writeU64(uint64(startUnix))
	writeBytes(annotation)
	writeU64(nonce)

	var out SubscriptionID
	copy(out[:], h.Sum(nil))
	return out
}

// String returns the 0x-prefixed lowercase hex form (66 characters).
func (s SubscriptionID) String() string {
	return "0x" + hex.EncodeToString(s[:])
}

// Bytes returns a copy of the raw 32-byte value.
func (s SubscriptionID) Bytes() []byte {
	b := make([]byte, len(s))
	copy(b, s[:])
	return b
}

// IsNil returns true for the zero-value id.
func (s SubscriptionID) IsNil() bool { return s == NilSubscription }

// ParseSubscriptionID parses a 0x-prefixed hex subscription id.
func ParseSubscriptionID(str string) (SubscriptionID, error) {
	raw := strings.TrimPrefix(str, "0x")
	if len(raw) != 64 {
		return NilSubscription, fmt.Errorf("id: parse %q: want 64 hex chars, got %d", str, len(raw))
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return NilSubscription, fmt.Errorf("id: parse %q: %w", str, err)
	}
	var out SubscriptionID
	copy(out[:], b)
	return out, nil
}

// MustParseSubscriptionID is like ParseSubscriptionID but panics on
// error. Use for hardcoded id values.
func MustParseSubscriptionID(str string) SubscriptionID {
	parsed, err := ParseSubscriptionID(str)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", str, err))
	}
	return parsed
}

// MarshalText implements encoding.TextMarshaler.
func (s SubscriptionID) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SubscriptionID) UnmarshalText(b []byte) error {
	parsed, err := ParseSubscriptionID(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value implements driver.Valuer for database storage.
func (s SubscriptionID) Value() (driver.Value, error) {
	return s.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (s *SubscriptionID) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	case nil:
		*s = NilSubscription
		return nil
	}
	return fmt.Errorf("id: cannot scan %T into SubscriptionID", src)
}

// ──────────────────────────────────────────────────
// Settlement attempt identifiers
// ──────────────────────────────────────────────────

// PrefixAttempt is the TypeID prefix for settlement attempts.
const PrefixAttempt = "satt"

// AttemptID identifies a single settlement attempt (prefix: "satt").
type AttemptID struct {
	inner typeid.TypeID
	valid bool
}

// NewAttemptID generates a new globally unique settlement attempt id.
func NewAttemptID() AttemptID {
	tid, err := typeid.Generate(PrefixAttempt)
	if err != nil {
		panic(fmt.Sprintf("id: generate attempt id: %v", err))
	}
	return AttemptID{inner: tid, valid: true}
}

// ParseAttemptID parses a TypeID string (e.g.,
// "satt_01h2xcejqtf2nbrexx3vqjhp41") into an AttemptID.
func ParseAttemptID(s string) (AttemptID, error) {
	if s == "" {
		return AttemptID{}, fmt.Errorf("id: parse attempt id: empty string")
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return AttemptID{}, fmt.Errorf("id: parse attempt id %q: %w", s, err)
	}
	if tid.Prefix() != PrefixAttempt {
		return AttemptID{}, fmt.Errorf("id: expected prefix %q, got %q", PrefixAttempt, tid.Prefix())
	}
	return AttemptID{inner: tid, valid: true}, nil
}

// String returns the "satt_..." string form.
func (a AttemptID) String() string {
	if !a.valid {
		return ""
	}
	return a.inner.String()
}

// IsNil returns true for the zero-value AttemptID.
func (a AttemptID) IsNil() bool { return !a.valid }
