// Package types provides common types used across Recur.
package types

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is returned when integer arithmetic on amounts or
// schedule timestamps would exceed the representable range. Overflow
// is always reported, never wrapped or truncated.
var ErrOverflow = errors.New("types: arithmetic overflow")

// Amount is a quantity of a fungible asset in its smallest indivisible
// unit. All arithmetic is integer-only and overflow-checked.
type Amount int64

// Add returns m+other, or ErrOverflow.
func (m Amount) Add(other Amount) (Amount, error) {
	r, err := CheckedAdd(int64(m), int64(other))
	return Amount(r), err
}

// Sub returns m-other, or ErrOverflow.
func (m Amount) Sub(other Amount) (Amount, error) {
	if other == math.MinInt64 {
		return 0, ErrOverflow
	}
	return m.Add(-other)
}

// Mul returns m*qty, or ErrOverflow.
func (m Amount) Mul(qty int64) (Amount, error) {
	r, err := CheckedMul(int64(m), qty)
	return Amount(r), err
}

// IsZero returns true if the amount is zero.
func (m Amount) IsZero() bool { return m == 0 }

// IsPositive returns true if the amount is greater than zero.
func (m Amount) IsPositive() bool { return m > 0 }

// IsNegative returns true if the amount is less than zero.
func (m Amount) IsNegative() bool { return m < 0 }

// Int64 returns the amount as a plain int64.
func (m Amount) Int64() int64 { return int64(m) }

// String returns the decimal representation of the amount.
func (m Amount) String() string { return fmt.Sprintf("%d", int64(m)) }

// Account identifies a party on the external asset ledger (a payer or
// a payee). The engine treats it as opaque.
type Account string

// String returns the account identifier.
func (a Account) String() string { return string(a) }

// AssetRef identifies the ledger/asset a subscription draws from.
// The engine treats it as opaque.
type AssetRef string

// String returns the asset reference.
func (a AssetRef) String() string { return string(a) }

// CheckedAdd adds two int64 values, reporting ErrOverflow instead of
// wrapping.
func CheckedAdd(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, ErrOverflow
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// CheckedMul multiplies two int64 values, reporting ErrOverflow
// instead of wrapping.
func CheckedMul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	r := a * b
	if r/b != a || (a == -1 && b == math.MinInt64) {
		return 0, ErrOverflow
	}
	return r, nil
}
