package types

import (
	"errors"
	"math"
	"testing"
)

func TestAmountArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() (Amount, error)
		expected Amount
	}{
		{"Add", func() (Amount, error) { return Amount(100).Add(200) }, 300},
		{"Sub", func() (Amount, error) { return Amount(500).Sub(200) }, 300},
		{"Mul", func() (Amount, error) { return Amount(100).Mul(3) }, 300},
		{"Mul zero", func() (Amount, error) { return Amount(0).Mul(30) }, 0},
		{"Add negative", func() (Amount, error) { return Amount(100).Add(-250) }, -150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.op()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAmountOverflow(t *testing.T) {
	tests := []struct {
		name string
		op   func() (Amount, error)
	}{
		{"Add max", func() (Amount, error) { return Amount(math.MaxInt64).Add(1) }},
		{"Sub min", func() (Amount, error) { return Amount(math.MinInt64).Sub(1) }},
		{"Mul max", func() (Amount, error) { return Amount(math.MaxInt64).Mul(2) }},
		{"Mul min by -1", func() (Amount, error) { return Amount(math.MinInt64).Mul(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.op(); !errors.Is(err, ErrOverflow) {
				t.Errorf("expected ErrOverflow, got %v", err)
			}
		})
	}
}

func TestCheckedHelpers(t *testing.T) {
	if v, err := CheckedAdd(1, 2); err != nil || v != 3 {
		t.Errorf("CheckedAdd: got (%d, %v)", v, err)
	}
	if v, err := CheckedMul(7, 6); err != nil || v != 42 {
		t.Errorf("CheckedMul: got (%d, %v)", v, err)
	}
	if _, err := CheckedAdd(math.MaxInt64, 1); !errors.Is(err, ErrOverflow) {
		t.Errorf("CheckedAdd overflow: got %v", err)
	}
	if _, err := CheckedMul(math.MaxInt64, 2); !errors.Is(err, ErrOverflow) {
		t.Errorf("CheckedMul overflow: got %v", err)
	}
}
