package period

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/xraph/recur/types"
)

func TestCycleLength(t *testing.T) {
	tests := []struct {
		name       string
		ptype      Type
		multiplier uint32
		want       int64
	}{
		{"one day", Day, 1, 86400},
		{"thirty days", Day, 30, 30 * 86400},
		{"one week", Week, 1, 604800},
		{"two weeks", Week, 2, 1209600},
		{"one month", Month, 1, 30 * 86400},
		{"quarter", Month, 3, 90 * 86400},
		{"one year", Year, 1, 365 * 86400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CycleLength(tt.ptype, tt.multiplier)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCycleLengthRejectsInvalid(t *testing.T) {
	if _, err := CycleLength(Type("fortnight"), 1); !errors.Is(err, ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}
	if _, err := CycleLength(Day, 0); err == nil {
		t.Error("expected error for zero multiplier")
	}
}

func TestAdvanceKeepsCadence(t *testing.T) {
	anchor := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	next, err := Advance(anchor, Day, 30)
	if err != nil {
		t.Fatal(err)
	}
	if want := anchor.Add(30 * 24 * time.Hour); !next.Equal(want) {
		t.Errorf("got %v, want %v", next, want)
	}

	// Advancing twice from successive anchors lands on the original
	// cadence regardless of when the calls happen.
	again, err := Advance(next, Day, 30)
	if err != nil {
		t.Fatal(err)
	}
	if want := anchor.Add(60 * 24 * time.Hour); !again.Equal(want) {
		t.Errorf("got %v, want %v", again, want)
	}
}

func TestAdvanceOverflow(t *testing.T) {
	far := time.Unix(math.MaxInt64-100, 0)
	if _, err := Advance(far, Year, 1); !errors.Is(err, types.ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestDurationOverflow(t *testing.T) {
	// 400 years of nanoseconds exceeds time.Duration.
	if _, err := Duration(Year, 400); !errors.Is(err, types.ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
	d, err := Duration(Week, 2)
	if err != nil {
		t.Fatal(err)
	}
	if d != 14*24*time.Hour {
		t.Errorf("got %v", d)
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"day", Day}, {"0", Day},
		{"week", Week}, {"1", Week},
		{"month", Month}, {"2", Month},
		{"year", Year}, {"3", Year},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		if err != nil {
			t.Errorf("ParseType(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseType("4"); !errors.Is(err, ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}
}

func TestCodeRoundTrip(t *testing.T) {
	for _, ptype := range []Type{Day, Week, Month, Year} {
		got, err := TypeFromCode(ptype.Code())
		if err != nil {
			t.Fatalf("%s: %v", ptype, err)
		}
		if got != ptype {
			t.Errorf("round trip %s: got %s", ptype, got)
		}
	}
}
