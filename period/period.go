// Package period implements recurrence arithmetic for subscription
// schedules: cycle lengths and due-date advancement.
//
// A cycle is defined by a period type and a positive multiplier.
// Advancing always starts from the schedule anchor, never from "now",
// so a late settlement keeps the next due date on the original
// cadence instead of resetting it to the settlement time.
package period

import (
	"errors"
	"fmt"
	"time"

	"github.com/xraph/recur/types"
)

// Type is the base unit of recurrence.
type Type string

const (
	Day   Type = "day"
	Week  Type = "week"
	Month Type = "month"
	Year  Type = "year"
)

// Wire codes match the original contract ABI encoding of period types.
const (
	CodeDay   uint8 = 0
	CodeWeek  uint8 = 1
	CodeMonth uint8 = 2
	CodeYear  uint8 = 3
)

// ErrInvalidType is returned for a period type outside the four
// recognized values.
var ErrInvalidType = errors.New("period: invalid period type")

// Seconds per base unit. Month and Year are calendar-approximate
// (30 and 365 days), matching the original schedule semantics.
const (
	secondsPerDay   = 86400
	secondsPerWeek  = 7 * secondsPerDay
	secondsPerMonth = 30 * secondsPerDay
	secondsPerYear  = 365 * secondsPerDay
)

// Valid reports whether t is one of the four recognized period types.
func (t Type) Valid() bool {
	switch t {
	case Day, Week, Month, Year:
		return true
	}
	return false
}

// Code returns the numeric wire code for t. It panics on an invalid
// type; validate at the boundary first.
func (t Type) Code() uint8 {
	switch t {
	case Day:
		return CodeDay
	case Week:
		return CodeWeek
	case Month:
		return CodeMonth
	case Year:
		return CodeYear
	}
	panic(fmt.Sprintf("period: code of invalid type %q", string(t)))
}

// String returns the period type name.
func (t Type) String() string { return string(t) }

// ParseType converts a period type name or numeric wire code ("0"-"3")
// into a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case string(Day), "0":
		return Day, nil
	case string(Week), "1":
		return Week, nil
	case string(Month), "2":
		return Month, nil
	case string(Year), "3":
		return Year, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// TypeFromCode converts a numeric wire code into a Type.
func TypeFromCode(code uint8) (Type, error) {
	switch code {
	case CodeDay:
		return Day, nil
	case CodeWeek:
		return Week, nil
	case CodeMonth:
		return Month, nil
	case CodeYear:
		return Year, nil
	}
	return "", fmt.Errorf("%w: code %d", ErrInvalidType, code)
}

// unitSeconds returns the base unit length of t in seconds.
func unitSeconds(t Type) (int64, error) {
	switch t {
	case Day:
		return secondsPerDay, nil
	case Week:
		return secondsPerWeek, nil
	case Month:
		return secondsPerMonth, nil
	case Year:
		return secondsPerYear, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidType, string(t))
}

// CycleLength returns the length of one cycle in seconds:
// the base unit of t multiplied by multiplier. Overflow is reported
// via types.ErrOverflow, never wrapped.
func CycleLength(t Type, multiplier uint32) (int64, error) {
	if multiplier == 0 {
		return 0, fmt.Errorf("period: zero multiplier")
	}
	unit, err := unitSeconds(t)
	if err != nil {
		return 0, err
	}
	return types.CheckedMul(unit, int64(multiplier))
}

// Duration returns the cycle length as a time.Duration. It fails with
// types.ErrOverflow for cycles beyond the Duration range (~292 years).
func Duration(t Type, multiplier uint32) (time.Duration, error) {
	secs, err := CycleLength(t, multiplier)
	if err != nil {
		return 0, err
	}
	nanos, err := types.CheckedMul(secs, int64(time.Second))
	if err != nil {
		return 0, err
	}
	return time.Duration(nanos), nil
}

// Advance computes the next due time from the current one:
// due + CycleLength(t, multiplier). The anchor is the current due
// time, not the caller's clock.
func Advance(due time.Time, t Type, multiplier uint32) (time.Time, error) {
	cycle, err := CycleLength(t, multiplier)
	if err != nil {
		return time.Time{}, err
	}
	next, err := types.CheckedAdd(due.Unix(), cycle)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(next, int64(due.Nanosecond())).UTC(), nil
}
