package recur

import (
	"errors"
	"fmt"

	"github.com/xraph/recur/gateway"
	"github.com/xraph/recur/types"
)

// Sentinel errors for common failure scenarios. Every engine operation
// reports failures as explicit error values; the engine never retries
// internally.
var (
	// Validation errors — caller input is malformed, rejected before
	// any state change. All match ErrInvalidParameters via errors.Is.
	ErrInvalidParameters   = errors.New("recur: invalid parameters")
	ErrStartTimeInPast     = fmt.Errorf("%w: start time in the past", ErrInvalidParameters)
	ErrInvalidPeriodType   = fmt.Errorf("%w: invalid period type", ErrInvalidParameters)
	ErrZeroRecurringAmount = fmt.Errorf("%w: zero recurring amount", ErrInvalidParameters)

	// Lookup errors — the id does not exist. Always a hard failure,
	// never coerced to a boolean default.
	ErrUnknownSubscription = errors.New("recur: unknown subscription")

	// State errors — operation valid in form but invalid given the
	// current record state. Side-effect free.
	ErrSubscriptionCancelled = errors.New("recur: subscription is cancelled")
	ErrNotYetDue             = errors.New("recur: payment not yet due")
	ErrAlreadyCancelled      = errors.New("recur: subscription already cancelled")
	ErrUnauthorized          = errors.New("recur: unauthorized")

	// Identity errors — fatal, never silently resolved by overwrite.
	ErrDuplicateID       = errors.New("recur: duplicate subscription id")
	ErrIdentityCollision = errors.New("recur: subscription id collision")

	// Registry errors.
	ErrScheduleConflict = errors.New("recur: schedule cursor changed concurrently")

	// Engine lifecycle errors.
	ErrEngineClosed = errors.New("recur: engine is closed")
)

// ErrArithmeticOverflow reports period or amount arithmetic that would
// exceed the representable range. Overflow is checked and reported,
// never wrapped or truncated.
var ErrArithmeticOverflow = types.ErrOverflow

// Settlement errors re-exported from the gateway boundary so callers
// can match on recur.Err* without importing the gateway package. A
// failed pull never rolls back an already-advanced schedule unless
// rollback-on-failure was configured explicitly.
var (
	ErrInsufficientAllowance = gateway.ErrInsufficientAllowance
	ErrInsufficientBalance   = gateway.ErrInsufficientBalance
	ErrLedgerFailure         = gateway.ErrLedgerFailure
)

// InitialPullError reports a failed initial settlement during Create.
// The subscription record exists and is Active with its schedule
// untouched; the caller may retry the transfer out-of-band, since
// re-deriving would produce a different id.
type InitialPullError struct {
	Err error
}

func (e *InitialPullError) Error() string {
	return fmt.Sprintf("recur: initial payment failed (subscription created): %v", e.Err)
}

func (e *InitialPullError) Unwrap() error { return e.Err }
