package subscription

import (
	"context"
	"time"

	"github.com/xraph/recur/id"
)

// Registry owns the durable map of subscription id to record. It is
// the only component that mutates NextPaymentTime or Status.
//
// Mutations on a single id must appear atomic with respect to
// concurrent callers. UpdateSchedule is a compare-and-set on the
// schedule cursor: it applies only if the stored cursor still equals
// expectNext, so the cursor is monotonically non-decreasing under any
// interleaving. Implementations report failures with the recur root
// sentinels (ErrDuplicateID, ErrUnknownSubscription,
// ErrAlreadyCancelled, ErrScheduleConflict).
type Registry interface {
	// Insert stores a new record, failing closed on an existing id.
	Insert(ctx context.Context, s *Subscription) error

	// Get returns the record for subID. Absence is a hard failure.
	Get(ctx context.Context, subID id.SubscriptionID) (*Subscription, error)

	// List returns records matching opts, cancelled ones included.
	List(ctx context.Context, opts ListOpts) ([]*Subscription, error)

	// UpdateSchedule advances the schedule cursor from expectNext to
	// newNext if the record is active and the cursor is unchanged.
	UpdateSchedule(ctx context.Context, subID id.SubscriptionID, expectNext, newNext time.Time) error

	// SetStatus transitions the record from one status to another at
	// the given instant. Cancelled is terminal.
	SetStatus(ctx context.Context, subID id.SubscriptionID, from, to Status, at time.Time) error
}
