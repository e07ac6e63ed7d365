package recur

import "github.com/xraph/recur/id"

// SubscriptionID is the deterministic identifier for a subscription.
type SubscriptionID = id.SubscriptionID

// AttemptID identifies a single settlement attempt.
type AttemptID = id.AttemptID

// Re-export id helpers so callers can parse ids without importing the
// id package.
var (
	ParseSubscriptionID = id.ParseSubscriptionID
	NewAttemptID        = id.NewAttemptID
)
