package audithook

// Action constants for audit events.
const (
	// Subscription actions
	ActionSubscriptionCreated   = "subscription.created"
	ActionSubscriptionCancelled = "subscription.cancelled"

	// Settlement actions
	ActionSettlementSucceeded = "settlement.succeeded"
	ActionSettlementFailed    = "settlement.failed"
)

// Resource constants for audit events.
const (
	ResourceSubscription = "subscription"
	ResourceSettlement   = "settlement"
)

// Category constants for audit events.
const (
	CategorySubscription = "subscription"
	CategoryPayment      = "payment"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
