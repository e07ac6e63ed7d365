// Package plugin provides an extensible hook system for Recur.
// Plugins can observe engine lifecycle events — subscription
// creation, settlement, cancellation — to extend functionality
// without living inside the settlement path.
package plugin

import (
	"context"
	"time"

	"github.com/xraph/recur/id"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// SettlementKind distinguishes the one-off initial payment from a
// recurring cycle settlement.
type SettlementKind string

const (
	SettlementInitial   SettlementKind = "initial"
	SettlementRecurring SettlementKind = "recurring"
)

// SettlementEvent describes one settlement attempt against the asset
// ledger. NextDue is zero for initial payments, which do not touch
// the schedule cursor.
type SettlementEvent struct {
	Attempt      id.AttemptID
	Subscription id.SubscriptionID
	Kind         SettlementKind
	Payer        types.Account
	Payee        types.Account
	Asset        types.AssetRef
	Amount       types.Amount
	PreviousDue  time.Time
	NextDue      time.Time
	At           time.Time
	Elapsed      time.Duration
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine any) error
}

// OnShutdown is called when the engine is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Subscription lifecycle hooks
// ──────────────────────────────────────────────────

// OnSubscriptionCreated is called after a subscription record is
// durably inserted. The record carries every defining parameter, so
// external indexers can reconstruct subscription state without
// re-deriving it.
type OnSubscriptionCreated interface {
	Plugin
	OnSubscriptionCreated(ctx context.Context, sub *subscription.Subscription) error
}

// OnSubscriptionCancelled is called when a subscription reaches its
// terminal state.
type OnSubscriptionCancelled interface {
	Plugin
	OnSubscriptionCancelled(ctx context.Context, sub *subscription.Subscription) error
}

// ──────────────────────────────────────────────────
// Settlement hooks
// ──────────────────────────────────────────────────

// OnSettlement is called after a settlement pull succeeds. For
// recurring settlements the schedule cursor has already advanced to
// event.NextDue by the time the hook fires.
type OnSettlement interface {
	Plugin
	OnSettlement(ctx context.Context, event SettlementEvent) error
}

// OnSettlementFailed is called when a settlement pull fails at the
// ledger boundary. Under the default fail-forward policy the schedule
// cursor stays advanced; the missed cycle is skipped.
type OnSettlementFailed interface {
	Plugin
	OnSettlementFailed(ctx context.Context, event SettlementEvent, err error) error
}
