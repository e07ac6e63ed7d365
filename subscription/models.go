// Package subscription defines the recurring pull-payment
// authorization record and its creation parameters.
package subscription

import (
	"time"

	"github.com/xraph/recur/id"
	"github.com/xraph/recur/period"
	"github.com/xraph/recur/types"
)

// Status is the lifecycle state of a subscription. Cancelled is
// terminal: a cancelled subscription stays queryable for audit but is
// permanently ineligible for settlement.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// Subscription is the sole persistent entity: a payer's standing
// authorization for a payee to pull a recurring amount from a
// fungible-asset ledger on a fixed cadence.
//
// Every field except NextPaymentTime and Status is immutable once the
// record is created. NextPaymentTime is the schedule cursor: it starts
// at StartTime and only ever moves forward, advanced by the engine
// after each successful settlement of a due cycle.
type Subscription struct {
	types.Entity
	ID               id.SubscriptionID `json:"id"`
	Payer            types.Account     `json:"payer"`
	Payee            types.Account     `json:"payee"`
	Asset            types.AssetRef    `json:"asset"`
	AmountInitial    types.Amount      `json:"amount_initial"`
	AmountRecurring  types.Amount      `json:"amount_recurring"`
	PeriodType       period.Type       `json:"period_type"`
	PeriodMultiplier uint32            `json:"period_multiplier"`
	StartTime        time.Time         `json:"start_time"`
	NextPaymentTime  time.Time         `json:"next_payment_time"`
	Status           Status            `json:"status"`
	CancelledAt      *time.Time        `json:"cancelled_at,omitempty"`
	Annotation       []byte            `json:"annotation,omitempty"`
}

// IsActive reports whether the subscription can still settle.
func (s *Subscription) IsActive() bool { return s.Status == StatusActive }

// DueAt reports whether a payment is due at the given instant.
func (s *Subscription) DueAt(now time.Time) bool {
	return s.IsActive() && !now.Before(s.NextPaymentTime)
}

// Params are the defining parameters of a subscription request.
// They feed both validation and deterministic id derivation.
type Params struct {
	Payer            types.Account
	Payee            types.Account
	Asset            types.AssetRef
	AmountInitial    types.Amount
	AmountRecurring  types.Amount
	PeriodType       period.Type
	PeriodMultiplier uint32
	StartTime        time.Time
	Annotation       []byte
}

// DeriveID computes the deterministic subscription id for these
// parameters and a creation nonce.
func (p Params) DeriveID(nonce uint64) id.SubscriptionID {
	return id.Derive(
		string(p.Payer),
		string(p.Payee),
		string(p.Asset),
		p.AmountInitial.Int64(),
		p.AmountRecurring.Int64(),
		p.PeriodType.Code(),
		p.PeriodMultiplier,
		p.StartTime.Unix(),
		p.Annotation,
		nonce,
	)
}

// ListOpts filter audit queries over the registry. Cancelled records
// remain listable.
type ListOpts struct {
	Payer  types.Account
	Payee  types.Account
	Status Status
	Limit  int
	Offset int
}
