package recur

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/xraph/recur/gateway"
	"github.com/xraph/recur/id"
	"github.com/xraph/recur/period"
	"github.com/xraph/recur/plugin"
	"github.com/xraph/recur/store"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

// Engine is the recurring payment engine. It owns the subscription
// registry, derives ids, evaluates due dates, and settles payments by
// pulling funds through an external ledger gateway.
//
// State changes always commit to the registry before the gateway is
// called, so a reentrant call from inside a gateway Pull observes the
// advanced schedule and fails with ErrNotYetDue instead of double
// charging.
type Engine struct {
	store   store.Store
	gateway gateway.Gateway
	plugins *plugin.Registry
	logger  *slog.Logger
	locks   lockTable

	// Nonce counter for id derivation. Seeded randomly so two engines
	// sharing a registry do not walk the same derivation sequence.
	nonce atomic.Uint64

	// Configuration
	now           func() time.Time
	manager       types.Account
	rollbackOnErr bool

	closed atomic.Bool
}

// New creates a new Engine backed by the given registry and ledger
// gateway.
func New(s store.Store, g gateway.Gateway, opts ...Option) *Engine {
	e := &Engine{
		store:   s,
		gateway: g,
		plugins: plugin.NewRegistry(),
		logger:  slog.Default(),
		now:     time.Now,
	}
	e.nonce.Store(randomNonceSeed())

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithClock overrides the engine's time source. Used by tests and by
// hosts that supply a monotonic scheduler clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithManager designates an operator account that may cancel any
// subscription in addition to its payer.
func WithManager(account types.Account) Option {
	return func(e *Engine) {
		e.manager = account
	}
}

// WithRollbackOnPullFailure makes Settle restore the previous due date
// when the gateway pull fails, so the cycle can be retried. The default
// keeps the advanced schedule and skips the missed cycle.
func WithRollbackOnPullFailure() Option {
	return func(e *Engine) {
		e.rollbackOnErr = true
	}
}

// Start migrates the registry and initializes plugins.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	e.plugins.EmitInit(ctx, e)

	e.logger.Info("recur engine started",
		"plugins", e.plugins.Count(),
		"rollback_on_pull_failure", e.rollbackOnErr,
	)

	return nil
}

// Stop shuts down the engine. Further operations fail with
// ErrEngineClosed.
func (e *Engine) Stop() error {
	e.closed.Store(true)

	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// ──────────────────────────────────────────────────
// Subscription Lifecycle
// ──────────────────────────────────────────────────

// Create validates params, derives a deterministic subscription id,
// registers the record, and — when an initial amount is set — pulls the
// first payment. A failed initial pull leaves the record registered and
// returns it alongside an *InitialPullError.
func (e *Engine) Create(ctx context.Context, params subscription.Params) (*subscription.Subscription, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	now := e.now()
	if err := e.validateParams(params, now); err != nil {
		return nil, err
	}

	sub := &subscription.Subscription{
		Entity:           types.NewEntityAt(now),
		ID:               params.DeriveID(e.nonce.Add(1)),
		Payer:            params.Payer,
		Payee:            params.Payee,
		Asset:            params.Asset,
		AmountInitial:    params.AmountInitial,
		AmountRecurring:  params.AmountRecurring,
		PeriodType:       params.PeriodType,
		PeriodMultiplier: params.PeriodMultiplier,
		StartTime:        params.StartTime,
		NextPaymentTime:  params.StartTime,
		Status:           subscription.StatusActive,
		Annotation:       params.Annotation,
	}

	if err := e.store.Insert(ctx, sub); err != nil {
		if errors.Is(err, ErrDuplicateID) {
			// Never overwrite; a collision surfaces to the caller.
			return nil, fmt.Errorf("%w: %s: %w", ErrIdentityCollision, sub.ID, err)
		}
		return nil, err
	}

	e.logger.Info("subscription created",
		"subscription_id", sub.ID.String(),
		"payer", sub.Payer,
		"payee", sub.Payee,
		"next_payment_time", sub.NextPaymentTime,
	)

	e.plugins.EmitSubscriptionCreated(ctx, sub)

	if sub.AmountInitial > 0 {
		if err := e.pull(ctx, sub, plugin.SettlementInitial, sub.AmountInitial, sub.NextPaymentTime, time.Time{}); err != nil {
			return sub, &InitialPullError{Err: err}
		}
	}

	return sub, nil
}

// Get retrieves a subscription by id. Cancelled records remain
// queryable.
func (e *Engine) Get(ctx context.Context, subID id.SubscriptionID) (*subscription.Subscription, error) {
	return e.store.Get(ctx, subID)
}

// List returns subscriptions matching the given filters.
func (e *Engine) List(ctx context.Context, opts subscription.ListOpts) ([]*subscription.Subscription, error) {
	return e.store.List(ctx, opts)
}

// Cancel terminates a subscription. Only the payer — or the engine's
// manager account, when one is configured — may cancel. Cancellation is
// terminal: the record stays queryable but never settles again.
func (e *Engine) Cancel(ctx context.Context, subID id.SubscriptionID, caller types.Account) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	unlock := e.locks.lock(subID)
	defer unlock()

	sub, err := e.store.Get(ctx, subID)
	if err != nil {
		return err
	}

	if caller != sub.Payer && (e.manager == "" || caller != e.manager) {
		return ErrUnauthorized
	}
	if !sub.IsActive() {
		return ErrAlreadyCancelled
	}

	now := e.now()
	if err := e.store.SetStatus(ctx, subID, subscription.StatusActive, subscription.StatusCancelled, now); err != nil {
		return err
	}

	sub.Status = subscription.StatusCancelled
	sub.CancelledAt = &now
	sub.UpdatedAt = now

	e.logger.Info("subscription cancelled",
		"subscription_id", subID.String(),
		"caller", caller,
	)

	e.plugins.EmitSubscriptionCancelled(ctx, sub)
	return nil
}

// ──────────────────────────────────────────────────
// Settlement
// ──────────────────────────────────────────────────

// PaymentDue reports whether a payment can be collected right now.
// Cancelled subscriptions are never due; an unknown id is a hard error,
// never a false.
func (e *Engine) PaymentDue(ctx context.Context, subID id.SubscriptionID) (bool, error) {
	sub, err := e.store.Get(ctx, subID)
	if err != nil {
		return false, err
	}
	return sub.DueAt(e.now()), nil
}

// Settle collects one due payment and advances the schedule by exactly
// one period, anchored on the previous due date so cadence never
// drifts. The schedule advance commits to the registry before the
// gateway pull; on pull failure the advanced schedule stands (the cycle
// is skipped) unless WithRollbackOnPullFailure was set, in which case
// the previous due date is restored for retry.
//
// Returns the new next payment time on success.
func (e *Engine) Settle(ctx context.Context, subID id.SubscriptionID) (time.Time, error) {
	if e.closed.Load() {
		return time.Time{}, ErrEngineClosed
	}

	unlock := e.locks.lock(subID)

	sub, err := e.store.Get(ctx, subID)
	if err != nil {
		unlock()
		return time.Time{}, err
	}
	if !sub.IsActive() {
		unlock()
		return time.Time{}, ErrSubscriptionCancelled
	}

	now := e.now()
	if now.Before(sub.NextPaymentTime) {
		unlock()
		return time.Time{}, ErrNotYetDue
	}

	prevDue := sub.NextPaymentTime
	nextDue, err := period.Advance(prevDue, sub.PeriodType, sub.PeriodMultiplier)
	if err != nil {
		unlock()
		return time.Time{}, err
	}

	// Effects before interactions: commit the advanced schedule, then
	// release the lock, then call the gateway. A reentrant settle from
	// inside the pull sees the new due date and stops at ErrNotYetDue.
	if err := e.store.UpdateSchedule(ctx, subID, prevDue, nextDue); err != nil {
		unlock()
		if errors.Is(err, ErrScheduleConflict) {
			// Another settler won the cycle between our read and write.
			return time.Time{}, ErrNotYetDue
		}
		return time.Time{}, err
	}
	unlock()

	if err := e.pull(ctx, sub, plugin.SettlementRecurring, sub.AmountRecurring, prevDue, nextDue); err != nil {
		if e.rollbackOnErr {
			e.rollbackSchedule(ctx, subID, prevDue, nextDue)
		}
		return time.Time{}, err
	}

	return nextDue, nil
}

// Preflight reports whether the payer currently holds the balance and
// allowance to cover the next recurring payment. Advisory only; the
// gateway remains the source of truth at settlement time.
func (e *Engine) Preflight(ctx context.Context, subID id.SubscriptionID) (*PreflightReport, error) {
	sub, err := e.store.Get(ctx, subID)
	if err != nil {
		return nil, err
	}

	balance, err := e.gateway.BalanceOf(ctx, sub.Asset, sub.Payer)
	if err != nil {
		return nil, err
	}
	allowance, err := e.gateway.Allowance(ctx, sub.Asset, sub.Payer)
	if err != nil {
		return nil, err
	}

	return &PreflightReport{
		Due:       sub.DueAt(e.now()),
		Amount:    sub.AmountRecurring,
		Balance:   balance,
		Allowance: allowance,
		Covered:   balance >= sub.AmountRecurring && allowance >= sub.AmountRecurring,
	}, nil
}

// PreflightReport summarizes the payer's funding position for the next
// recurring payment of a subscription.
type PreflightReport struct {
	Due       bool         `json:"due"`
	Amount    types.Amount `json:"amount"`
	Balance   types.Amount `json:"balance"`
	Allowance types.Amount `json:"allowance"`
	Covered   bool         `json:"covered"`
}

// ──────────────────────────────────────────────────
// Internal
// ──────────────────────────────────────────────────

// pull executes one gateway transfer and emits the settlement hooks.
// Must not be called while holding the subscription's lock.
func (e *Engine) pull(ctx context.Context, sub *subscription.Subscription, kind plugin.SettlementKind, amount types.Amount, prevDue, nextDue time.Time) error {
	attempt := id.NewAttemptID()
	start := time.Now()

	event := plugin.SettlementEvent{
		Attempt:      attempt,
		Subscription: sub.ID,
		Kind:         kind,
		Payer:        sub.Payer,
		Payee:        sub.Payee,
		Asset:        sub.Asset,
		Amount:       amount,
		PreviousDue:  prevDue,
		NextDue:      nextDue,
		At:           e.now(),
	}

	if err := e.gateway.Pull(ctx, sub.Asset, sub.Payer, sub.Payee, amount); err != nil {
		e.logger.Warn("settlement pull failed",
			"subscription_id", sub.ID.String(),
			"attempt_id", attempt.String(),
			"kind", string(kind),
			"amount", int64(amount),
			"error", err,
		)
		e.plugins.EmitSettlementFailed(ctx, event, err)
		return err
	}

	event.Elapsed = time.Since(start)

	e.logger.Info("settlement pulled",
		"subscription_id", sub.ID.String(),
		"attempt_id", attempt.String(),
		"kind", string(kind),
		"amount", int64(amount),
		"next_payment_time", nextDue,
	)

	e.plugins.EmitSettlement(ctx, event)
	return nil
}

// rollbackSchedule restores the previous due date after a failed pull.
// A conflict means another writer moved the cursor meanwhile; the newer
// state wins and the rollback is dropped.
func (e *Engine) rollbackSchedule(ctx context.Context, subID id.SubscriptionID, prevDue, nextDue time.Time) {
	unlock := e.locks.lock(subID)
	defer unlock()

	if err := e.store.UpdateSchedule(ctx, subID, nextDue, prevDue); err != nil {
		e.logger.Warn("schedule rollback skipped",
			"subscription_id", subID.String(),
			"error", err,
		)
	}
}

func (e *Engine) validateParams(params subscription.Params, now time.Time) error {
	if params.Payer == "" || params.Payee == "" {
		return fmt.Errorf("%w: payer and payee required", ErrInvalidParameters)
	}
	if params.Asset == "" {
		return fmt.Errorf("%w: asset required", ErrInvalidParameters)
	}
	if !params.PeriodType.Valid() {
		return ErrInvalidPeriodType
	}
	if params.PeriodMultiplier == 0 {
		return fmt.Errorf("%w: zero period multiplier", ErrInvalidParameters)
	}
	if params.AmountRecurring <= 0 {
		return ErrZeroRecurringAmount
	}
	if params.AmountInitial < 0 {
		return fmt.Errorf("%w: negative initial amount", ErrInvalidParameters)
	}
	if params.StartTime.Before(now) {
		return ErrStartTimeInPast
	}

	// Reject cadences that can never advance.
	if _, err := period.CycleLength(params.PeriodType, params.PeriodMultiplier); err != nil {
		return err
	}

	return nil
}

func randomNonceSeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.BigEndian.Uint64(buf[:])
}
