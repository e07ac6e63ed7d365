// Package audithook bridges Recur lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// an audit backend directly. Callers inject a RecorderFunc adapter that
// bridges to their trail at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/recur/plugin"
	"github.com/xraph/recur/subscription"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                  = (*Extension)(nil)
	_ plugin.OnSubscriptionCreated   = (*Extension)(nil)
	_ plugin.OnSubscriptionCancelled = (*Extension)(nil)
	_ plugin.OnSettlement            = (*Extension)(nil)
	_ plugin.OnSettlementFailed      = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// It is defined locally so that the audit_hook package does not import
// a trail implementation directly — callers inject the concrete
// recorder at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Recur lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Subscription lifecycle hooks
// ──────────────────────────────────────────────────

// OnSubscriptionCreated implements plugin.OnSubscriptionCreated.
func (e *Extension) OnSubscriptionCreated(ctx context.Context, sub *subscription.Subscription) error {
	return e.record(ctx, ActionSubscriptionCreated, SeverityInfo, OutcomeSuccess,
		ResourceSubscription, sub.ID.String(), CategorySubscription, nil,
		"payer", string(sub.Payer),
		"payee", string(sub.Payee),
		"asset", string(sub.Asset),
		"amount_recurring", sub.AmountRecurring.Int64(),
		"period_type", string(sub.PeriodType),
		"period_multiplier", sub.PeriodMultiplier,
	)
}

// OnSubscriptionCancelled implements plugin.OnSubscriptionCancelled.
func (e *Extension) OnSubscriptionCancelled(ctx context.Context, sub *subscription.Subscription) error {
	return e.record(ctx, ActionSubscriptionCancelled, SeverityInfo, OutcomeSuccess,
		ResourceSubscription, sub.ID.String(), CategorySubscription, nil,
		"payer", string(sub.Payer),
		"payee", string(sub.Payee),
	)
}

// ──────────────────────────────────────────────────
// Settlement hooks
// ──────────────────────────────────────────────────

// OnSettlement implements plugin.OnSettlement.
func (e *Extension) OnSettlement(ctx context.Context, event plugin.SettlementEvent) error {
	return e.record(ctx, ActionSettlementSucceeded, SeverityInfo, OutcomeSuccess,
		ResourceSettlement, event.Attempt.String(), CategoryPayment, nil,
		"subscription_id", event.Subscription.String(),
		"kind", string(event.Kind),
		"payer", string(event.Payer),
		"payee", string(event.Payee),
		"asset", string(event.Asset),
		"amount", event.Amount.Int64(),
		"next_due", event.NextDue,
	)
}

// OnSettlementFailed implements plugin.OnSettlementFailed.
func (e *Extension) OnSettlementFailed(ctx context.Context, event plugin.SettlementEvent, err error) error {
	return e.record(ctx, ActionSettlementFailed, SeverityError, OutcomeFailure,
		ResourceSettlement, event.Attempt.String(), CategoryPayment, err,
		"subscription_id", event.Subscription.String(),
		"kind", string(event.Kind),
		"payer", string(event.Payer),
		"payee", string(event.Payee),
		"asset", string(event.Asset),
		"amount", event.Amount.Int64(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
