// Package observability provides a metrics extension for Recur that records
// lifecycle event counts through a pluggable MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/recur/plugin"
	"github.com/xraph/recur/subscription"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                  = (*MetricsExtension)(nil)
	_ plugin.OnInit                  = (*MetricsExtension)(nil)
	_ plugin.OnSubscriptionCreated   = (*MetricsExtension)(nil)
	_ plugin.OnSubscriptionCancelled = (*MetricsExtension)(nil)
	_ plugin.OnSettlement            = (*MetricsExtension)(nil)
	_ plugin.OnSettlementFailed      = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Recur plugin to automatically track payment metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Subscription metrics
	SubscriptionCreated   Counter
	SubscriptionCancelled Counter

	// Settlement metrics
	SettlementSuccess     Counter
	SettlementFailure     Counter
	InitialPullSuccess    Counter
	InitialPullFailure    Counter
	SettlementAmount      Histogram
	SettlementPullLatency Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Subscription metrics
		SubscriptionCreated:   factory.Counter("recur.subscription.created"),
		SubscriptionCancelled: factory.Counter("recur.subscription.cancelled"),

		// Settlement metrics
		SettlementSuccess:     factory.Counter("recur.settlement.success"),
		SettlementFailure:     factory.Counter("recur.settlement.failure"),
		InitialPullSuccess:    factory.Counter("recur.settlement.initial.success"),
		InitialPullFailure:    factory.Counter("recur.settlement.initial.failure"),
		SettlementAmount:      factory.Histogram("recur.settlement.amount"),
		SettlementPullLatency: factory.Histogram("recur.settlement.pull.latency_ms"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ any) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Subscription lifecycle hooks
// ──────────────────────────────────────────────────

// OnSubscriptionCreated implements plugin.OnSubscriptionCreated.
func (m *MetricsExtension) OnSubscriptionCreated(_ context.Context, _ *subscription.Subscription) error {
	m.SubscriptionCreated.Inc()
	return nil
}

// OnSubscriptionCancelled implements plugin.OnSubscriptionCancelled.
func (m *MetricsExtension) OnSubscriptionCancelled(_ context.Context, _ *subscription.Subscription) error {
	m.SubscriptionCancelled.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Settlement hooks
// ──────────────────────────────────────────────────

// OnSettlement implements plugin.OnSettlement.
func (m *MetricsExtension) OnSettlement(_ context.Context, event plugin.SettlementEvent) error {
	if event.Kind == plugin.SettlementInitial {
		m.InitialPullSuccess.Inc()
	} else {
		m.SettlementSuccess.Inc()
	}
	m.SettlementAmount.Observe(float64(event.Amount))
	m.SettlementPullLatency.Observe(float64(event.Elapsed.Milliseconds()))
	return nil
}

// OnSettlementFailed implements plugin.OnSettlementFailed.
func (m *MetricsExtension) OnSettlementFailed(_ context.Context, event plugin.SettlementEvent, _ error) error {
	if event.Kind == plugin.SettlementInitial {
		m.InitialPullFailure.Inc()
	} else {
		m.SettlementFailure.Inc()
	}
	return nil
}
