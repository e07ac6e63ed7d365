// Package recur provides a pull-based recurring payment engine for Go applications.
//
// Recur is designed as a library, not a service. Import it directly into your Go
// application and wire it to your asset ledger. It provides:
//
//   - Deterministic subscription identities derived from the defining parameters
//   - Drift-free period arithmetic anchored on the original due date
//   - Settlement ordered so registry effects commit before any ledger call
//   - Double-settlement protection under concurrent and reentrant callers
//   - Pluggable registries (memory, SQLite, Postgres, MongoDB)
//   - Lifecycle hooks for metrics, auditing, and notifications
//
// # Quick Start
//
// Create an engine with your preferred registry and a gateway into your
// asset ledger:
//
//	import (
//	    "github.com/xraph/recur"
//	    "github.com/xraph/recur/gateway"
//	    "github.com/xraph/recur/store/postgres"
//	)
//
//	// Initialize registry (db is a *grove.DB opened with the pg driver)
//	st := postgres.New(db)
//
//	// Create engine
//	e := recur.New(st, myGateway)
//
//	// Start the engine (runs migrations, initializes plugins)
//	if err := e.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer e.Stop()
//
// # Core Concepts
//
// A subscription is a standing authorization to pull a fixed amount of
// one asset from a payer to a payee on a fixed cadence:
//
//	sub, err := e.Create(ctx, subscription.Params{
//	    Payer:            "acct_payer",
//	    Payee:            "acct_merchant",
//	    Asset:            "usd",
//	    AmountRecurring:  999,
//	    PeriodType:       period.Month,
//	    PeriodMultiplier: 1,
//	    StartTime:        time.Now().Add(time.Minute),
//	})
//
// The id is derived from the parameters themselves plus a nonce, so the
// same request never silently overwrites an existing record.
//
// Settlement is driven from outside: anyone may ask whether a payment
// is due and trigger collection, but funds only ever move along the
// authorized payer-to-payee edge:
//
//	due, err := e.PaymentDue(ctx, sub.ID)
//	if due {
//	    next, err := e.Settle(ctx, sub.ID)
//	}
//
// Each Settle advances the schedule by exactly one period anchored on
// the previous due date, so late collection never shifts the cadence.
// Cancellation is terminal and restricted to the payer (or a configured
// manager account); cancelled records stay queryable for audit.
//
// # Registries
//
// The engine persists subscriptions through the store.Store interface.
// Four registries ship with the module: an in-memory map for tests and
// embedded use, and SQLite, Postgres, and MongoDB registries built on
// grove. All registries enforce the same compare-and-swap schedule
// cursor, so concurrent settlers across processes cannot double charge.
//
// # Plugins
//
// Plugins observe the engine through optional interfaces: OnInit,
// OnShutdown, OnSubscriptionCreated, OnSubscriptionCancelled,
// OnSettlement, and OnSettlementFailed. Register them at construction:
//
//	e := recur.New(st, gw,
//	    recur.WithPlugin(metricsPlugin),
//	    recur.WithPlugin(auditPlugin),
//	)
package recur
