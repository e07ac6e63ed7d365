package recur_test

import (
	"context"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/recur"
	"github.com/xraph/recur/gateway"
	"github.com/xraph/recur/period"
	"github.com/xraph/recur/store/memory"
	"github.com/xraph/recur/subscription"
)

// TestDocumentationExamples verifies that all examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from README
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create registry (memory for demo, use PostgreSQL in production)
		st := memory.New()

		// Gateway into the asset ledger (in-memory for demo)
		ledger := gateway.NewMemoryLedger()
		ledger.Mint("usd", "acct_payer", 10_000)
		ledger.Approve("usd", "acct_payer", 10_000)

		// Initialize the engine
		e := recur.New(st, ledger,
			recur.WithLogger(slog.Default()),
			recur.WithManager("acct_ops"),
		)

		// Start the engine
		ctx := context.Background()
		if err := e.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer e.Stop()

		// Create a subscription: $9.99 per month, first charge $19.99
		sub, err := e.Create(ctx, subscription.Params{
			Payer:            "acct_payer",
			Payee:            "acct_merchant",
			Asset:            "usd",
			AmountInitial:    1999,
			AmountRecurring:  999,
			PeriodType:       period.Month,
			PeriodMultiplier: 1,
			StartTime:        time.Now().Add(time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}

		log.Printf("subscription %s, next payment %s\n", sub.ID, sub.NextPaymentTime)

		// Anyone may check whether a payment is due and trigger
		// collection; funds only move payer to payee.
		due, err := e.PaymentDue(ctx, sub.ID)
		if err != nil {
			t.Fatal(err)
		}
		if due {
			next, err := e.Settle(ctx, sub.ID)
			if err != nil {
				t.Fatal(err)
			}
			log.Printf("settled, next payment %s\n", next)
		}

		// Check the payer's funding position ahead of the next cycle
		report, err := e.Preflight(ctx, sub.ID)
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("covered=%v balance=%d allowance=%d\n", report.Covered, report.Balance, report.Allowance)

		// Only the payer (or the manager account) may cancel
		if err := e.Cancel(ctx, sub.ID, "acct_payer"); err != nil {
			t.Fatal(err)
		}
	})

	// Test id parsing examples
	t.Run("IDExamples", func(t *testing.T) {
		sub := subscription.Params{
			Payer:            "acct_payer",
			Payee:            "acct_merchant",
			Asset:            "usd",
			AmountRecurring:  999,
			PeriodType:       period.Week,
			PeriodMultiplier: 2,
			StartTime:        time.Unix(1_900_000_000, 0),
		}

		// Derivation is deterministic for identical inputs
		a := sub.DeriveID(1)
		b := sub.DeriveID(1)
		if a != b {
			t.Fatal("derivation not deterministic")
		}

		// Ids round-trip through their hex form
		parsed, err := recur.ParseSubscriptionID(a.String())
		if err != nil {
			t.Fatal(err)
		}
		if parsed != a {
			t.Fatal("id did not round-trip")
		}
	})
}
