package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	recur "github.com/xraph/recur"
	"github.com/xraph/recur/period"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

func newRecord(t *testing.T, nonce uint64, start time.Time) *subscription.Subscription {
	t.Helper()

	params := subscription.Params{
		Payer:            "payer-a",
		Payee:            "payee-b",
		Asset:            "asset-t",
		AmountInitial:    3,
		AmountRecurring:  1,
		PeriodType:       period.Day,
		PeriodMultiplier: 30,
		StartTime:        start,
	}

	return &subscription.Subscription{
		Entity:           types.NewEntity(),
		ID:               params.DeriveID(nonce),
		Payer:            params.Payer,
		Payee:            params.Payee,
		Asset:            params.Asset,
		AmountInitial:    params.AmountInitial,
		AmountRecurring:  params.AmountRecurring,
		PeriodType:       params.PeriodType,
		PeriodMultiplier: params.PeriodMultiplier,
		StartTime:        start,
		NextPaymentTime:  start,
		Status:           subscription.StatusActive,
	}
}

func TestInsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := New()
	start := time.Now().UTC().Truncate(time.Second)
	rec := newRecord(t, 1, start)

	if err := s.Insert(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != rec.ID || !got.NextPaymentTime.Equal(start) {
		t.Errorf("got %+v", got)
	}

	// Mutating the returned copy must not touch registry state.
	got.Status = subscription.StatusCancelled
	again, _ := s.Get(ctx, rec.ID)
	if again.Status != subscription.StatusActive {
		t.Error("registry state leaked through Get")
	}
}

func TestInsertDuplicateFailsClosed(t *testing.T) {
	ctx := context.Background()
	s := New()
	start := time.Now().UTC()
	rec := newRecord(t, 1, start)

	if err := s.Insert(ctx, rec); err != nil {
		t.Fatal(err)
	}

	dupe := newRecord(t, 1, start)
	dupe.AmountRecurring = 99 // would overwrite if duplicates were allowed
	if err := s.Insert(ctx, dupe); !errors.Is(err, recur.ErrDuplicateID) {
		t.Fatalf("got %v, want ErrDuplicateID", err)
	}

	got, _ := s.Get(ctx, rec.ID)
	if got.AmountRecurring != 1 {
		t.Error("duplicate insert overwrote the existing record")
	}
}

func TestGetUnknown(t *testing.T) {
	s := New()
	unknown := newRecord(t, 9, time.Now()).ID

	if _, err := s.Get(context.Background(), unknown); !errors.Is(err, recur.ErrUnknownSubscription) {
		t.Errorf("got %v, want ErrUnknownSubscription", err)
	}
}

func TestUpdateScheduleCAS(t *testing.T) {
	ctx := context.Background()
	s := New()
	start := time.Now().UTC().Truncate(time.Second)
	rec := newRecord(t, 1, start)
	if err := s.Insert(ctx, rec); err != nil {
		t.Fatal(err)
	}

	next := start.Add(30 * 24 * time.Hour)
	if err := s.UpdateSchedule(ctx, rec.ID, start, next); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Get(ctx, rec.ID)
	if !got.NextPaymentTime.Equal(next) {
		t.Errorf("cursor: got %v, want %v", got.NextPaymentTime, next)
	}

	// Same expected cursor again: the CAS must miss.
	if err := s.UpdateSchedule(ctx, rec.ID, start, next.Add(time.Hour)); !errors.Is(err, recur.ErrScheduleConflict) {
		t.Errorf("got %v, want ErrScheduleConflict", err)
	}

	// Unknown id is a hard failure.
	other := newRecord(t, 2, start)
	if err := s.UpdateSchedule(ctx, other.ID, start, next); !errors.Is(err, recur.ErrUnknownSubscription) {
		t.Errorf("got %v, want ErrUnknownSubscription", err)
	}
}

func TestSetStatusTerminal(t *testing.T) {
	ctx := context.Background()
	s := New()
	start := time.Now().UTC()
	rec := newRecord(t, 1, start)
	if err := s.Insert(ctx, rec); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	if err := s.SetStatus(ctx, rec.ID, subscription.StatusActive, subscription.StatusCancelled, now); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Get(ctx, rec.ID)
	if got.Status != subscription.StatusCancelled {
		t.Errorf("status: got %s", got.Status)
	}
	if got.CancelledAt == nil {
		t.Error("CancelledAt not recorded")
	}

	// Repeat cancel fails; schedule updates fail too.
	if err := s.SetStatus(ctx, rec.ID, subscription.StatusActive, subscription.StatusCancelled, now); !errors.Is(err, recur.ErrAlreadyCancelled) {
		t.Errorf("got %v, want ErrAlreadyCancelled", err)
	}
	if err := s.UpdateSchedule(ctx, rec.ID, start, start.Add(time.Hour)); !errors.Is(err, recur.ErrAlreadyCancelled) {
		t.Errorf("got %v, want ErrAlreadyCancelled", err)
	}
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	s := New()
	start := time.Now().UTC()

	a := newRecord(t, 1, start)
	b := newRecord(t, 2, start)
	b.Payer = "payer-z"
	c := newRecord(t, 3, start)
	if err := s.Insert(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(ctx, b); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(ctx, c); err != nil {
		t.Fatal(err)
	}
	if err := s.SetStatus(ctx, c.ID, subscription.StatusActive, subscription.StatusCancelled, start); err != nil {
		t.Fatal(err)
	}

	all, err := s.List(ctx, subscription.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("all: got %d records", len(all))
	}

	byPayer, _ := s.List(ctx, subscription.ListOpts{Payer: "payer-z"})
	if len(byPayer) != 1 || byPayer[0].ID != b.ID {
		t.Errorf("payer filter: got %d records", len(byPayer))
	}

	cancelled, _ := s.List(ctx, subscription.ListOpts{Status: subscription.StatusCancelled})
	if len(cancelled) != 1 || cancelled[0].ID != c.ID {
		t.Errorf("status filter: got %d records", len(cancelled))
	}
}
