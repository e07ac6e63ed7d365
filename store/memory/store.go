// Package memory provides an in-process registry backend for tests
// and development wiring.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	recur "github.com/xraph/recur"
	"github.com/xraph/recur/id"
	"github.com/xraph/recur/store"
	"github.com/xraph/recur/subscription"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store with a mutex-guarded map. Records are
// copied on the way in and out so callers can never mutate registry
// state behind the lock.
type Store struct {
	mu            sync.RWMutex
	subscriptions map[id.SubscriptionID]*subscription.Subscription
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		subscriptions: make(map[id.SubscriptionID]*subscription.Subscription),
	}
}

// Insert implements subscription.Registry. It fails closed on an
// existing id.
func (s *Store) Insert(_ context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[sub.ID]; exists {
		return recur.ErrDuplicateID
	}
	cp := *sub
	s.subscriptions[sub.ID] = &cp
	return nil
}

// Get implements subscription.Registry.
func (s *Store) Get(_ context.Context, subID id.SubscriptionID) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[subID]
	if !ok {
		return nil, recur.ErrUnknownSubscription
	}
	cp := *sub
	return &cp, nil
}

// List implements subscription.Registry. Cancelled records are
// included unless filtered out.
func (s *Store) List(_ context.Context, opts subscription.ListOpts) ([]*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*subscription.Subscription, 0)
	for _, sub := range s.subscriptions {
		if opts.Payer != "" && sub.Payer != opts.Payer {
			continue
		}
		if opts.Payee != "" && sub.Payee != opts.Payee {
			continue
		}
		if opts.Status != "" && sub.Status != opts.Status {
			continue
		}
		cp := *sub
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}
	return result[start:end], nil
}

// UpdateSchedule implements subscription.Registry. The cursor moves
// only if the record is active and still holds expectNext.
func (s *Store) UpdateSchedule(_ context.Context, subID id.SubscriptionID, expectNext, newNext time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[subID]
	if !ok {
		return recur.ErrUnknownSubscription
	}
	if sub.Status != subscription.StatusActive {
		return recur.ErrAlreadyCancelled
	}
	if !sub.NextPaymentTime.Equal(expectNext) {
		return recur.ErrScheduleConflict
	}

	sub.NextPaymentTime = newNext
	sub.Touch()
	return nil
}

// SetStatus implements subscription.Registry.
func (s *Store) SetStatus(_ context.Context, subID id.SubscriptionID, from, to subscription.Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[subID]
	if !ok {
		return recur.ErrUnknownSubscription
	}
	if sub.Status != from {
		return recur.ErrAlreadyCancelled
	}

	sub.Status = to
	if to == subscription.StatusCancelled {
		t := at.UTC()
		sub.CancelledAt = &t
	}
	sub.Touch()
	return nil
}

// Migrate implements store.Store. No-op for the memory backend.
func (s *Store) Migrate(context.Context) error { return nil }

// Ping implements store.Store.
func (s *Store) Ping(context.Context) error { return nil }

// Close implements store.Store.
func (s *Store) Close() error { return nil }
