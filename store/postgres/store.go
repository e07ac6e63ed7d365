package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	recur "github.com/xraph/recur"
	"github.com/xraph/recur/id"
	recurstore "github.com/xraph/recur/store"
	"github.com/xraph/recur/subscription"
)

// compile-time interface check
var _ recurstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("recur/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("recur/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Subscription Registry ====================

func (s *Store) Insert(ctx context.Context, sub *subscription.Subscription) error {
	m := toSubscriptionModel(sub)
	res, err := s.pg.NewInsert(m).
		OnConflict("(id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("recur/postgres: insert subscription: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Fail closed: an existing record is never overwritten.
		return recur.ErrDuplicateID
	}
	return nil
}

func (s *Store) Get(ctx context.Context, subID id.SubscriptionID) (*subscription.Subscription, error) {
	m := new(subscriptionModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", subID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, recur.ErrUnknownSubscription
		}
		return nil, fmt.Errorf("recur/postgres: get subscription: %w", err)
	}
	return fromSubscriptionModel(m)
}

func (s *Store) List(ctx context.Context, opts subscription.ListOpts) ([]*subscription.Subscription, error) {
	var models []subscriptionModel
	q := s.pg.NewSelect(&models)

	if opts.Payer != "" {
		q = q.Where("payer = ?", string(opts.Payer))
	}
	if opts.Payee != "" {
		q = q.Where("payee = ?", string(opts.Payee))
	}
	if opts.Status != "" {
		q = q.Where("status = ?", string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("recur/postgres: list subscriptions: %w", err)
	}

	result := make([]*subscription.Subscription, len(models))
	for i := range models {
		sub, err := fromSubscriptionModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = sub
	}
	return result, nil
}

// UpdateSchedule advances the payment cursor with a compare-and-set on
// the current value, so concurrent settlers across processes cannot
// both claim the same cycle.
func (s *Store) UpdateSchedule(ctx context.Context, subID id.SubscriptionID, expectNext, newNext time.Time) error {
	res, err := s.pg.NewUpdate((*subscriptionModel)(nil)).
		Set("next_payment_time = ?", newNext.UTC()).
		Set("updated_at = ?", now()).
		Where("id = ?", subID.String()).
		Where("status = ?", string(subscription.StatusActive)).
		Where("next_payment_time = ?", expectNext.UTC()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("recur/postgres: update schedule: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return s.scheduleConflict(ctx, subID)
	}
	return nil
}

func (s *Store) SetStatus(ctx context.Context, subID id.SubscriptionID, from, to subscription.Status, at time.Time) error {
	q := s.pg.NewUpdate((*subscriptionModel)(nil)).
		Set("status = ?", string(to)).
		Set("updated_at = ?", at.UTC()).
		Where("id = ?", subID.String()).
		Where("status = ?", string(from))

	if to == subscription.StatusCancelled {
		q = q.Set("cancelled_at = ?", at.UTC())
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("recur/postgres: set status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := s.Get(ctx, subID); err != nil {
			return err
		}
		return recur.ErrAlreadyCancelled
	}
	return nil
}

// scheduleConflict reports why a conditional schedule update matched no
// row: a missing record, a terminal status, or a moved cursor.
func (s *Store) scheduleConflict(ctx context.Context, subID id.SubscriptionID) error {
	sub, err := s.Get(ctx, subID)
	if err != nil {
		return err
	}
	if !sub.IsActive() {
		return recur.ErrAlreadyCancelled
	}
	return recur.ErrScheduleConflict
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
