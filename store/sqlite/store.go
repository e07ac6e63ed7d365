package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	recur "github.com/xraph/recur"
	"github.com/xraph/recur/id"
	"github.com/xraph/recur/period"
	recurstore "github.com/xraph/recur/store"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

// compile-time interface check
var _ recurstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("recur/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("recur/sqlite: migration failed: %w", err)
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
	res, err := s.sdb.NewInsert(m).
		OnConflict("(id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("recur/sqlite: insert subscription: %w", err)
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
	err := s.sdb.NewSelect(m).
		Where("id = ?", subID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, recur.ErrUnknownSubscription
		}
		return nil, fmt.Errorf("recur/sqlite: get subscription: %w", err)
	}
	return fromSubscriptionModel(m)
}

func (s *Store) List(ctx context.Context, opts subscription.ListOpts) ([]*subscription.Subscription, error) {
	var models []subscriptionModel
	q := s.sdb.NewSelect(&models)

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
		return nil, fmt.Errorf("recur/sqlite: list subscriptions: %w", err)
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
	res, err := s.sdb.NewUpdate((*subscriptionModel)(nil)).
		Set("next_payment_time = ?", newNext.UTC()).
		Set("updated_at = ?", now()).
		Where("id = ?", subID.String()).
		Where("status = ?", string(subscription.StatusActive)).
		Where("next_payment_time = ?", expectNext.UTC()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("recur/sqlite: update schedule: %w", err)
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
	q := s.sdb.NewUpdate((*subscriptionModel)(nil)).
		Set("status = ?", string(to)).
		Set("updated_at = ?", at.UTC()).
		Where("id = ?", subID.String()).
		Where("status = ?", string(from))

	if to == subscription.StatusCancelled {
		q = q.Set("cancelled_at = ?", at.UTC())
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("recur/sqlite: set status: %w", err)
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

// ==================== Models ====================

type subscriptionModel struct {
	grove.BaseModel `grove:"table:recur_subscriptions"`

	ID               string     `grove:"id,pk"`
	Payer            string     `grove:"payer"`
	Payee            string     `grove:"payee"`
	Asset            string     `grove:"asset"`
	AmountInitial    int64      `grove:"amount_initial"`
	AmountRecurring  int64      `grove:"amount_recurring"`
	PeriodType       string     `grove:"period_type"`
	PeriodMultiplier int64      `grove:"period_multiplier"`
	StartTime        time.Time  `grove:"start_time"`
	NextPaymentTime  time.Time  `grove:"next_payment_time"`
	Status           string     `grove:"status"`
	CancelledAt      *time.Time `grove:"cancelled_at"`
	Annotation       []byte     `grove:"annotation"`
	CreatedAt        time.Time  `grove:"created_at"`
	UpdatedAt        time.Time  `grove:"updated_at"`
}

func toSubscriptionModel(sub *subscription.Subscription) *subscriptionModel {
	return &subscriptionModel{
		ID:               sub.ID.String(),
		Payer:            string(sub.Payer),
		Payee:            string(sub.Payee),
		Asset:            string(sub.Asset),
		AmountInitial:    sub.AmountInitial.Int64(),
		AmountRecurring:  sub.AmountRecurring.Int64(),
		PeriodType:       string(sub.PeriodType),
		PeriodMultiplier: int64(sub.PeriodMultiplier),
		StartTime:        sub.StartTime.UTC(),
		NextPaymentTime:  sub.NextPaymentTime.UTC(),
		Status:           string(sub.Status),
		CancelledAt:      sub.CancelledAt,
		Annotation:       sub.Annotation,
		CreatedAt:        sub.CreatedAt,
		UpdatedAt:        sub.UpdatedAt,
	}
}

func fromSubscriptionModel(m *subscriptionModel) (*subscription.Subscription, error) {
	subID, err := id.ParseSubscriptionID(m.ID)
	if err != nil {
		return nil, err
	}

	return &subscription.Subscription{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:               subID,
		Payer:            types.Account(m.Payer),
		Payee:            types.Account(m.Payee),
		Asset:            types.AssetRef(m.Asset),
		AmountInitial:    types.Amount(m.AmountInitial),
		AmountRecurring:  types.Amount(m.AmountRecurring),
		PeriodType:       period.Type(m.PeriodType),
		PeriodMultiplier: uint32(m.PeriodMultiplier),
		StartTime:        m.StartTime,
		NextPaymentTime:  m.NextPaymentTime,
		Status:           subscription.Status(m.Status),
		CancelledAt:      m.CancelledAt,
		Annotation:       m.Annotation,
	}, nil
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
