package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	recur "github.com/xraph/recur"
	"github.com/xraph/recur/id"
	recurstore "github.com/xraph/recur/store"
	"github.com/xraph/recur/subscription"
)

// Collection name constants.
const (
	colSubscriptions = "recur_subscriptions"
)

// compile-time interface check
var _ recurstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for the subscription collection.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("recur/mongo: migrate %s indexes: %w", col, err)
		}
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Fail closed: an existing record is never overwritten.
			return recur.ErrDuplicateID
		}
		return fmt.Errorf("recur/mongo: insert subscription: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, subID id.SubscriptionID) (*subscription.Subscription, error) {
	var m subscriptionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": subID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, recur.ErrUnknownSubscription
		}
		return nil, fmt.Errorf("recur/mongo: get subscription: %w", err)
	}
	return fromSubscriptionModel(&m)
}

func (s *Store) List(ctx context.Context, opts subscription.ListOpts) ([]*subscription.Subscription, error) {
	var models []subscriptionModel

	filter := bson.M{}
	if opts.Payer != "" {
		filter["payer"] = string(opts.Payer)
	}
	if opts.Payee != "" {
		filter["payee"] = string(opts.Payee)
	}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("recur/mongo: list subscriptions: %w", err)
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
	res, err := s.mdb.NewUpdate((*subscriptionModel)(nil)).
		Filter(bson.M{
			"_id":               subID.String(),
			"status":            string(subscription.StatusActive),
			"next_payment_time": expectNext.UTC(),
		}).
		Set("next_payment_time", newNext.UTC()).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("recur/mongo: update schedule: %w", err)
	}
	if res.MatchedCount() == 0 {
		return s.scheduleConflict(ctx, subID)
	}
	return nil
}

func (s *Store) SetStatus(ctx context.Context, subID id.SubscriptionID, from, to subscription.Status, at time.Time) error {
	q := s.mdb.NewUpdate((*subscriptionModel)(nil)).
		Filter(bson.M{
			"_id":    subID.String(),
			"status": string(from),
		}).
		Set("status", string(to)).
		Set("updated_at", at.UTC())

	if to == subscription.StatusCancelled {
		q = q.Set("cancelled_at", at.UTC())
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("recur/mongo: set status: %w", err)
	}
	if res.MatchedCount() == 0 {
		if _, err := s.Get(ctx, subID); err != nil {
			return err
		}
		return recur.ErrAlreadyCancelled
	}
	return nil
}

// scheduleConflict reports why a conditional schedule update matched no
// document: a missing record, a terminal status, or a moved cursor.
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

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for the recur collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colSubscriptions: {
			{Keys: bson.D{{Key: "payer", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "payee", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "next_payment_time", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: 1}}},
		},
	}
}
