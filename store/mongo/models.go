package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/recur/id"
	"github.com/xraph/recur/period"
	"github.com/xraph/recur/subscription"
	"github.com/xraph/recur/types"
)

type subscriptionModel struct {
	grove.BaseModel `grove:"table:recur_subscriptions"`

	ID               string     `grove:"id,pk"             bson:"_id"`
	Payer            string     `grove:"payer"             bson:"payer"`
	Payee            string     `grove:"payee"             bson:"payee"`
	Asset            string     `grove:"asset"             bson:"asset"`
	AmountInitial    int64      `grove:"amount_initial"    bson:"amount_initial"`
	AmountRecurring  int64      `grove:"amount_recurring"  bson:"amount_recurring"`
	PeriodType       string     `grove:"period_type"       bson:"period_type"`
	PeriodMultiplier int64      `grove:"period_multiplier" bson:"period_multiplier"`
	StartTime        time.Time  `grove:"start_time"        bson:"start_time"`
	NextPaymentTime  time.Time  `grove:"next_payment_time" bson:"next_payment_time"`
	Status           string     `grove:"status"            bson:"status"`
	CancelledAt      *time.Time `grove:"cancelled_at"      bson:"cancelled_at,omitempty"`
	Annotation       []byte     `grove:"annotation"        bson:"annotation,omitempty"`
	CreatedAt        time.Time  `grove:"created_at"        bson:"created_at"`
	UpdatedAt        time.Time  `grove:"updated_at"        bson:"updated_at"`
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
