package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Recur store (SQLite).
var Migrations = migrate.NewGroup("recur")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_recur_subscriptions",
			Version: "20260101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS recur_subscriptions (
    id                TEXT PRIMARY KEY,
    payer             TEXT NOT NULL DEFAULT '',
    payee             TEXT NOT NULL DEFAULT '',
    asset             TEXT NOT NULL DEFAULT '',
    amount_initial    INTEGER NOT NULL DEFAULT 0,
    amount_recurring  INTEGER NOT NULL DEFAULT 0,
    period_type       TEXT NOT NULL DEFAULT '',
    period_multiplier INTEGER NOT NULL DEFAULT 1,
    start_time        TEXT NOT NULL DEFAULT (datetime('now')),
    next_payment_time TEXT NOT NULL DEFAULT (datetime('now')),
    status            TEXT NOT NULL DEFAULT 'active',
    cancelled_at      TEXT,
    annotation        BLOB,
    created_at        TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at        TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_recur_subs_payer ON recur_subscriptions (payer, status);
CREATE INDEX IF NOT EXISTS idx_recur_subs_payee ON recur_subscriptions (payee, status);
CREATE INDEX IF NOT EXISTS idx_recur_subs_due ON recur_subscriptions (status, next_payment_time);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS recur_subscriptions`)
				return err
			},
		},
	)
}
