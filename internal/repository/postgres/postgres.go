package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"bank_ledger/internal/repository"
)

var (
	_ repository.AccountRepository     = (*AccountRepository)(nil)
	_ repository.UserRepository        = (*UserRepository)(nil)
	_ repository.TransactionRepository = (*TransactionRepository)(nil)
	_ repository.CurrencyRepository    = (*CurrencyRepository)(nil)
	_ repository.Ledger                = (*Ledger)(nil)
)

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Migrate creates the schema. The accounts CHECK mirrors the ledger invariant
// so a bad write can never land even if application-level validation is
// bypassed.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	const schema = `
CREATE TABLE IF NOT EXISTS currencies (
	name TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'created',
	profile TEXT NOT NULL DEFAULT 'user',
	password TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS accounts (
	id UUID PRIMARY KEY,
	alias TEXT NOT NULL UNIQUE,
	user_id UUID NOT NULL REFERENCES users (id),
	status TEXT NOT NULL DEFAULT 'created',
	currency_name TEXT NOT NULL REFERENCES currencies (name),
	total DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (total >= 0),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS transactions (
	id UUID PRIMARY KEY,
	linked_transaction_id UUID,
	amount DOUBLE PRECISION NOT NULL,
	total DOUBLE PRECISION,
	operation TEXT NOT NULL,
	operation_status TEXT NOT NULL DEFAULT 'created',
	origin_account_id UUID NOT NULL REFERENCES accounts (id),
	destination_account_id UUID NOT NULL REFERENCES accounts (id),
	currency_name TEXT NOT NULL REFERENCES currencies (name),
	user_id UUID NOT NULL REFERENCES users (id),
	reference TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_transactions_status_updated
	ON transactions (operation_status, last_updated DESC);
`

	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
