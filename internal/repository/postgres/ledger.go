package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bank_ledger/internal/domain"
	"bank_ledger/internal/repository"
)

// Ledger runs balance mutations in a single database transaction with
// row-level locks, so the origin debit, destination credit and any linked
// transaction rows commit or roll back together.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

func (l *Ledger) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	row := l.pool.QueryRow(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = $1", id)
	return scanAccount(row, id)
}

func (l *Ledger) ApplyBalanceUpdate(ctx context.Context, accountID string, newTotal float64) (*domain.Account, error) {
	if newTotal < 0 {
		return nil, fmt.Errorf("%w: account %s total would be %f",
			repository.ErrInvariantViolation, accountID, newTotal)
	}

	row := l.pool.QueryRow(ctx,
		`UPDATE accounts SET total = $2, last_updated = now() WHERE id = $1
		 RETURNING `+accountColumns, accountID, newTotal)
	return scanAccount(row, accountID)
}

func (l *Ledger) ApplyBatchBalanceUpdate(ctx context.Context, updates []domain.BalanceUpdate, records []*domain.Transaction) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, update := range updates {
		if update.NewTotal < 0 {
			return fmt.Errorf("%w: account %s total would be %f",
				repository.ErrInvariantViolation, update.AccountID, update.NewTotal)
		}

		if err := lockAccount(ctx, tx, update.AccountID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			"UPDATE accounts SET total = $2, last_updated = now() WHERE id = $1",
			update.AccountID, update.NewTotal)
		if err != nil {
			return fmt.Errorf("failed to update account %s total: %w", update.AccountID, err)
		}
	}

	for _, record := range records {
		if err := insertTransaction(ctx, tx, record); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit ledger transaction: %w", err)
	}
	return nil
}

func lockAccount(ctx context.Context, tx pgx.Tx, accountID string) error {
	var id string
	err := tx.QueryRow(ctx, "SELECT id FROM accounts WHERE id = $1 FOR UPDATE", accountID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: account %s", repository.ErrNotFound, accountID)
	}
	if err != nil {
		return fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	return nil
}
