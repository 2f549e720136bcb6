package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bank_ledger/internal/domain"
	"bank_ledger/internal/repository"
)

const transactionColumns = `id, COALESCE(linked_transaction_id::text, ''), amount, total, operation,
	operation_status, origin_account_id, destination_account_id, currency_name, user_id,
	COALESCE(reference, ''), created_at, last_updated`

type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func (r *TransactionRepository) Save(ctx context.Context, tx *domain.Transaction) error {
	return insertTransaction(ctx, r.pool, tx)
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = $1", id)
	return scanTransaction(row, id)
}

func (r *TransactionRepository) GetByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+transactionColumns+` FROM transactions
		 WHERE origin_account_id = $1 OR destination_account_id = $1
		 ORDER BY last_updated DESC LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	return collectTransactions(rows)
}

func (r *TransactionRepository) GetByStatus(ctx context.Context, status domain.OperationStatus, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+transactionColumns+` FROM transactions WHERE operation_status = $1
		 ORDER BY last_updated DESC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by status %s: %w", status, err)
	}
	return collectTransactions(rows)
}

// Claim wins only when the row is still CREATED; the WHERE clause makes the
// transition a single atomic statement, so concurrent passes cannot both
// settle the same transaction.
func (r *TransactionRepository) Claim(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions SET operation_status = $2, last_updated = now()
		 WHERE id = $1 AND operation_status = $3`,
		id, domain.StatusPending, domain.StatusCreated)
	if err != nil {
		return false, fmt.Errorf("failed to claim transaction %s: %w", id, err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, id string, status domain.OperationStatus) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !current.OperationStatus.CanTransition(status) {
		return fmt.Errorf("%w: transaction %s cannot move from %s to %s",
			repository.ErrConflict, id, current.OperationStatus, status)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions SET operation_status = $2, last_updated = now()
		 WHERE id = $1 AND operation_status = $3`,
		id, status, current.OperationStatus)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s changed concurrently", repository.ErrConflict, id)
	}
	return nil
}

func (r *TransactionRepository) Finalize(ctx context.Context, id string, status domain.OperationStatus, total *float64) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !current.OperationStatus.CanTransition(status) {
		return fmt.Errorf("%w: transaction %s cannot move from %s to %s",
			repository.ErrConflict, id, current.OperationStatus, status)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions SET operation_status = $2, total = $3, last_updated = now()
		 WHERE id = $1 AND operation_status = $4`,
		id, status, total, current.OperationStatus)
	if err != nil {
		return fmt.Errorf("failed to finalize transaction %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s changed concurrently", repository.ErrConflict, id)
	}
	return nil
}

// execer lets inserts run against the pool directly or inside a pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertTransaction(ctx context.Context, db execer, tx *domain.Transaction) error {
	_, err := db.Exec(ctx,
		`INSERT INTO transactions (id, linked_transaction_id, amount, total, operation,
			operation_status, origin_account_id, destination_account_id, currency_name,
			user_id, reference)
		 VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''))`,
		tx.ID, tx.LinkedTransactionID, tx.Amount, tx.Total, tx.Operation,
		tx.OperationStatus, tx.OriginAccountID, tx.DestinationAccountID,
		tx.Currency, tx.UserID, tx.Reference)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", tx.ID, err)
	}
	return nil
}

func scanTransaction(row pgx.Row, key string) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := row.Scan(&tx.ID, &tx.LinkedTransactionID, &tx.Amount, &tx.Total, &tx.Operation,
		&tx.OperationStatus, &tx.OriginAccountID, &tx.DestinationAccountID,
		&tx.Currency, &tx.UserID, &tx.Reference, &tx.CreatedAt, &tx.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %s", repository.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return &tx, nil
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	defer rows.Close()

	var result []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		err := rows.Scan(&tx.ID, &tx.LinkedTransactionID, &tx.Amount, &tx.Total, &tx.Operation,
			&tx.OperationStatus, &tx.OriginAccountID, &tx.DestinationAccountID,
			&tx.Currency, &tx.UserID, &tx.Reference, &tx.CreatedAt, &tx.LastUpdated)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		result = append(result, &tx)
	}
	return result, rows.Err()
}
