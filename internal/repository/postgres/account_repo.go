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

const accountColumns = "id, alias, user_id, status, currency_name, total, created_at, last_updated"

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO accounts (id, alias, user_id, status, currency_name, total)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		account.ID, account.Alias, account.UserID, account.Status, account.Currency, account.Total)
	if err != nil {
		return fmt.Errorf("failed to insert account %s: %w", account.ID, err)
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = $1", id)
	return scanAccount(row, id)
}

func (r *AccountRepository) GetByAlias(ctx context.Context, alias string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE alias = $1", alias)
	return scanAccount(row, alias)
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE user_id = $1 ORDER BY last_updated DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for user %s: %w", userID, err)
	}
	return collectAccounts(rows)
}

func (r *AccountRepository) GetByStatus(ctx context.Context, status domain.AccountStatus, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+accountColumns+` FROM accounts WHERE status = $1
		 ORDER BY last_updated DESC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by status %s: %w", status, err)
	}
	return collectAccounts(rows)
}

func (r *AccountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE accounts SET status = $2, last_updated = now() WHERE id = $1", id, status)
	if err != nil {
		return fmt.Errorf("failed to update account %s status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", repository.ErrNotFound, id)
	}
	return nil
}

func (r *AccountRepository) UpdateStatuses(ctx context.Context, ids []string, status domain.AccountStatus) error {
	if len(ids) == 0 {
		return nil
	}
	tag, err := r.pool.Exec(ctx,
		"UPDATE accounts SET status = $2, last_updated = now() WHERE id = ANY($1)", ids, status)
	if err != nil {
		return fmt.Errorf("failed to bulk update account statuses: %w", err)
	}
	if int(tag.RowsAffected()) != len(ids) {
		return fmt.Errorf("%w: expected %d accounts, updated %d", repository.ErrNotFound, len(ids), tag.RowsAffected())
	}
	return nil
}

func scanAccount(row pgx.Row, key string) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(&account.ID, &account.Alias, &account.UserID, &account.Status,
		&account.Currency, &account.Total, &account.CreatedAt, &account.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %s", repository.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &account, nil
}

func collectAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	defer rows.Close()

	var result []*domain.Account
	for rows.Next() {
		var account domain.Account
		err := rows.Scan(&account.ID, &account.Alias, &account.UserID, &account.Status,
			&account.Currency, &account.Total, &account.CreatedAt, &account.LastUpdated)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		result = append(result, &account)
	}
	return result, rows.Err()
}
