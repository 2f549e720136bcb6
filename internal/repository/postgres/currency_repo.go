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

type CurrencyRepository struct {
	pool *pgxpool.Pool
}

func NewCurrencyRepository(pool *pgxpool.Pool) *CurrencyRepository {
	return &CurrencyRepository{pool: pool}
}

func (r *CurrencyRepository) Save(ctx context.Context, currency *domain.Currency) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO currencies (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", currency.Name)
	if err != nil {
		return fmt.Errorf("failed to insert currency %s: %w", currency.Name, err)
	}
	return nil
}

func (r *CurrencyRepository) GetByName(ctx context.Context, name string) (*domain.Currency, error) {
	var currency domain.Currency
	err := r.pool.QueryRow(ctx,
		"SELECT name, created_at FROM currencies WHERE name = $1", name).
		Scan(&currency.Name, &currency.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: currency %s", repository.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan currency: %w", err)
	}
	return &currency, nil
}

func (r *CurrencyRepository) GetAll(ctx context.Context) ([]*domain.Currency, error) {
	rows, err := r.pool.Query(ctx, "SELECT name, created_at FROM currencies ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	var result []*domain.Currency
	for rows.Next() {
		var currency domain.Currency
		if err := rows.Scan(&currency.Name, &currency.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan currency row: %w", err)
		}
		result = append(result, &currency)
	}
	return result, rows.Err()
}
