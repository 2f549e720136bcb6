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

const userColumns = "id, email, name, status, profile, password, created_at, last_updated"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, status, profile, password)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.Name, user.Status, user.Profile, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to insert user %s: %w", user.ID, err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
	return scanUser(row, email)
}

func (r *UserRepository) GetByStatus(ctx context.Context, status domain.UserStatus, limit, offset int) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+userColumns+` FROM users WHERE status = $1
		 ORDER BY last_updated DESC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by status %s: %w", status, err)
	}
	defer rows.Close()

	var result []*domain.User
	for rows.Next() {
		var user domain.User
		err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.Status,
			&user.Profile, &user.PasswordHash, &user.CreatedAt, &user.LastUpdated)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		result = append(result, &user)
	}
	return result, rows.Err()
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE users SET status = $2, last_updated = now() WHERE id = $1", id, status)
	if err != nil {
		return fmt.Errorf("failed to update user %s status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", repository.ErrNotFound, id)
	}
	return nil
}

func (r *UserRepository) UpdateStatuses(ctx context.Context, ids []string, status domain.UserStatus) error {
	if len(ids) == 0 {
		return nil
	}
	tag, err := r.pool.Exec(ctx,
		"UPDATE users SET status = $2, last_updated = now() WHERE id = ANY($1)", ids, status)
	if err != nil {
		return fmt.Errorf("failed to bulk update user statuses: %w", err)
	}
	if int(tag.RowsAffected()) != len(ids) {
		return fmt.Errorf("%w: expected %d users, updated %d", repository.ErrNotFound, len(ids), tag.RowsAffected())
	}
	return nil
}

func scanUser(row pgx.Row, key string) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Status,
		&user.Profile, &user.PasswordHash, &user.CreatedAt, &user.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", repository.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}
