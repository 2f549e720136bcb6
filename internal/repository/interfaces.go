package repository

import (
	"context"
	"errors"

	"bank_ledger/internal/domain"
)

// Repositories are typed per entity: named query methods instead of a generic
// filter-by-field contract, so every call site states what it reads.

type AccountRepository interface {
	Save(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByAlias(ctx context.Context, alias string) (*domain.Account, error)
	GetByUserID(ctx context.Context, userID string) ([]*domain.Account, error)
	// GetByStatus returns at most limit accounts, most recently updated first.
	GetByStatus(ctx context.Context, status domain.AccountStatus, limit, offset int) ([]*domain.Account, error)
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) error
	// UpdateStatuses bulk-transitions the given accounts in one commit.
	UpdateStatuses(ctx context.Context, ids []string, status domain.AccountStatus) error
}

type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByStatus(ctx context.Context, status domain.UserStatus, limit, offset int) ([]*domain.User, error)
	UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error
	UpdateStatuses(ctx context.Context, ids []string, status domain.UserStatus) error
}

type TransactionRepository interface {
	Save(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
	// GetByStatus returns at most limit transactions, most recently updated first.
	GetByStatus(ctx context.Context, status domain.OperationStatus, limit, offset int) ([]*domain.Transaction, error)
	// Claim atomically moves a transaction from CREATED to PENDING. It returns
	// false without error when another run claimed the row first; settlement
	// correctness depends on exactly one claimer winning.
	Claim(ctx context.Context, id string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status domain.OperationStatus) error
	// Finalize sets the terminal status and, for settled rows, the balance
	// snapshot, in one commit.
	Finalize(ctx context.Context, id string, status domain.OperationStatus, total *float64) error
}

type CurrencyRepository interface {
	Save(ctx context.Context, currency *domain.Currency) error
	GetByName(ctx context.Context, name string) (*domain.Currency, error)
	GetAll(ctx context.Context) ([]*domain.Currency, error)
}

// Ledger is the balance mutation contract. Writes that would leave any total
// negative fail with ErrInvariantViolation and leave nothing committed.
type Ledger interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ApplyBalanceUpdate(ctx context.Context, accountID string, newTotal float64) (*domain.Account, error)
	// ApplyBatchBalanceUpdate commits every balance update together with the
	// given newly created transaction rows, all or nothing.
	ApplyBatchBalanceUpdate(ctx context.Context, updates []domain.BalanceUpdate, records []*domain.Transaction) error
}

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("duplicate entry")
	ErrInvariantViolation = errors.New("balance invariant violation")
	ErrConflict           = errors.New("concurrent update conflict")
)
