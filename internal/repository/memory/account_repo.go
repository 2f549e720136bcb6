package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bank_ledger/internal/domain"
	"bank_ledger/internal/repository"
)

type AccountRepository struct {
	store *Store
}

func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.accounts[account.ID]; exists {
		return fmt.Errorf("%w: account %s", repository.ErrDuplicate, account.ID)
	}
	if _, exists := r.store.aliasIndex[account.Alias]; exists {
		return fmt.Errorf("%w: account alias %s", repository.ErrDuplicate, account.Alias)
	}
	if account.Total < 0 {
		return fmt.Errorf("%w: account %s total %f", repository.ErrInvariantViolation, account.ID, account.Total)
	}

	now := time.Now()
	account.CreatedAt = now
	account.LastUpdated = now
	r.store.accounts[account.ID] = account
	r.store.aliasIndex[account.Alias] = account.ID

	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	account, exists := r.store.accounts[id]
	if !exists {
		return nil, fmt.Errorf("%w: account %s", repository.ErrNotFound, id)
	}
	return account, nil
}

func (r *AccountRepository) GetByAlias(ctx context.Context, alias string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, exists := r.store.aliasIndex[alias]
	if !exists {
		return nil, fmt.Errorf("%w: account alias %s", repository.ErrNotFound, alias)
	}
	return r.store.accounts[id], nil
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*domain.Account
	for _, account := range r.store.accounts {
		if account.UserID == userID {
			result = append(result, account)
		}
	}
	sortAccountsByLastUpdated(result)

	return result, nil
}

func (r *AccountRepository) GetByStatus(ctx context.Context, status domain.AccountStatus, limit, offset int) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*domain.Account
	for _, account := range r.store.accounts {
		if account.Status == status {
			matched = append(matched, account)
		}
	}
	sortAccountsByLastUpdated(matched)

	return pageAccounts(matched, limit, offset), nil
}

func (r *AccountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	account, exists := r.store.accounts[id]
	if !exists {
		return fmt.Errorf("%w: account %s", repository.ErrNotFound, id)
	}

	account.Status = status
	account.LastUpdated = time.Now()

	return nil
}

func (r *AccountRepository) UpdateStatuses(ctx context.Context, ids []string, status domain.AccountStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, id := range ids {
		if _, exists := r.store.accounts[id]; !exists {
			return fmt.Errorf("%w: account %s", repository.ErrNotFound, id)
		}
	}

	now := time.Now()
	for _, id := range ids {
		r.store.accounts[id].Status = status
		r.store.accounts[id].LastUpdated = now
	}

	return nil
}

func sortAccountsByLastUpdated(accounts []*domain.Account) {
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].LastUpdated.Equal(accounts[j].LastUpdated) {
			return accounts[i].ID < accounts[j].ID
		}
		return accounts[i].LastUpdated.After(accounts[j].LastUpdated)
	})
}

func pageAccounts(accounts []*domain.Account, limit, offset int) []*domain.Account {
	if offset >= len(accounts) {
		return []*domain.Account{}
	}
	end := offset + limit
	if limit <= 0 || end > len(accounts) {
		end = len(accounts)
	}
	return accounts[offset:end]
}
