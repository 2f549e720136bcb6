package memory

import (
	"context"
	"fmt"
	"time"

	"bank_ledger/internal/domain"
	"bank_ledger/internal/repository"
)

// Ledger applies balance mutations against the shared store. Batch updates
// validate every entry before touching anything, so a rejected entry leaves
// no partial state behind.
type Ledger struct {
	store *Store
}

func NewLedger(store *Store) *Ledger {
	return &Ledger{store: store}
}

func (l *Ledger) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	l.store.mu.RLock()
	defer l.store.mu.RUnlock()

	account, exists := l.store.accounts[id]
	if !exists {
		return nil, fmt.Errorf("%w: account %s", repository.ErrNotFound, id)
	}
	return account, nil
}

func (l *Ledger) ApplyBalanceUpdate(ctx context.Context, accountID string, newTotal float64) (*domain.Account, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	account, exists := l.store.accounts[accountID]
	if !exists {
		return nil, fmt.Errorf("%w: account %s", repository.ErrNotFound, accountID)
	}
	if newTotal < 0 {
		return nil, fmt.Errorf("%w: account %s total would be %f", repository.ErrInvariantViolation, accountID, newTotal)
	}

	account.Total = newTotal
	account.LastUpdated = time.Now()

	return account, nil
}

func (l *Ledger) ApplyBatchBalanceUpdate(ctx context.Context, updates []domain.BalanceUpdate, records []*domain.Transaction) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	for _, update := range updates {
		if _, exists := l.store.accounts[update.AccountID]; !exists {
			return fmt.Errorf("%w: account %s", repository.ErrNotFound, update.AccountID)
		}
		if update.NewTotal < 0 {
			return fmt.Errorf("%w: account %s total would be %f",
				repository.ErrInvariantViolation, update.AccountID, update.NewTotal)
		}
	}
	for _, record := range records {
		if _, exists := l.store.transactions[record.ID]; exists {
			return fmt.Errorf("%w: transaction %s", repository.ErrDuplicate, record.ID)
		}
	}

	now := time.Now()
	for _, update := range updates {
		account := l.store.accounts[update.AccountID]
		account.Total = update.NewTotal
		account.LastUpdated = now
	}
	for _, record := range records {
		if err := saveTransactionLocked(l.store, record); err != nil {
			return err
		}
	}

	return nil
}
