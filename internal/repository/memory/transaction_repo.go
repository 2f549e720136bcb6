package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bank_ledger/internal/domain"
	"bank_ledger/internal/repository"
)

type TransactionRepository struct {
	store *Store
}

func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

func (r *TransactionRepository) Save(ctx context.Context, tx *domain.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return saveTransactionLocked(r.store, tx)
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	tx, exists := r.store.transactions[id]
	if !exists {
		return nil, fmt.Errorf("%w: transaction %s", repository.ErrNotFound, id)
	}
	return tx, nil
}

func (r *TransactionRepository) GetByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*domain.Transaction
	for _, tx := range r.store.transactions {
		if tx.OriginAccountID == accountID || tx.DestinationAccountID == accountID {
			matched = append(matched, tx)
		}
	}
	sortTransactionsByLastUpdated(matched)

	return pageTransactions(matched, limit, offset), nil
}

func (r *TransactionRepository) GetByStatus(ctx context.Context, status domain.OperationStatus, limit, offset int) ([]*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*domain.Transaction
	for _, tx := range r.store.transactions {
		if tx.OperationStatus == status {
			matched = append(matched, tx)
		}
	}
	sortTransactionsByLastUpdated(matched)

	return pageTransactions(matched, limit, offset), nil
}

// Claim is the conditional CREATED to PENDING update: it wins only if the row
// is still CREATED when the lock is held, so two concurrent passes cannot both
// take the same transaction.
func (r *TransactionRepository) Claim(ctx context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tx, exists := r.store.transactions[id]
	if !exists {
		return false, fmt.Errorf("%w: transaction %s", repository.ErrNotFound, id)
	}
	if tx.OperationStatus != domain.StatusCreated {
		return false, nil
	}

	tx.OperationStatus = domain.StatusPending
	tx.LastUpdated = time.Now()

	return true, nil
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, id string, status domain.OperationStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tx, exists := r.store.transactions[id]
	if !exists {
		return fmt.Errorf("%w: transaction %s", repository.ErrNotFound, id)
	}
	if !tx.OperationStatus.CanTransition(status) {
		return fmt.Errorf("%w: transaction %s cannot move from %s to %s",
			repository.ErrConflict, id, tx.OperationStatus, status)
	}

	tx.OperationStatus = status
	tx.LastUpdated = time.Now()

	return nil
}

func (r *TransactionRepository) Finalize(ctx context.Context, id string, status domain.OperationStatus, total *float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tx, exists := r.store.transactions[id]
	if !exists {
		return fmt.Errorf("%w: transaction %s", repository.ErrNotFound, id)
	}
	if !tx.OperationStatus.CanTransition(status) {
		return fmt.Errorf("%w: transaction %s cannot move from %s to %s",
			repository.ErrConflict, id, tx.OperationStatus, status)
	}

	tx.OperationStatus = status
	tx.Total = total
	tx.LastUpdated = time.Now()

	return nil
}

func saveTransactionLocked(store *Store, tx *domain.Transaction) error {
	if _, exists := store.transactions[tx.ID]; exists {
		return fmt.Errorf("%w: transaction %s", repository.ErrDuplicate, tx.ID)
	}

	now := time.Now()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.LastUpdated = now
	store.transactions[tx.ID] = tx

	return nil
}

func sortTransactionsByLastUpdated(transactions []*domain.Transaction) {
	sort.Slice(transactions, func(i, j int) bool {
		if transactions[i].LastUpdated.Equal(transactions[j].LastUpdated) {
			return transactions[i].ID < transactions[j].ID
		}
		return transactions[i].LastUpdated.After(transactions[j].LastUpdated)
	})
}

func pageTransactions(transactions []*domain.Transaction, limit, offset int) []*domain.Transaction {
	if offset >= len(transactions) {
		return []*domain.Transaction{}
	}
	end := offset + limit
	if limit <= 0 || end > len(transactions) {
		end = len(transactions)
	}
	return transactions[offset:end]
}
