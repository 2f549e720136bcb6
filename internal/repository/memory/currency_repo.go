package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bank_ledger/internal/domain"
	"bank_ledger/internal/repository"
)

type CurrencyRepository struct {
	store *Store
}

func NewCurrencyRepository(store *Store) *CurrencyRepository {
	return &CurrencyRepository{store: store}
}

func (r *CurrencyRepository) Save(ctx context.Context, currency *domain.Currency) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.currencies[currency.Name]; exists {
		return fmt.Errorf("%w: currency %s", repository.ErrDuplicate, currency.Name)
	}

	currency.CreatedAt = time.Now()
	r.store.currencies[currency.Name] = currency

	return nil
}

func (r *CurrencyRepository) GetByName(ctx context.Context, name string) (*domain.Currency, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	currency, exists := r.store.currencies[name]
	if !exists {
		return nil, fmt.Errorf("%w: currency %s", repository.ErrNotFound, name)
	}
	return currency, nil
}

func (r *CurrencyRepository) GetAll(ctx context.Context) ([]*domain.Currency, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*domain.Currency, 0, len(r.store.currencies))
	for _, currency := range r.store.currencies {
		result = append(result, currency)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}
