package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bank_ledger/internal/domain"
	"bank_ledger/internal/repository"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.users[user.ID]; exists {
		return fmt.Errorf("%w: user %s", repository.ErrDuplicate, user.ID)
	}
	if _, exists := r.store.emailIndex[user.Email]; exists {
		return fmt.Errorf("%w: user email %s", repository.ErrDuplicate, user.Email)
	}

	now := time.Now()
	user.CreatedAt = now
	user.LastUpdated = now
	r.store.users[user.ID] = user
	r.store.emailIndex[user.Email] = user.ID

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, exists := r.store.users[id]
	if !exists {
		return nil, fmt.Errorf("%w: user %s", repository.ErrNotFound, id)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, exists := r.store.emailIndex[email]
	if !exists {
		return nil, fmt.Errorf("%w: user email %s", repository.ErrNotFound, email)
	}
	return r.store.users[id], nil
}

func (r *UserRepository) GetByStatus(ctx context.Context, status domain.UserStatus, limit, offset int) ([]*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*domain.User
	for _, user := range r.store.users {
		if user.Status == status {
			matched = append(matched, user)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].LastUpdated.Equal(matched[j].LastUpdated) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].LastUpdated.After(matched[j].LastUpdated)
	})

	if offset >= len(matched) {
		return []*domain.User{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, exists := r.store.users[id]
	if !exists {
		return fmt.Errorf("%w: user %s", repository.ErrNotFound, id)
	}

	user.Status = status
	user.LastUpdated = time.Now()

	return nil
}

func (r *UserRepository) UpdateStatuses(ctx context.Context, ids []string, status domain.UserStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, id := range ids {
		if _, exists := r.store.users[id]; !exists {
			return fmt.Errorf("%w: user %s", repository.ErrNotFound, id)
		}
	}

	now := time.Now()
	for _, id := range ids {
		r.store.users[id].Status = status
		r.store.users[id].LastUpdated = now
	}

	return nil
}
