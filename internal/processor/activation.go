package processor

import (
	"context"
	"fmt"
	"log/slog"

	"bank_ledger/internal/domain"
	"bank_ledger/internal/repository"
	"bank_ledger/pkg/metrics"
)

// ActivationSummary reports how many entities one activation pass promoted.
type ActivationSummary struct {
	Total int `json:"total"`
}

// ActivationBatch promotes CREATED accounts and users to ACTIVE in one bulk
// commit per pass. It shares the selection pattern of the transaction batch:
// a bounded page of pending rows, most recently updated first.
type ActivationBatch struct {
	accounts repository.AccountRepository
	users    repository.UserRepository
	pageSize int
	metrics  *metrics.Collector
	logger   *slog.Logger
}

func NewActivationBatch(
	accounts repository.AccountRepository,
	users repository.UserRepository,
	pageSize int,
	collector *metrics.Collector,
	logger *slog.Logger,
) *ActivationBatch {
	if logger == nil {
		logger = slog.Default()
	}

	return &ActivationBatch{
		accounts: accounts,
		users:    users,
		pageSize: pageSize,
		metrics:  collector,
		logger:   logger,
	}
}

// ActivatePendingAccounts returns {total: 0} without writing anything when no
// account is waiting for approval.
func (b *ActivationBatch) ActivatePendingAccounts(ctx context.Context) (ActivationSummary, error) {
	created, err := b.accounts.GetByStatus(ctx, domain.AccountCreated, b.pageSize, 0)
	if err != nil {
		return ActivationSummary{}, fmt.Errorf("failed to select created accounts: %w", err)
	}
	if len(created) == 0 {
		return ActivationSummary{Total: 0}, nil
	}

	ids := make([]string, len(created))
	for i, account := range created {
		ids[i] = account.ID
	}
	if err := b.accounts.UpdateStatuses(ctx, ids, domain.AccountActive); err != nil {
		return ActivationSummary{}, fmt.Errorf("failed to activate accounts: %w", err)
	}

	b.logger.InfoContext(ctx, "accounts activated", slog.Int("count", len(ids)))
	if b.metrics != nil {
		b.metrics.RecordActivation("account", len(ids))
	}

	return ActivationSummary{Total: len(ids)}, nil
}

func (b *ActivationBatch) ActivatePendingUsers(ctx context.Context) (ActivationSummary, error) {
	created, err := b.users.GetByStatus(ctx, domain.UserCreated, b.pageSize, 0)
	if err != nil {
		return ActivationSummary{}, fmt.Errorf("failed to select created users: %w", err)
	}
	if len(created) == 0 {
		return ActivationSummary{Total: 0}, nil
	}

	ids := make([]string, len(created))
	for i, user := range created {
		ids[i] = user.ID
	}
	if err := b.users.UpdateStatuses(ctx, ids, domain.UserActive); err != nil {
		return ActivationSummary{}, fmt.Errorf("failed to activate users: %w", err)
	}

	b.logger.InfoContext(ctx, "users activated", slog.Int("count", len(ids)))
	if b.metrics != nil {
		b.metrics.RecordActivation("user", len(ids))
	}

	return ActivationSummary{Total: len(ids)}, nil
}
