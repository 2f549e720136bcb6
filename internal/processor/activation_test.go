package processor

import (
	"context"
	"testing"

	"bank_ledger/internal/domain"
)

func TestActivationBatch_NoCreatedAccounts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	mustSaveUser(t, env, "u1", domain.UserActive)
	mustSaveAccount(t, env, "a1", "u1", "USD", 0, domain.AccountActive)

	batch := NewActivationBatch(env.accounts, env.users, 10, nil, nil)
	summary, err := batch.ActivatePendingAccounts(ctx)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total != 0 {
		t.Errorf("expected total 0, got %d", summary.Total)
	}
}

func TestActivationBatch_ActivatesCreatedAccounts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	mustSaveUser(t, env, "u1", domain.UserActive)
	mustSaveAccount(t, env, "a1", "u1", "USD", 0, domain.AccountCreated)
	mustSaveAccount(t, env, "a2", "u1", "EUR", 0, domain.AccountCreated)
	mustSaveAccount(t, env, "a3", "u1", "USD", 0, domain.AccountBlocked)

	batch := NewActivationBatch(env.accounts, env.users, 10, nil, nil)
	summary, err := batch.ActivatePendingAccounts(ctx)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total != 2 {
		t.Errorf("expected total 2, got %d", summary.Total)
	}
	for _, id := range []string{"a1", "a2"} {
		account, _ := env.accounts.GetByID(ctx, id)
		if account.Status != domain.AccountActive {
			t.Errorf("expected account %s active, got %s", id, account.Status)
		}
	}
	blocked, _ := env.accounts.GetByID(ctx, "a3")
	if blocked.Status != domain.AccountBlocked {
		t.Errorf("expected blocked account untouched, got %s", blocked.Status)
	}
}

func TestActivationBatch_ActivatesCreatedUsers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	mustSaveUser(t, env, "u1", domain.UserCreated)
	mustSaveUser(t, env, "u2", domain.UserActive)

	batch := NewActivationBatch(env.accounts, env.users, 10, nil, nil)
	summary, err := batch.ActivatePendingUsers(ctx)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total != 1 {
		t.Errorf("expected total 1, got %d", summary.Total)
	}
	user, _ := env.users.GetByID(ctx, "u1")
	if user.Status != domain.UserActive {
		t.Errorf("expected user active, got %s", user.Status)
	}
}
