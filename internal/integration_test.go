package internal_test

import (
	"context"
	"testing"

	"bank_ledger/internal/domain"
	"bank_ledger/internal/processor"
	"bank_ledger/internal/repository/memory"
)

type env struct {
	store    *memory.Store
	accounts *memory.AccountRepository
	users    *memory.UserRepository
	txs      *memory.TransactionRepository

	processor  *processor.BatchProcessor
	activation *processor.ActivationBatch
}

type staticRates map[string]float64

func (r staticRates) GetRate(ctx context.Context, origin, destination string) float64 {
	if origin == destination {
		return 1.0
	}
	if rate, ok := r[origin+destination]; ok {
		return rate
	}
	return 0.01
}

func setup(t *testing.T, rates staticRates) *env {
	t.Helper()
	store := memory.NewStore()
	accounts := memory.NewAccountRepository(store)
	users := memory.NewUserRepository(store)
	txs := memory.NewTransactionRepository(store)
	ledger := memory.NewLedger(store)

	proc := processor.NewBatchProcessor(txs, users, ledger, rates,
		processor.NewFeePolicy(0.001), 10, nil, nil)
	activation := processor.NewActivationBatch(accounts, users, 10, nil, nil)

	return &env{
		store:      store,
		accounts:   accounts,
		users:      users,
		txs:        txs,
		processor:  proc,
		activation: activation,
	}
}

func TestFullFlow_SignupActivationSettlement(t *testing.T) {
	ctx := context.Background()
	e := setup(t, staticRates{"USDEUR": 1.1})

	// signup: everything starts in created status, invisible to settlement
	if err := e.users.Save(ctx, &domain.User{ID: "u1", Email: "alice@bank.test", Name: "alice", Status: domain.UserCreated}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.users.Save(ctx, &domain.User{ID: "u2", Email: "bob@bank.test", Name: "bob", Status: domain.UserCreated}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.accounts.Save(ctx, &domain.Account{ID: "a1", Alias: "alice-usd", UserID: "u1", Currency: "USD", Total: 0, Status: domain.AccountCreated}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.accounts.Save(ctx, &domain.Account{ID: "a2", Alias: "bob-eur", UserID: "u2", Currency: "EUR", Total: 0, Status: domain.AccountCreated}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deposit := domain.NewTransaction(domain.OperationDeposit, 500, "USD").
		WithAccounts("a1", "a1").WithUser("u1")
	if err := e.txs.Save(ctx, deposit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// settlement before activation fails the eligibility gate
	summary, err := e.processor.RunPendingTransactions(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("expected deposit to fail before activation, got %+v", summary)
	}

	// activation promotes users then accounts
	userSummary, err := e.activation.ActivatePendingUsers(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userSummary.Total != 2 {
		t.Errorf("expected 2 users activated, got %d", userSummary.Total)
	}
	accountSummary, err := e.activation.ActivatePendingAccounts(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accountSummary.Total != 2 {
		t.Errorf("expected 2 accounts activated, got %d", accountSummary.Total)
	}

	// second activation pass finds nothing
	again, err := e.activation.ActivatePendingAccounts(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Total != 0 {
		t.Errorf("expected idempotent activation, got %d", again.Total)
	}

	// a fresh deposit now settles
	deposit2 := domain.NewTransaction(domain.OperationDeposit, 500, "USD").
		WithAccounts("a1", "a1").WithUser("u1")
	if err := e.txs.Save(ctx, deposit2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summary, err = e.processor.RunPendingTransactions(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Success != 1 {
		t.Fatalf("expected deposit to settle, got %+v", summary)
	}

	// cross-currency transfer with fee
	transfer := domain.NewTransaction(domain.OperationTransfer, 100, "USD").
		WithAccounts("a1", "a2").WithUser("u1")
	if err := e.txs.Save(ctx, transfer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summary, err = e.processor.RunPendingTransactions(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Success != 1 {
		t.Fatalf("expected transfer to settle, got %+v", summary)
	}

	origin, _ := e.accounts.GetByID(ctx, "a1")
	destination, _ := e.accounts.GetByID(ctx, "a2")
	if origin.Total != 399.9 {
		t.Errorf("expected origin total 399.9, got %f", origin.Total)
	}
	if destination.Total != 110 {
		t.Errorf("expected destination total 110, got %f", destination.Total)
	}

	// balance invariant holds for every account after the batch
	for _, id := range []string{"a1", "a2"} {
		account, _ := e.accounts.GetByID(ctx, id)
		if account.Total < 0 {
			t.Errorf("account %s went negative: %f", id, account.Total)
		}
	}

	// the settled transfer carries the origin's post-settlement snapshot
	settled, _ := e.txs.GetByID(ctx, transfer.ID)
	if settled.Total == nil || *settled.Total != 399.9 {
		t.Errorf("expected transfer snapshot 399.9, got %v", settled.Total)
	}
}
