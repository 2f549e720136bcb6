package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bank_ledger/internal/domain"
	"bank_ledger/internal/repository"
	"bank_ledger/internal/service"
	"bank_ledger/pkg/metrics"
	"bank_ledger/pkg/money"
)

var (
	ErrNotEligible          = errors.New("destination account or user not active")
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// Summary is the sole observable outcome of a batch pass, plus one structured
// error record per failed transaction.
type Summary struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Errors  []SettlementError `json:"errors,omitempty"`
}

type SettlementError struct {
	TransactionID string `json:"transaction_id"`
	Reason        string `json:"reason"`
}

// BatchProcessor settles pending money movements: it claims CREATED
// transactions, applies the operation against the ledger and finalizes each
// row to DONE or FAILED. One failed transaction never aborts the pass.
type BatchProcessor struct {
	transactions repository.TransactionRepository
	users        repository.UserRepository
	ledger       repository.Ledger
	rates        service.RateProvider
	fees         *FeePolicy
	pageSize     int
	metrics      *metrics.Collector
	logger       *slog.Logger
}

func NewBatchProcessor(
	transactions repository.TransactionRepository,
	users repository.UserRepository,
	ledger repository.Ledger,
	rates service.RateProvider,
	fees *FeePolicy,
	pageSize int,
	collector *metrics.Collector,
	logger *slog.Logger,
) *BatchProcessor {
	if logger == nil {
		logger = slog.Default()
	}

	return &BatchProcessor{
		transactions: transactions,
		users:        users,
		ledger:       ledger,
		rates:        rates,
		fees:         fees,
		pageSize:     pageSize,
		metrics:      collector,
		logger:       logger,
	}
}

// RunPendingTransactions executes one sequential batch pass over a bounded
// page of CREATED transactions. Calling it again when the queue is drained
// finds nothing and returns an empty summary.
func (p *BatchProcessor) RunPendingTransactions(ctx context.Context) (Summary, error) {
	start := time.Now()
	var summary Summary

	cursor := NewCursor(p.transactions, p.pageSize)
	for {
		tx, err := cursor.Next(ctx)
		if err != nil {
			return summary, fmt.Errorf("failed to advance batch cursor: %w", err)
		}
		if tx == nil {
			break
		}
		summary.Total++

		total, err := p.settle(ctx, tx)
		if err != nil {
			p.markFailed(ctx, tx, err, &summary)
			continue
		}

		if err := p.transactions.Finalize(ctx, tx.ID, domain.StatusDone, &total); err != nil {
			p.markFailed(ctx, tx, err, &summary)
			continue
		}
		summary.Success++

		p.logger.InfoContext(ctx, "transaction settled",
			slog.String("transaction_id", tx.ID),
			slog.String("operation", string(tx.Operation)),
			slog.Float64("total", total))
	}

	if skipped := cursor.Skipped(); skipped > 0 {
		p.logger.InfoContext(ctx, "skipped transactions claimed by another run",
			slog.Int("count", skipped))
	}
	if p.metrics != nil {
		p.metrics.RecordBatch(time.Since(start), summary.Success, summary.Failed)
	}

	return summary, nil
}

func (p *BatchProcessor) markFailed(ctx context.Context, tx *domain.Transaction, cause error, summary *Summary) {
	summary.Failed++
	summary.Errors = append(summary.Errors, SettlementError{
		TransactionID: tx.ID,
		Reason:        cause.Error(),
	})

	p.logger.ErrorContext(ctx, "transaction failed",
		slog.String("transaction_id", tx.ID),
		slog.String("operation", string(tx.Operation)),
		slog.String("error", cause.Error()))

	if err := p.transactions.Finalize(ctx, tx.ID, domain.StatusFailed, nil); err != nil {
		p.logger.ErrorContext(ctx, "failed to mark transaction failed",
			slog.String("transaction_id", tx.ID),
			slog.String("error", err.Error()))
	}
}

// settle applies one claimed transaction and returns the origin account's
// post-settlement balance. Any error leaves balances untouched; partial work
// inside a transfer is rolled back by the ledger's batch contract.
func (p *BatchProcessor) settle(ctx context.Context, tx *domain.Transaction) (float64, error) {
	origin, err := p.ledger.GetAccount(ctx, tx.OriginAccountID)
	if err != nil {
		return 0, fmt.Errorf("origin account: %w", err)
	}
	destination, err := p.ledger.GetAccount(ctx, tx.DestinationAccountID)
	if err != nil {
		return 0, fmt.Errorf("destination account: %w", err)
	}

	// Only the destination account and its owning user are gated; deposits
	// and withdrawals hold the affected account in the origin field.
	if destination.Status != domain.AccountActive {
		return 0, fmt.Errorf("%w: account %s is %s", ErrNotEligible, destination.ID, destination.Status)
	}
	destinationUser, err := p.users.GetByID(ctx, destination.UserID)
	if err != nil {
		return 0, fmt.Errorf("destination user: %w", err)
	}
	if destinationUser.Status != domain.UserActive {
		return 0, fmt.Errorf("%w: user %s is %s", ErrNotEligible, destinationUser.ID, destinationUser.Status)
	}

	switch tx.Operation {
	case domain.OperationDeposit:
		return p.settleDeposit(ctx, tx, origin)
	case domain.OperationWithdrawal:
		return p.settleWithdrawal(ctx, tx, origin)
	case domain.OperationTransfer:
		return p.settleTransfer(ctx, tx, origin, destination)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedOperation, tx.Operation)
	}
}

// settleDeposit credits the origin account: a deposit row holds the recipient
// in its origin field by convention.
func (p *BatchProcessor) settleDeposit(ctx context.Context, tx *domain.Transaction, origin *domain.Account) (float64, error) {
	newTotal := money.Round4(origin.Total + tx.Amount)

	if _, err := p.ledger.ApplyBalanceUpdate(ctx, origin.ID, newTotal); err != nil {
		return 0, err
	}
	p.updateBalanceMetric(origin.ID, origin.Currency, newTotal)

	return newTotal, nil
}

func (p *BatchProcessor) settleWithdrawal(ctx context.Context, tx *domain.Transaction, origin *domain.Account) (float64, error) {
	newTotal := money.Round4(origin.Total - tx.Amount)
	if newTotal < 0 {
		return 0, fmt.Errorf("%w: withdrawal of %f would overdraw account %s",
			repository.ErrInvariantViolation, tx.Amount, origin.ID)
	}

	if _, err := p.ledger.ApplyBalanceUpdate(ctx, origin.ID, newTotal); err != nil {
		return 0, err
	}
	p.updateBalanceMetric(origin.ID, origin.Currency, newTotal)

	return newTotal, nil
}

func (p *BatchProcessor) settleTransfer(ctx context.Context, tx *domain.Transaction, origin, destination *domain.Account) (float64, error) {
	crossCurrency := origin.Currency != destination.Currency
	rate := p.rates.GetRate(ctx, origin.Currency, destination.Currency)
	fee := p.fees.ComputeFee(tx.Amount, crossCurrency)

	if origin.Total-(tx.Amount+fee) < 0 {
		return 0, fmt.Errorf("%w: transfer of %f plus fee %f would overdraw account %s",
			repository.ErrInvariantViolation, tx.Amount, fee, origin.ID)
	}

	// Each persisted total is rounded on its own: origin debit, destination
	// credit and fee snapshot do not share intermediate rounding.
	originTotal := money.Round4(origin.Total - (tx.Amount + fee))
	destinationTotal := money.Round4(destination.Total + tx.Amount*rate)

	reference := "Regular transfer"
	if crossCurrency {
		reference = fmt.Sprintf("Exchange from %s", origin.Currency)
	}

	// The mirror row lands in the destination's ledger already DONE, linked to
	// the settled transaction.
	mirror := &domain.Transaction{
		ID:                   uuid.NewString(),
		LinkedTransactionID:  tx.ID,
		Amount:               money.Round4(tx.Amount * rate),
		Total:                &destinationTotal,
		Operation:            domain.OperationTransfer,
		OperationStatus:      domain.StatusDone,
		OriginAccountID:      origin.ID,
		DestinationAccountID: destination.ID,
		Currency:             destination.Currency,
		UserID:               destination.UserID,
		Reference:            reference,
	}
	records := []*domain.Transaction{mirror}

	if crossCurrency {
		feeTotal := money.Round4(origin.Total - fee)
		records = append(records, &domain.Transaction{
			ID:                   uuid.NewString(),
			LinkedTransactionID:  tx.ID,
			Amount:               fee,
			Total:                &feeTotal,
			Operation:            domain.OperationFee,
			OperationStatus:      domain.StatusDone,
			OriginAccountID:      origin.ID,
			DestinationAccountID: origin.ID,
			Currency:             origin.Currency,
			UserID:               origin.UserID,
		})
	}

	updates := []domain.BalanceUpdate{
		{AccountID: origin.ID, NewTotal: originTotal},
		{AccountID: destination.ID, NewTotal: destinationTotal},
	}
	if err := p.ledger.ApplyBatchBalanceUpdate(ctx, updates, records); err != nil {
		return 0, err
	}
	p.updateBalanceMetric(origin.ID, origin.Currency, originTotal)
	p.updateBalanceMetric(destination.ID, destination.Currency, destinationTotal)

	return originTotal, nil
}

func (p *BatchProcessor) updateBalanceMetric(accountID, currency string, total float64) {
	if p.metrics != nil {
		p.metrics.UpdateAccountBalance(accountID, currency, total)
	}
}
