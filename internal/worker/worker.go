package worker

import (
	"context"
	"log/slog"
	"time"

	"bank_ledger/internal/processor"
)

// BatchWorker drives the batches on a fixed interval: activation first so
// freshly approved accounts and users are visible to settlement, then the
// transaction pass.
type BatchWorker struct {
	processor  *processor.BatchProcessor
	activation *processor.ActivationBatch
	interval   time.Duration
	logger     *slog.Logger
}

func NewBatchWorker(
	batchProcessor *processor.BatchProcessor,
	activation *processor.ActivationBatch,
	interval time.Duration,
	logger *slog.Logger,
) *BatchWorker {
	if logger == nil {
		logger = slog.Default()
	}

	return &BatchWorker{
		processor:  batchProcessor,
		activation: activation,
		interval:   interval,
		logger:     logger,
	}
}

func (w *BatchWorker) Run(ctx context.Context) {
	w.logger.InfoContext(ctx, "batch worker started", slog.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "batch worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *BatchWorker) runOnce(ctx context.Context) {
	if summary, err := w.activation.ActivatePendingUsers(ctx); err != nil {
		w.logger.ErrorContext(ctx, "user activation pass failed", slog.String("error", err.Error()))
	} else if summary.Total > 0 {
		w.logger.InfoContext(ctx, "user activation pass finished", slog.Int("total", summary.Total))
	}

	if summary, err := w.activation.ActivatePendingAccounts(ctx); err != nil {
		w.logger.ErrorContext(ctx, "account activation pass failed", slog.String("error", err.Error()))
	} else if summary.Total > 0 {
		w.logger.InfoContext(ctx, "account activation pass finished", slog.Int("total", summary.Total))
	}

	summary, err := w.processor.RunPendingTransactions(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "transaction pass failed", slog.String("error", err.Error()))
		return
	}
	if summary.Total > 0 {
		w.logger.InfoContext(ctx, "transaction pass finished",
			slog.Int("total", summary.Total),
			slog.Int("success", summary.Success),
			slog.Int("failed", summary.Failed))
	}
}
