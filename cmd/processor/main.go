package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bank_ledger/internal/config"
	"bank_ledger/internal/domain"
	"bank_ledger/internal/processor"
	"bank_ledger/internal/repository"
	"bank_ledger/internal/repository/memory"
	"bank_ledger/internal/repository/postgres"
	"bank_ledger/internal/service"
	"bank_ledger/internal/worker"
	"bank_ledger/pkg/metrics"
)

const appName = "bank_ledger"

type repositories struct {
	accounts     repository.AccountRepository
	users        repository.UserRepository
	transactions repository.TransactionRepository
	currencies   repository.CurrencyRepository
	ledger       repository.Ledger
	pool         *pgxpool.Pool
}

func main() {
	logger := setupLogger()
	logger.Info("Starting application", slog.String("name", appName))

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos, err := setupRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to set up repositories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := seedCurrencies(ctx, repos.currencies, cfg.Currencies); err != nil {
		logger.Error("Failed to seed currencies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	collector := metrics.NewCollector(logger)
	rates := service.NewRateService(cfg.RateAPIURL, cfg.RateAPIKey, cfg.RateFallback, cfg.RateTimeout, nil, logger)
	fees := processor.NewFeePolicy(cfg.FeeRate)

	batchProcessor := processor.NewBatchProcessor(
		repos.transactions, repos.users, repos.ledger, rates, fees,
		cfg.BatchPageSize, collector, logger)
	activation := processor.NewActivationBatch(
		repos.accounts, repos.users, cfg.BatchPageSize, collector, logger)
	batchWorker := worker.NewBatchWorker(batchProcessor, activation, cfg.BatchInterval, logger)

	workerCtx, stopWorker := context.WithCancel(ctx)
	go batchWorker.Run(workerCtx)

	metricsServer := collector.StartMetricsServer(cfg.MetricsAddr)

	waitForShutdown(logger, stopWorker, metricsServer, repos.pool)
	logger.Info("Application shutdown complete")
}

func setupLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

func setupRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("No DATABASE_URL configured, using in-memory store")
		store := memory.NewStore()
		return &repositories{
			accounts:     memory.NewAccountRepository(store),
			users:        memory.NewUserRepository(store),
			transactions: memory.NewTransactionRepository(store),
			currencies:   memory.NewCurrencyRepository(store),
			ledger:       memory.NewLedger(store),
		}, nil
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("Connected to postgres")
	return &repositories{
		accounts:     postgres.NewAccountRepository(pool),
		users:        postgres.NewUserRepository(pool),
		transactions: postgres.NewTransactionRepository(pool),
		currencies:   postgres.NewCurrencyRepository(pool),
		ledger:       postgres.NewLedger(pool),
		pool:         pool,
	}, nil
}

func seedCurrencies(ctx context.Context, currencies repository.CurrencyRepository, names []string) error {
	for _, name := range names {
		if _, err := currencies.GetByName(ctx, name); err == nil {
			continue
		}
		if err := currencies.Save(ctx, &domain.Currency{Name: name}); err != nil {
			return err
		}
	}
	return nil
}

func waitForShutdown(logger *slog.Logger, stopWorker context.CancelFunc, metricsServer *http.Server, pool *pgxpool.Pool) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("Shutdown signal received")

	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Error("Metrics server shutdown failed", slog.String("error", err.Error()))
	}
	if pool != nil {
		pool.Close()
	}
}
