package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry            *prometheus.Registry
	batchRuns           prometheus.Counter
	transactionsSettled prometheus.Counter
	transactionsFailed  prometheus.Counter
	batchDuration       prometheus.Histogram
	entitiesActivated   *prometheus.CounterVec
	accountBalance      *prometheus.GaugeVec
	logger              *slog.Logger
}

func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	collector := &Collector{
		registry: registry,
		batchRuns: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "batch_runs_total",
			Help: "Total number of batch passes executed",
		}),
		transactionsSettled: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "transactions_settled_total",
			Help: "Total number of transactions settled as done",
		}),
		transactionsFailed: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "transactions_failed_total",
			Help: "Total number of transactions marked failed",
		}),
		batchDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "batch_duration_seconds",
			Help:    "Time taken by one batch pass",
			Buckets: prometheus.DefBuckets,
		}),
		entitiesActivated: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "entities_activated_total",
			Help: "Entities promoted from created to active by the activation batch",
		}, []string{"kind"}),
		accountBalance: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "account_balance",
			Help: "Current account balance",
		}, []string{"account_id", "currency"}),
		logger: logger,
	}

	return collector
}

func (m *Collector) RecordBatch(duration time.Duration, success, failed int) {
	m.batchRuns.Inc()
	m.transactionsSettled.Add(float64(success))
	m.transactionsFailed.Add(float64(failed))
	m.batchDuration.Observe(duration.Seconds())
}

func (m *Collector) RecordActivation(kind string, count int) {
	m.entitiesActivated.WithLabelValues(kind).Add(float64(count))
}

func (m *Collector) UpdateAccountBalance(accountID, currency string, balance float64) {
	m.accountBalance.WithLabelValues(accountID, currency).Set(balance)
}

func (m *Collector) GetHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Collector) StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.GetHandler())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		m.logger.Info("Starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server
}

func (m *Collector) Shutdown(ctx context.Context) error {
	m.logger.Info("Metrics collector shutdown complete")
	return nil
}
