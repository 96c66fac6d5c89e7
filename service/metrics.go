package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"time"
)

// DepositMetrics counts deposit attempts and status refreshes.
type DepositMetrics struct {
	deposits        *prometheus.CounterVec
	depositDuration *prometheus.HistogramVec
	refreshes       *prometheus.CounterVec
}

// NewDepositMetrics creates the deposit metrics and registers them
// with registerer.
func NewDepositMetrics(registerer prometheus.Registerer) *DepositMetrics {
	factory := promauto.With(registerer)
	return &DepositMetrics{
		deposits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deposit_attempts_total",
			Help: "Number of deposit attempts, by repository and resulting status.",
		}, []string{"repository", "status"}),
		depositDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deposit_duration_seconds",
			Help:    "Duration of deposit attempts.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"repository"}),
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deposit_refreshes_total",
			Help: "Number of deposit status refreshes, by resulting status.",
		}, []string{"status"}),
	}
}

func (metrics *DepositMetrics) ObserveDeposit(repository, status string, duration time.Duration) {
	metrics.deposits.WithLabelValues(repository, status).Inc()
	metrics.depositDuration.WithLabelValues(repository).Observe(duration.Seconds())
}

func (metrics *DepositMetrics) ObserveRefresh(status string) {
	metrics.refreshes.WithLabelValues(status).Inc()
}
