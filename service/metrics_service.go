package service

import (
	"context"
	"fmt"
	"github.com/op/go-logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

// MetricsService serves Prometheus metrics on /metrics and a
// liveness check on /ping, so monitoring can tell a stuck
// dep_worker from a dead one.
type MetricsService struct {
	port       int
	gatherer   prometheus.Gatherer
	messageLog *logging.Logger
	server     *http.Server
}

func NewMetricsService(port int, gatherer prometheus.Gatherer, messageLog *logging.Logger) *MetricsService {
	return &MetricsService{
		port:       port,
		gatherer:   gatherer,
		messageLog: messageLog,
	}
}

// Handler returns the service's routes.
func (service *MetricsService) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(service.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/ping", pingHandler)
	return mux
}

// Serve listens on the service's port until Shutdown is called.
// It returns nil after a clean shutdown.
func (service *MetricsService) Serve() error {
	service.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", service.port),
		Handler: service.Handler(),
	}
	service.messageLog.Infof("Metrics service listening on port %d", service.port)
	err := service.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (service *MetricsService) Shutdown(ctx context.Context) error {
	if service.server == nil {
		return nil
	}
	return service.server.Shutdown(ctx)
}

func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, "pong")
}
