// internal/metrics/metrics.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Total level reads attempted.
var Reads = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "depthbridge_reads_total",
		Help: "The total number of level reads attempted",
	},
)

// Failed reads, labeled by Modbus exception code (1 = generic transport error).
var ReadErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "depthbridge_read_errors_total",
		Help: "The total number of failed level reads",
	},
	[]string{"code"},
)

var Reconnects = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "depthbridge_reconnects_total",
		Help: "Session teardown and rediscovery attempts",
	},
	[]string{"result"},
)

var Level = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "depthbridge_level",
		Help: "Last published level, in sensor units",
	},
)

var UpdateIndex = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "depthbridge_update_index",
		Help: "Last published update index",
	},
)

var ReadDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name: "depthbridge_read_duration_seconds",
		Help: "Serial round trip time of one level read",
		// Bounded by the transport timeout (3-5 s)
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 3, 5},
	},
)

func ObserveRead(d time.Duration, code uint16) {
	Reads.Inc()
	ReadDuration.Observe(d.Seconds())
	if code != 0 {
		ReadErrors.WithLabelValues(strconv.Itoa(int(code))).Inc()
	}
}

func ObserveReconnect(err error) {
	if err != nil {
		Reconnects.WithLabelValues("failed").Inc()
		return
	}
	Reconnects.WithLabelValues("ok").Inc()
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("prometheus metrics available", zap.String("addr", addr), zap.String("path", "/metrics"))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn("metrics server failed", zap.Error(err))
	}
}
