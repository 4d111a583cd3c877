package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/srm-sim/internal/contracts"
)

const namespace = "srm"

// Recorder exports session activity as Prometheus metrics.
// ⭐ SSOT: 모든 메트릭 정의는 여기서만
//
// It implements contracts.Recorder and is shared by every session it is
// attached to; all collectors are safe for concurrent use.
type Recorder struct {
	registry *prometheus.Registry

	turns          prometheus.Counter
	ordersPlaced   *prometheus.CounterVec
	ordersRejected *prometheus.CounterVec
	invoicesPaid   *prometheus.CounterVec
	paymentTiming  prometheus.Histogram
	penalties      *prometheus.GaugeVec
	gamesFinished  prometheus.Counter
	activeSessions prometheus.Gauge

	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
}

// NewRecorder registers all collectors on a fresh registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		turns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Total number of simulated days",
		}),
		ordersPlaced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Purchase orders accepted, by supplier and initial status",
		}, []string{"supplier", "status"}),
		ordersRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Purchase orders rejected, by supplier and reason",
		}, []string{"supplier", "reason"}),
		invoicesPaid: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_payments_total",
			Help:      "Invoice payments, by supplier",
		}, []string{"supplier"}),
		paymentTiming: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invoice_days_early",
			Help:      "Days before due date invoices were paid (negative = late)",
			Buckets:   []float64{-10, -5, -2, -1, 0, 1, 2, 5, 10},
		}),
		penalties: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_turn_cost",
			Help:      "Cumulative cost totals reported by the most recent turn",
		}, []string{"kind"}),
		gamesFinished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Sessions that played out their full horizon",
		}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of sessions currently hosted",
		}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
		requestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Total number of HTTP responses with status >= 400",
		}, []string{"method", "status"}),
	}
}

// TurnAdvanced implements contracts.Recorder
func (r *Recorder) TurnAdvanced(report *contracts.TurnReport) {
	r.turns.Inc()
	r.penalties.WithLabelValues("spend").Set(report.KPIs.Spend)
	r.penalties.WithLabelValues("rework").Set(report.KPIs.ReworkCost)
	r.penalties.WithLabelValues("stockout").Set(report.KPIs.StockoutPenalty)
	r.penalties.WithLabelValues("storage").Set(report.KPIs.StorageCost)
	if report.GameOver {
		r.gamesFinished.Inc()
	}
}

// OrderPlaced implements contracts.Recorder
func (r *Recorder) OrderPlaced(supplier contracts.SupplierID, status contracts.OrderStatus, qty int) {
	r.ordersPlaced.WithLabelValues(string(supplier), string(status)).Inc()
}

// OrderRejected implements contracts.Recorder
func (r *Recorder) OrderRejected(supplier contracts.SupplierID, reason error) {
	r.ordersRejected.WithLabelValues(string(supplier), RejectReason(reason)).Inc()
}

// InvoicePaid implements contracts.Recorder
func (r *Recorder) InvoicePaid(supplier contracts.SupplierID, amount float64, daysEarly int) {
	r.invoicesPaid.WithLabelValues(string(supplier)).Inc()
	r.paymentTiming.Observe(float64(daysEarly))
}

// SetActiveSessions reports how many sessions a host currently holds
func (r *Recorder) SetActiveSessions(n int) {
	r.activeSessions.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests, extra collectors)
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Middleware tracks request duration and error counts
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, req)

		status := strconv.Itoa(sw.status)
		r.requestDuration.WithLabelValues(req.Method, status).Observe(time.Since(start).Seconds())
		if sw.status >= 400 {
			r.requestErrors.WithLabelValues(req.Method, status).Inc()
		}
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the middleware
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("metrics: response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}
