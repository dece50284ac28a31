package middleware

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	rpcRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "equishare",
			Name:      "rpc_requests_total",
			Help:      "Total number of RPCs by procedure and result code",
		},
		[]string{"procedure", "code"},
	)
	rpcRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "equishare",
			Name:      "rpc_request_duration_seconds",
			Help:      "Duration of RPCs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"procedure"},
	)
	expensesSettledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "equishare",
			Name:      "expenses_settled_total",
			Help:      "Number of expenses whose last outstanding split was cleared",
		},
	)
)

// MetricsHandler serves the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordExpenseSettled counts one fully settled expense.
func RecordExpenseSettled() {
	expensesSettledTotal.Inc()
}

// MetricsInterceptor counts every RPC by procedure and Connect code and
// observes its latency.
func MetricsInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			rpcRequestsTotal.WithLabelValues(procedure, code).Inc()
			rpcRequestDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}
