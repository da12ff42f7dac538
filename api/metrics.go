/*
metrics.go - Prometheus metrics for the allocation engine

PURPOSE:
  Operational counters and gauges exposed on /metrics: allocation
  outcomes per category, pack outcomes, releases, ban reports, delivery
  failures, and the current availability per category (refreshed by the
  panel scheduler).

SEE ALSO:
  - handlers.go: Increments outcome counters
  - scheduler.go: Sets the availability gauges
*/
package api

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/warp/account-pool/pool"
)

var (
	claimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pool_claims_total",
			Help: "Single-account allocation requests by category and outcome",
		},
		[]string{"category", "outcome"},
	)

	packsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pool_packs_total",
			Help: "Pack allocation requests by outcome",
		},
		[]string{"outcome"},
	)

	releasesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pool_releases_total",
			Help: "Accounts returned to the pool",
		},
	)

	bansTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pool_ban_reports_total",
			Help: "Ban annotations recorded",
		},
	)

	deliveryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pool_delivery_failures_total",
			Help: "Payload deliveries that could not reach the user",
		},
	)

	availableAccounts = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pool_available_accounts",
			Help: "Currently unclaimed accounts per category",
		},
		[]string{"category"},
	)
)

// outcomeLabel classifies a request result for the counters.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "delivered"
	case errors.Is(err, pool.ErrNoStock):
		return "no_stock"
	case errors.Is(err, pool.ErrBusy):
		return "busy"
	case errors.Is(err, pool.ErrCoolingDown):
		return "cooldown"
	case errors.Is(err, pool.ErrDeliveryFailed):
		return "delivery_failed"
	case errors.Is(err, pool.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
