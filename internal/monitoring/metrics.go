// Package monitoring exposes the Prometheus metrics for the service.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubtix_http_requests_total",
		Help: "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clubtix_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	TicketsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubtix_tickets_issued_total",
		Help: "Tickets issued, including transfer reissues.",
	})

	TicketScans = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubtix_ticket_scans_total",
		Help: "Ticket scan attempts by outcome.",
	}, []string{"outcome"})

	TransfersAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubtix_transfers_accepted_total",
		Help: "Ticket transfer requests accepted.",
	})
)
