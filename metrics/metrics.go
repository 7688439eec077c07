package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const prefix = "supplier_compliance"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	SituationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "situation_transitions_total",
			Help: "Situation rows appended, by status and pendency reason",
		},
		[]string{"status", "reason"},
	)
	ApprovalDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approval_decisions_total",
			Help: "Approval step decisions, by outcome",
		},
		[]string{"outcome"},
	)
	ApprovalFlowsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "approval_flows_started_total",
			Help: "Approval flows started",
		},
	)
	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Approver notification attempts, by result",
		},
		[]string{"result"},
	)
	SupplierEvaluations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "supplier_evaluations_total",
			Help: "Supplier evaluations recorded",
		},
	)
)

// RecordSituation increments the transition counter.
func RecordSituation(status, reason string) {
	if reason == "" {
		reason = "none"
	}
	SituationTransitions.WithLabelValues(status, reason).Inc()
}

func RecordDecision(approved bool) {
	if approved {
		ApprovalDecisions.WithLabelValues("approved").Inc()
		return
	}
	ApprovalDecisions.WithLabelValues("rejected").Inc()
}

func RecordNotification(err error) {
	if err != nil {
		Notifications.WithLabelValues("failed").Inc()
		return
	}
	Notifications.WithLabelValues("sent").Inc()
}

// Middleware adds prometheus metrics to track HTTP requests
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		path := c.Route().Path
		code := strconv.Itoa(status)
		HTTPRequestsTotal.WithLabelValues(c.Method(), path, code).Inc()
		HTTPRequestDuration.WithLabelValues(c.Method(), path, code).Observe(time.Since(start).Seconds())
		return err
	}
}
