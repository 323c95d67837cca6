package metrics

import "github.com/prometheus/client_golang/prometheus"

// CheckoutMetrics counts submission attempts by flow (order/purchase) and
// outcome (submitted, rejected, failed).
type CheckoutMetrics struct {
	submissions *prometheus.CounterVec
}

// NewCheckoutMetrics registers the submission counters on the provided
// registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Order submissions, by flow and outcome.",
	}, []string{"flow", "outcome"})
	reg.MustRegister(submissions)
	return &CheckoutMetrics{submissions: submissions}
}

// IncSubmission increments the counter for the given flow and outcome.
func (c *CheckoutMetrics) IncSubmission(flow, outcome string) {
	if c == nil || c.submissions == nil {
		return
	}
	c.submissions.WithLabelValues(normalizeLabel(flow), normalizeLabel(outcome)).Inc()
}
