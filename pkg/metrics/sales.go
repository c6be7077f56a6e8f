package metrics

import "github.com/prometheus/client_golang/prometheus"

// SalesMetrics counts ledger activity.
type SalesMetrics struct {
	registered    prometheus.Counter
	cancellations prometheus.Counter
}

// NewSalesMetrics registers the sales counters on the provided registerer.
func NewSalesMetrics(reg prometheus.Registerer) *SalesMetrics {
	if reg == nil {
		return &SalesMetrics{}
	}
	registered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sales_registered_total",
		Help: "Sales accepted by the ledger.",
	})
	cancellations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sales_canceled_total",
		Help: "Sales canceled within the allowed window.",
	})
	reg.MustRegister(registered, cancellations)
	return &SalesMetrics{
		registered:    registered,
		cancellations: cancellations,
	}
}

// IncRegistered increments the registered-sale counter.
func (s *SalesMetrics) IncRegistered() {
	if s == nil || s.registered == nil {
		return
	}
	s.registered.Inc()
}

// IncCanceled increments the canceled-sale counter.
func (s *SalesMetrics) IncCanceled() {
	if s == nil || s.cancellations == nil {
		return
	}
	s.cancellations.Inc()
}
