package metrics

import "github.com/prometheus/client_golang/prometheus"

// NotifyMetrics counts fire-and-forget side-channel deliveries.
type NotifyMetrics struct {
	sent   *prometheus.CounterVec
	failed *prometheus.CounterVec
}

// NewNotifyMetrics registers the notification metrics on the provided registerer.
func NewNotifyMetrics(reg prometheus.Registerer) *NotifyMetrics {
	if reg == nil {
		return &NotifyMetrics{}
	}
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_sent_total",
		Help: "Side-channel notifications delivered.",
	}, []string{"channel"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_failed_total",
		Help: "Side-channel notifications that failed.",
	}, []string{"channel"})
	reg.MustRegister(sent, failed)
	return &NotifyMetrics{sent: sent, failed: failed}
}

func (n *NotifyMetrics) IncSent(channel string) {
	if n == nil || n.sent == nil {
		return
	}
	n.sent.WithLabelValues(normalizeLabel(channel)).Inc()
}

func (n *NotifyMetrics) IncFailed(channel string) {
	if n == nil || n.failed == nil {
		return
	}
	n.failed.WithLabelValues(normalizeLabel(channel)).Inc()
}
