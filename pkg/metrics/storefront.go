package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records counters for the order and upload flows.
type StorefrontMetrics struct {
	ordersSubmitted *prometheus.CounterVec
	uploads         *prometheus.CounterVec
	uploadFailures  *prometheus.CounterVec
	linkRequests    prometheus.Counter
}

// NewStorefrontMetrics registers the storefront counters on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	ordersSubmitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Line items accepted into carts.",
	}, []string{"service"})
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "asset_uploads_total",
		Help: "Design asset upload attempts.",
	}, []string{"outcome"})
	uploadFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "asset_upload_failures_total",
		Help: "Design asset uploads that the image host rejected.",
	}, []string{"reason"})
	linkRequests := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_link_requests_total",
		Help: "Sign-in link requests accepted.",
	})
	reg.MustRegister(ordersSubmitted, uploads, uploadFailures, linkRequests)
	return &StorefrontMetrics{
		ordersSubmitted: ordersSubmitted,
		uploads:         uploads,
		uploadFailures:  uploadFailures,
		linkRequests:    linkRequests,
	}
}

// IncOrderSubmitted counts one accepted line item for the named print service.
func (m *StorefrontMetrics) IncOrderSubmitted(service string) {
	if m == nil || m.ordersSubmitted == nil {
		return
	}
	m.ordersSubmitted.WithLabelValues(normalizeLabel(service)).Inc()
}

// IncUpload counts one upload attempt with the given outcome ("ok"/"failed").
func (m *StorefrontMetrics) IncUpload(outcome string) {
	if m == nil || m.uploads == nil {
		return
	}
	m.uploads.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncUploadFailure counts a host-side upload rejection.
func (m *StorefrontMetrics) IncUploadFailure(reason string) {
	if m == nil || m.uploadFailures == nil {
		return
	}
	m.uploadFailures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncLinkRequest counts one accepted sign-in link request.
func (m *StorefrontMetrics) IncLinkRequest() {
	if m == nil || m.linkRequests == nil {
		return
	}
	m.linkRequests.Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
