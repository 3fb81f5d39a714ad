package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the privacy service.
type Metrics struct {
	ConsentsGranted    *prometheus.CounterVec
	ConsentsRevoked    *prometheus.CounterVec
	ConsentCheckPassed *prometheus.CounterVec
	ConsentCheckFailed *prometheus.CounterVec

	SettingsUpdates        prometheus.Counter
	ConsentMirrorFailures  *prometheus.CounterVec
	DataExports            prometheus.Counter
	DataErasures           prometheus.Counter
	ErasureKeyFailures     prometheus.Counter
	StoreOperationLatency  *prometheus.HistogramVec
	AccessLogEntriesTotal  prometheus.Counter
	AccessLogEntriesCapped prometheus.Counter
}

// New registers and returns the service metrics collectors.
func New() *Metrics {
	return &Metrics{
		ConsentsGranted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "helpmoto_consents_granted_total",
			Help: "Total number of consents granted, labeled by data type and purpose",
		}, []string{"data_type", "purpose"}),
		ConsentsRevoked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "helpmoto_consents_revoked_total",
			Help: "Total number of consents revoked, labeled by data type and purpose",
		}, []string{"data_type", "purpose"}),
		ConsentCheckPassed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "helpmoto_consent_checks_passed_total",
			Help: "Total number of consent checks that passed, labeled by data type and purpose",
		}, []string{"data_type", "purpose"}),
		ConsentCheckFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "helpmoto_consent_checks_failed_total",
			Help: "Total number of consent checks that failed, labeled by data type and purpose",
		}, []string{"data_type", "purpose"}),
		SettingsUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "helpmoto_privacy_settings_updates_total",
			Help: "Total number of privacy settings updates",
		}),
		ConsentMirrorFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "helpmoto_consent_mirror_failures_total",
			Help: "Total number of settings toggles that failed to mirror into the consent ledger",
		}, []string{"setting"}),
		DataExports: promauto.NewCounter(prometheus.CounterOpts{
			Name: "helpmoto_data_exports_total",
			Help: "Total number of data portability exports",
		}),
		DataErasures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "helpmoto_data_erasures_total",
			Help: "Total number of right-to-be-forgotten erasure requests",
		}),
		ErasureKeyFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "helpmoto_erasure_key_failures_total",
			Help: "Total number of individual key removals that failed during erasure",
		}),
		StoreOperationLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helpmoto_secure_store_operation_latency_seconds",
			Help:    "Latency of secure store operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
		AccessLogEntriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "helpmoto_access_log_entries_total",
			Help: "Total number of data access log entries recorded",
		}),
		AccessLogEntriesCapped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "helpmoto_access_log_entries_evicted_total",
			Help: "Total number of access log entries evicted by the FIFO cap",
		}),
	}
}

func (m *Metrics) IncrementConsentsGranted(dataType, purpose string) {
	m.ConsentsGranted.WithLabelValues(dataType, purpose).Inc()
}

func (m *Metrics) IncrementConsentsRevoked(dataType, purpose string) {
	m.ConsentsRevoked.WithLabelValues(dataType, purpose).Inc()
}

func (m *Metrics) IncrementConsentCheckPassed(dataType, purpose string) {
	m.ConsentCheckPassed.WithLabelValues(dataType, purpose).Inc()
}

func (m *Metrics) IncrementConsentCheckFailed(dataType, purpose string) {
	m.ConsentCheckFailed.WithLabelValues(dataType, purpose).Inc()
}

func (m *Metrics) IncrementSettingsUpdates() {
	m.SettingsUpdates.Inc()
}

func (m *Metrics) IncrementConsentMirrorFailures(setting string) {
	m.ConsentMirrorFailures.WithLabelValues(setting).Inc()
}

func (m *Metrics) IncrementDataExports() {
	m.DataExports.Inc()
}

func (m *Metrics) IncrementDataErasures() {
	m.DataErasures.Inc()
}

func (m *Metrics) IncrementErasureKeyFailures() {
	m.ErasureKeyFailures.Inc()
}

func (m *Metrics) ObserveStoreOperationLatency(operation string, durationSeconds float64) {
	m.StoreOperationLatency.WithLabelValues(operation).Observe(durationSeconds)
}

func (m *Metrics) IncrementAccessLogEntries() {
	m.AccessLogEntriesTotal.Inc()
}

func (m *Metrics) IncrementAccessLogEvictions(count float64) {
	m.AccessLogEntriesCapped.Add(count)
}
