package ft8

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

/*
 * Prometheus instrumentation for the decoder, in the style of
 * ka9q_ubersdr's prometheus.go: a struct of pre-registered collectors built
 * with promauto, with Record* methods that are nil-receiver safe so callers
 * don't need to guard every call site when metrics are disabled.
 */

// Metrics holds the Prometheus collectors for one decoder instance.
type Metrics struct {
	candidatesFound  *prometheus.CounterVec // sync candidates found, by protocol
	decodesAttempted *prometheus.CounterVec // LDPC decode attempts, by protocol
	decodesSucceeded *prometheus.CounterVec // LDPC decodes that converged and passed CRC, by protocol
	ldpcFailures     *prometheus.CounterVec // LDPC decodes that did not converge, by protocol
	crcFailures      *prometheus.CounterVec // converged codewords that failed CRC, by protocol
	duplicatesDropped *prometheus.CounterVec // decodes suppressed by the dedup set, by protocol
	messagesEmitted  *prometheus.CounterVec // final, unique, CRC-valid messages emitted, by protocol
	slotDuration     *prometheus.HistogramVec // wall-clock time to process one slot, by protocol
	hashTableSize    *prometheus.GaugeVec     // occupied callsign hash table slots, by protocol
}

// NewMetrics creates and registers the decoder's Prometheus collectors
// against the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		candidatesFound: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ft8dec_candidates_found_total",
				Help: "Total sync candidates found, by protocol",
			},
			[]string{"protocol"},
		),
		decodesAttempted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ft8dec_decode_attempts_total",
				Help: "Total LDPC decode attempts, by protocol",
			},
			[]string{"protocol"},
		),
		decodesSucceeded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ft8dec_decode_success_total",
				Help: "Total LDPC decodes that converged to a valid codeword, by protocol",
			},
			[]string{"protocol"},
		),
		ldpcFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ft8dec_ldpc_failures_total",
				Help: "Total LDPC decodes that did not converge, by protocol",
			},
			[]string{"protocol"},
		),
		crcFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ft8dec_crc_failures_total",
				Help: "Total converged codewords that failed the CRC-14 check, by protocol",
			},
			[]string{"protocol"},
		),
		duplicatesDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ft8dec_duplicates_dropped_total",
				Help: "Total decodes suppressed as duplicates within a slot, by protocol",
			},
			[]string{"protocol"},
		),
		messagesEmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ft8dec_messages_emitted_total",
				Help: "Total unique, CRC-valid messages emitted, by protocol",
			},
			[]string{"protocol"},
		),
		slotDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ft8dec_slot_duration_seconds",
				Help:    "Wall-clock time to process one decode slot, by protocol",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
			},
			[]string{"protocol"},
		),
		hashTableSize: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ft8dec_hashtable_occupied_slots",
				Help: "Occupied slots in the callsign hash table, by protocol",
			},
			[]string{"protocol"},
		),
	}
}

func (m *Metrics) RecordCandidatesFound(protocol Protocol, n int) {
	if m == nil {
		return
	}
	m.candidatesFound.WithLabelValues(protocol.String()).Add(float64(n))
}

func (m *Metrics) RecordDecodeAttempt(protocol Protocol) {
	if m == nil {
		return
	}
	m.decodesAttempted.WithLabelValues(protocol.String()).Inc()
}

func (m *Metrics) RecordDecodeSuccess(protocol Protocol) {
	if m == nil {
		return
	}
	m.decodesSucceeded.WithLabelValues(protocol.String()).Inc()
}

func (m *Metrics) RecordLDPCFailure(protocol Protocol) {
	if m == nil {
		return
	}
	m.ldpcFailures.WithLabelValues(protocol.String()).Inc()
}

func (m *Metrics) RecordCRCFailure(protocol Protocol) {
	if m == nil {
		return
	}
	m.crcFailures.WithLabelValues(protocol.String()).Inc()
}

func (m *Metrics) RecordDuplicateDropped(protocol Protocol) {
	if m == nil {
		return
	}
	m.duplicatesDropped.WithLabelValues(protocol.String()).Inc()
}

func (m *Metrics) RecordMessageEmitted(protocol Protocol) {
	if m == nil {
		return
	}
	m.messagesEmitted.WithLabelValues(protocol.String()).Inc()
}

func (m *Metrics) RecordSlotDuration(protocol Protocol, seconds float64) {
	if m == nil {
		return
	}
	m.slotDuration.WithLabelValues(protocol.String()).Observe(seconds)
}

func (m *Metrics) SetHashTableSize(protocol Protocol, n int) {
	if m == nil {
		return
	}
	m.hashTableSize.WithLabelValues(protocol.String()).Set(float64(n))
}
