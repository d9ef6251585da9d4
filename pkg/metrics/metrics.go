package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ssargent/ypbank/pkg/codec"
	"github.com/ssargent/ypbank/pkg/compare"
	"github.com/ssargent/ypbank/pkg/txn"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	opDecode = "decode"
	opEncode = "encode"
)

// Metrics holds the Prometheus metrics of one tool run
type Metrics struct {
	registry *prometheus.Registry

	// Codec metrics
	codecOperationsTotal *prometheus.CounterVec
	codecRecordsTotal    *prometheus.CounterVec
	codecErrorsTotal     *prometheus.CounterVec
	codecDuration        *prometheus.HistogramVec

	// Comparison metrics
	compareTransactionsTotal *prometheus.CounterVec
	compareDuplicatesTotal   *prometheus.CounterVec
}

// NewMetrics creates all metrics on a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		codecOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ypbank_codec_operations_total",
				Help: "Total number of decode and encode calls",
			},
			[]string{"format", "operation", "status"},
		),

		codecRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ypbank_codec_records_total",
				Help: "Total number of transaction records decoded or encoded",
			},
			[]string{"format", "operation"},
		),

		codecErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ypbank_codec_errors_total",
				Help: "Total number of codec failures by error kind",
			},
			[]string{"format", "operation", "kind"},
		),

		codecDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ypbank_codec_duration_seconds",
				Help:    "Codec call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "operation"},
		),

		compareTransactionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ypbank_compare_transactions_total",
				Help: "Total number of compared transaction ids by outcome",
			},
			[]string{"class"},
		),

		compareDuplicatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ypbank_compare_duplicates_total",
				Help: "Total number of duplicate ids skipped by the comparator",
			},
			[]string{"side"},
		),
	}
}

// Registry exposes the private registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordCodecOperation records a single decode or encode call
func (m *Metrics) RecordCodecOperation(format codec.Format, operation string, records int, err error, duration time.Duration) {
	f := format.String()
	status := statusSuccess
	if err != nil {
		status = statusError
		m.codecErrorsTotal.WithLabelValues(f, operation, codec.KindOf(err).String()).Inc()
	}

	m.codecOperationsTotal.WithLabelValues(f, operation, status).Inc()
	m.codecRecordsTotal.WithLabelValues(f, operation).Add(float64(records))
	m.codecDuration.WithLabelValues(f, operation).Observe(duration.Seconds())
}

// ObserveReport records the outcome counts of a comparison
func (m *Metrics) ObserveReport(r *compare.Report) {
	for _, c := range compare.Classes() {
		m.compareTransactionsTotal.WithLabelValues(c.String()).Add(float64(r.Count(c)))
	}
	m.compareDuplicatesTotal.WithLabelValues("a").Add(float64(len(r.DuplicatesA)))
	m.compareDuplicatesTotal.WithLabelValues("b").Add(float64(len(r.DuplicatesB)))
}

// WriteTextfile writes the registry in the text exposition format,
// suitable for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Wrap instruments c so every call is recorded.
func (m *Metrics) Wrap(c codec.Codec) codec.Codec {
	return &instrumentedCodec{next: c, metrics: m}
}

type instrumentedCodec struct {
	next    codec.Codec
	metrics *Metrics
}

func (c *instrumentedCodec) Format() codec.Format {
	return c.next.Format()
}

func (c *instrumentedCodec) Decode(r io.Reader) ([]txn.Transaction, error) {
	start := time.Now()
	txs, err := c.next.Decode(r)
	c.metrics.RecordCodecOperation(c.next.Format(), opDecode, len(txs), err, time.Since(start))
	return txs, err
}

func (c *instrumentedCodec) Encode(w io.Writer, txs []txn.Transaction) error {
	start := time.Now()
	err := c.next.Encode(w, txs)
	written := len(txs)
	if err != nil {
		written = 0
	}
	c.metrics.RecordCodecOperation(c.next.Format(), opEncode, written, err, time.Since(start))
	return err
}
