// Package metrics collects Prometheus metrics for a single tool run.
//
// The command-line tools are short-lived, so nothing is served over HTTP.
// Instead the registry is written once at exit to a file in the text
// exposition format, which the node exporter textfile collector picks up:
//
//	m := metrics.NewMetrics()
//	c := m.Wrap(csvCodec)
//	txs, err := c.Decode(f)
//	...
//	_ = m.WriteTextfile("/var/lib/node_exporter/ypbank.prom")
package metrics
