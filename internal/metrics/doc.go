// Package metrics records generation run metrics.
//
// Components receive a Recorder and call it unconditionally. NoopRecorder is
// the default; PrometheusRecorder collects into a registry that can be
// exported to a node_exporter textfile after each run:
//
//	reg := prom.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	// ... run ...
//	_ = metrics.WriteTextfile(path, reg)
package metrics
