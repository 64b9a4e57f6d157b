// Package metrics provides build and stage observability for doxybuild.
//
// Components receive a Recorder and default to NoopRecorder, so metrics can
// be switched on without nil checks at call sites:
//
//	rec := metrics.NewPrometheusRecorder(reg)
//	runner := pipeline.NewRunner(cfg, pipeline.WithRecorder(rec))
//
// One-shot builds can persist the registry with WriteTextfile for the node
// exporter textfile collector; watch mode serves it with HTTPHandler.
package metrics
