// Package metrics defines how simulation runs are reported to observability
// backends. Sinks implement MetricsSink and optionally the narrower recorder
// interfaces; NewMetricsSink builds them from configuration and combines
// several into a MultiSink.
package metrics
