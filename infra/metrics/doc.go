// Package metrics provides the Prometheus and InfluxDB run sinks.
package metrics
