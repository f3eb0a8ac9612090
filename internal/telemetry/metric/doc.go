// Package metric provides Prometheus metrics for wssviz render runs.
//
// A Registry is created per run. There is no HTTP endpoint: when a
// textfile path is configured the registry is written once at the end of
// the run in the node_exporter textfile format.
package metric
