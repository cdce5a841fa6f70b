// Package metrics exposes Prometheus collectors for searches and HTTP traffic.
//
// Collectors are package globals. Call Register once from main before
// serving /metrics.
package metrics
