// Package server serves search over HTTP with chi.
//
// Routes:
//
//	POST /v1/search  {"query": "...", "userId": "..."} -> core.Answer
//	GET  /health
//	GET  /metrics    Prometheus exposition
package server
