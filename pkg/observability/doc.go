/*
Package observability exposes Prometheus metrics for host sessions.

Metrics are fed by session hooks, so they observe the same ordered event
stream as every other subscriber of a connector.
*/
package observability
