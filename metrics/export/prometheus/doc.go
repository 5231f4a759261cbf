// Package prometheus exposes session manager metrics as a Prometheus
// collector.
//
// Counter names are goauthclient_*_total; the one histogram is
// goauthclient_service_latency_seconds. [Collector.Handler] serves them from
// a private registry; callers that already run a registry register the
// [Collector] themselves.
package prometheus
