package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
)

var (
    // Registry is the dedicated Prometheus registry for the API
    Registry = prometheus.NewRegistry()
    // HTTPRequests counts requests by method, path, and status
    HTTPRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
        []string{"method", "path", "status"},
    )
    // HTTPDuration records request durations in seconds
    HTTPDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
        []string{"method", "path", "status"},
    )

    // TicketTransitions counts lifecycle transitions by resulting status
    TicketTransitions = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "ticket_transitions_total", Help: "Ticket lifecycle transitions by resulting status."},
        []string{"status"},
    )
    // ValidationFailures counts rejected ticket operations by failure code
    ValidationFailures = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "ticket_validation_failures_total", Help: "Rejected ticket operations by validation code."},
        []string{"code"},
    )
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
    regOnce.Do(func() {
        Registry.MustRegister(HTTPRequests)
        Registry.MustRegister(HTTPDuration)
        Registry.MustRegister(TicketTransitions)
        Registry.MustRegister(ValidationFailures)
        // Go/process collectors on our registry
        Registry.MustRegister(collectors.NewGoCollector())
        Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
    })
}

var regOnce sync.Once
