package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is implemented by the prometheus collector and by Noop for tests.
type Recorder interface {
	RecordLogin(success bool)
	RecordSessionIssued()
	RecordSessionsRevoked(count int)
	RecordAccess(action string)
}

// Collector aggregates portal counters for the /metrics endpoint.
type Collector struct {
	loginSuccess    prometheus.Counter
	loginFailure    prometheus.Counter
	sessionsIssued  prometheus.Counter
	sessionsRevoked prometheus.Counter
	accessEvents    *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_login_success_total",
			Help: "Total number of successful logins",
		}),
		loginFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_login_failure_total",
			Help: "Total number of failed login attempts",
		}),
		sessionsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_sessions_issued_total",
			Help: "Total number of sessions issued",
		}),
		sessionsRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_sessions_revoked_total",
			Help: "Total number of sessions revoked by logout or forced logout",
		}),
		accessEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_access_events_total",
			Help: "Access log events by action",
		}, []string{"action"}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginFailure,
		c.sessionsIssued,
		c.sessionsRevoked,
		c.accessEvents,
	)

	return c
}

func (c *Collector) RecordLogin(success bool) {
	if success {
		c.loginSuccess.Inc()
	} else {
		c.loginFailure.Inc()
	}
}

func (c *Collector) RecordSessionIssued() {
	c.sessionsIssued.Inc()
}

func (c *Collector) RecordSessionsRevoked(count int) {
	c.sessionsRevoked.Add(float64(count))
}

func (c *Collector) RecordAccess(action string) {
	c.accessEvents.WithLabelValues(action).Inc()
}

// Noop discards all measurements.
type Noop struct{}

func (Noop) RecordLogin(success bool)        {}
func (Noop) RecordSessionIssued()            {}
func (Noop) RecordSessionsRevoked(count int) {}
func (Noop) RecordAccess(action string)      {}
