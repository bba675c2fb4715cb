package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts business events. A nil *Metrics is valid and records
// nothing, which is what most tests pass.
//
// Exposed series (namespace "club_roster"):
//   - signups_total{role}
//   - logins_total{result}   result ∈ success, invalid_credentials
//   - tokens_issued_total
type Metrics struct {
	signups      *prometheus.CounterVec
	logins       *prometheus.CounterVec
	tokensIssued prometheus.Counter
}

// NewMetrics creates the counters and registers them with reg. The server
// passes its own registry so tests can build several servers in one process.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "club_roster",
			Name:      "signups_total",
			Help:      "Accounts created through the signup endpoints.",
		}, []string{"role"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "club_roster",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"result"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "club_roster",
			Name:      "tokens_issued_total",
			Help:      "Token keys minted (reused keys are not counted).",
		}),
	}
	reg.MustRegister(m.signups, m.logins, m.tokensIssued)
	return m
}

func (m *Metrics) signup(role string) {
	if m != nil {
		m.signups.WithLabelValues(role).Inc()
	}
}

func (m *Metrics) login(result string) {
	if m != nil {
		m.logins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) tokenIssued() {
	if m != nil {
		m.tokensIssued.Inc()
	}
}
