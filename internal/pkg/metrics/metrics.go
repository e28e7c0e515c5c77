// Package metrics exposes Prometheus counters for the verification workflow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services report to. Tests use Nop.
type Recorder interface {
	SignupCompleted(role string)
	SubmissionAccepted(role, outcome string)
	TokenIssued()
	TokenRedeemed(outcome string)
	GateDecision(target string)
	EmailFailed(kind string)
}

// Collector is the Prometheus implementation of Recorder
type Collector struct {
	signups       *prometheus.CounterVec
	submissions   *prometheus.CounterVec
	tokensIssued  prometheus.Counter
	redemptions   *prometheus.CounterVec
	gateDecisions *prometheus.CounterVec
	emailFailures *prometheus.CounterVec
}

// NewCollector registers the metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careernest_signups_total",
			Help: "Completed signups by role",
		}, []string{"role"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careernest_verification_submissions_total",
			Help: "Accepted verification form submissions by role and resulting status",
		}, []string{"role", "outcome"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careernest_verification_tokens_issued_total",
			Help: "Verification tokens stored and handed to the email sender",
		}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careernest_verification_redemptions_total",
			Help: "Verification link redemptions by outcome",
		}, []string{"outcome"}),
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careernest_gate_decisions_total",
			Help: "Verification gate decisions by target (allow or redirect path)",
		}, []string{"target"}),
		emailFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careernest_email_failures_total",
			Help: "Email sends that failed, by message kind",
		}, []string{"kind"}),
	}

	reg.MustRegister(c.signups, c.submissions, c.tokensIssued, c.redemptions, c.gateDecisions, c.emailFailures)
	return c
}

func (c *Collector) SignupCompleted(role string) { c.signups.WithLabelValues(role).Inc() }

func (c *Collector) SubmissionAccepted(role, outcome string) {
	c.submissions.WithLabelValues(role, outcome).Inc()
}

func (c *Collector) TokenIssued() { c.tokensIssued.Inc() }

func (c *Collector) TokenRedeemed(outcome string) { c.redemptions.WithLabelValues(outcome).Inc() }

func (c *Collector) GateDecision(target string) { c.gateDecisions.WithLabelValues(target).Inc() }

func (c *Collector) EmailFailed(kind string) { c.emailFailures.WithLabelValues(kind).Inc() }

// NewRegistry returns a registry with the Go and process collectors installed
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the Prometheus exposition format
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Nop discards every observation
type Nop struct{}

func (Nop) SignupCompleted(string) {}
func (Nop) SubmissionAccepted(string, string) {}
func (Nop) TokenIssued() {}
func (Nop) TokenRedeemed(string) {}
func (Nop) GateDecision(string) {}
func (Nop) EmailFailed(string) {}
