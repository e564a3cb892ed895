// Package metrics exposes prometheus counters for the account engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Service holds the engine's metric collectors.
type Service struct {
	Derivations  *prometheus.CounterVec
	SignRequests *prometheus.CounterVec
	CacheLookups *prometheus.CounterVec
}

// New creates the metric collectors and registers them with the given
// registerer.
func New(registerer prometheus.Registerer) *Service {
	s := &Service{
		Derivations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_derivations_total",
			Help: "Account derivations by chain and account type.",
		}, []string{"chain", "account_type"}),
		SignRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_sign_requests_total",
			Help: "Signing requests by operation and result.",
		}, []string{"operation", "result"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_address_cache_lookups_total",
			Help: "Address cache lookups by outcome.",
		}, []string{"outcome"}),
	}

	registerer.MustRegister(s.Derivations, s.SignRequests, s.CacheLookups)

	return s
}

// ObserveDerivation counts one successful derivation. Nil-safe so callers
// can run without metrics wired.
func (s *Service) ObserveDerivation(chain string, accountType string) {
	if s == nil {
		return
	}
	s.Derivations.WithLabelValues(chain, accountType).Inc()
}

// ObserveSignRequest counts one signing request outcome.
func (s *Service) ObserveSignRequest(operation string, result string) {
	if s == nil {
		return
	}
	s.SignRequests.WithLabelValues(operation, result).Inc()
}

// ObserveCacheLookup counts one address cache lookup outcome.
func (s *Service) ObserveCacheLookup(outcome string) {
	if s == nil {
		return
	}
	s.CacheLookups.WithLabelValues(outcome).Inc()
}
