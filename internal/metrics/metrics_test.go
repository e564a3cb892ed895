package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github/chapool/go-accounts/internal/metrics"
)

func TestObserve(t *testing.T) {
	svc := metrics.New(prometheus.NewRegistry())

	svc.ObserveDerivation("base", "erc4337")
	svc.ObserveDerivation("base", "erc4337")
	svc.ObserveSignRequest("message", "ok")
	svc.ObserveCacheLookup("hit")

	assert.Equal(t, 2.0, testutil.ToFloat64(svc.Derivations.WithLabelValues("base", "erc4337")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.SignRequests.WithLabelValues("message", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 0.0, testutil.ToFloat64(svc.CacheLookups.WithLabelValues("miss")))
}

func TestObserveIsNilSafe(t *testing.T) {
	var svc *metrics.Service

	assert.NotPanics(t, func() {
		svc.ObserveDerivation("base", "eoa")
		svc.ObserveSignRequest("message", "ok")
		svc.ObserveCacheLookup("hit")
	})
}
