package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_CountsRedemptionsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.TokenRedeemed("approved")
	c.TokenRedeemed("approved")
	c.TokenRedeemed("expired")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.redemptions.WithLabelValues("approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.redemptions.WithLabelValues("expired")))
}

func TestCollector_TokensIssued(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	c.TokenIssued()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.tokensIssued))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := NewRegistry()
	c := NewCollector(reg)
	c.GateDecision("/id-verification")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `careernest_gate_decisions_total{target="/id-verification"} 1`)
}
