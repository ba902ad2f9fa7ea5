package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s %v not found", name, labels)
	return 0
}

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordElection("r1")
	c.RecordElection("r1")
	c.RecordElectionFailure()
	c.RecordForward("Bid", true)
	c.RecordForward("Bid", false)
	c.RecordForward("Bid", true)
	c.RecordReplicationPush(false)
	c.RecordSnapshotApplied()
	c.RecordSnapshotRejected()

	assert.Equal(t, 2.0, counterValue(t, reg, "auction_elections_total", map[string]string{"replica_id": "r1"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "auction_election_failures_total", nil))
	assert.Equal(t, 2.0, counterValue(t, reg, "auction_forwarded_calls_total", map[string]string{"method": "Bid", "outcome": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "auction_forwarded_calls_total", map[string]string{"method": "Bid", "outcome": "error"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "auction_replication_pushes_total", map[string]string{"outcome": "error"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "auction_snapshots_received_total", map[string]string{"outcome": "applied"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "auction_snapshots_received_total", map[string]string{"outcome": "rejected"}))
}

func TestNewCollector_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}

func TestRouter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordElectionFailure()

	srv := httptest.NewServer(NewRouter(reg, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "auction_election_failures_total 1"))
}

func TestRouter_Health(t *testing.T) {
	tests := []struct {
		name   string
		health func() error
		want   int
	}{
		{name: "no probe", health: nil, want: http.StatusOK},
		{name: "healthy", health: func() error { return nil }, want: http.StatusOK},
		{name: "unhealthy", health: func() error { return errors.New("no primary") }, want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			NewRouter(prometheus.NewRegistry(), tt.health).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestNop(t *testing.T) {
	r := Nop()
	r.RecordElection("x")
	r.RecordForward("Bid", true)
}
