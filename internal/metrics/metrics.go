// Package metrics collects Prometheus metrics for the replicas and the front
// end and serves them next to a health probe on the admin HTTP listener.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is what the front end and the replication code report to.
type Recorder interface {
	RecordElection(replicaID string)
	RecordElectionFailure()
	RecordForward(method string, ok bool)
	RecordReplicationPush(ok bool)
	RecordSnapshotApplied()
	RecordSnapshotRejected()
}

// Nop returns a Recorder that drops everything.
func Nop() Recorder { return nopRecorder{} }

type nopRecorder struct{}

func (nopRecorder) RecordElection(string)      {}
func (nopRecorder) RecordElectionFailure()     {}
func (nopRecorder) RecordForward(string, bool) {}
func (nopRecorder) RecordReplicationPush(bool) {}
func (nopRecorder) RecordSnapshotApplied()     {}
func (nopRecorder) RecordSnapshotRejected()    {}

// Collector is the Prometheus backed Recorder.
type Collector struct {
	elections        *prometheus.CounterVec
	electionFailures prometheus.Counter
	forwarded        *prometheus.CounterVec
	pushes           *prometheus.CounterVec
	snapshots        *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		elections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_elections_total",
			Help: "Primary elections won, by replica id.",
		}, []string{"replica_id"}),
		electionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auction_election_failures_total",
			Help: "Elections that found no live replica.",
		}),
		forwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_forwarded_calls_total",
			Help: "Client calls forwarded to the primary, by method and outcome.",
		}, []string{"method", "outcome"}),
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_replication_pushes_total",
			Help: "Snapshot pushes to peers, by outcome.",
		}, []string{"outcome"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_snapshots_received_total",
			Help: "Snapshots received from a primary, by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.elections,
		c.electionFailures,
		c.forwarded,
		c.pushes,
		c.snapshots,
	)

	return c
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

func (c *Collector) RecordElection(replicaID string) {
	c.elections.WithLabelValues(replicaID).Inc()
}

func (c *Collector) RecordElectionFailure() {
	c.electionFailures.Inc()
}

func (c *Collector) RecordForward(method string, ok bool) {
	c.forwarded.WithLabelValues(method, outcome(ok)).Inc()
}

func (c *Collector) RecordReplicationPush(ok bool) {
	c.pushes.WithLabelValues(outcome(ok)).Inc()
}

func (c *Collector) RecordSnapshotApplied() {
	c.snapshots.WithLabelValues("applied").Inc()
}

func (c *Collector) RecordSnapshotRejected() {
	c.snapshots.WithLabelValues("rejected").Inc()
}
