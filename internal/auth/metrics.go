package auth

import "sync/atomic"

// Metrics counts ceremony outcomes. Counters are safe for concurrent use and
// only ever grow; Snapshot gives a consistent-enough view for the stats
// command.
type Metrics struct {
	signups        atomic.Int64
	unlocks        atomic.Int64
	authFailures   atomic.Int64
	codeFailures   atomic.Int64
	sessionsIssued atomic.Int64
	resets         atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Signups        int64
	Unlocks        int64
	AuthFailures   int64
	CodeFailures   int64
	SessionsIssued int64
	Resets         int64
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Signups:        m.signups.Load(),
		Unlocks:        m.unlocks.Load(),
		AuthFailures:   m.authFailures.Load(),
		CodeFailures:   m.codeFailures.Load(),
		SessionsIssued: m.sessionsIssued.Load(),
		Resets:         m.resets.Load(),
	}
}
