package sync

import "sync/atomic"

// Gate holds the connectivity state reported by the platform layer.
// The engine consults it before any remote work; a flip to online
// should be paired with Engine.NotifyOnline so the queue drains right
// away instead of waiting for the next tick.
type Gate struct {
	online atomic.Bool
}

// NewGate returns a gate in the given initial state.
func NewGate(online bool) *Gate {
	g := &Gate{}
	g.online.Store(online)
	return g
}

// Online reports the current state. Its method value satisfies the
// WithConnectivity option.
func (g *Gate) Online() bool {
	return g.online.Load()
}

// Set records a connectivity change.
func (g *Gate) Set(online bool) {
	g.online.Store(online)
}
