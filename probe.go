package goAuthClient

import "sync/atomic"

// NetworkProbe reports current connectivity. It is consulted synchronously
// before every credential operation and must not block.
type NetworkProbe interface {
	Online() bool
}

// ProbeFunc adapts a function to [NetworkProbe].
type ProbeFunc func() bool

// Online calls f.
func (f ProbeFunc) Online() bool { return f() }

// AlwaysOnline is the default probe.
type AlwaysOnline struct{}

// Online always reports true.
func (AlwaysOnline) Online() bool { return true }

// ToggleProbe is a settable probe, driven by whatever connectivity signal the
// host application receives.
type ToggleProbe struct {
	online atomic.Bool
}

// NewToggleProbe returns a probe starting in the given state.
func NewToggleProbe(online bool) *ToggleProbe {
	p := &ToggleProbe{}
	p.online.Store(online)
	return p
}

// Set updates the reported state.
func (p *ToggleProbe) Set(online bool) { p.online.Store(online) }

// Online reports the last value passed to Set.
func (p *ToggleProbe) Online() bool { return p.online.Load() }
