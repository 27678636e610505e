package trigger

import "time"

// Cooldowns are the minimum intervals between two dispatches of the same key.
type Cooldowns struct {
	Finger time.Duration `json:"finger"`
	Thumbs time.Duration `json:"thumbs"`
}

// DefaultCooldowns returns 200ms per finger key and 2s for thumbs-together.
func DefaultCooldowns() Cooldowns {
	return Cooldowns{
		Finger: 200 * time.Millisecond,
		Thumbs: 2 * time.Second,
	}
}

// For returns the cooldown that applies to k.
func (c Cooldowns) For(k Key) time.Duration {
	if k.IsThumbs() {
		return c.Thumbs
	}
	return c.Finger
}

// KeyState is the per-key edge detector state.
type KeyState struct {
	// Active is true while contact has held since the last rising edge.
	Active bool
	// LastFiredAt is the time of the last dispatch; zero means never.
	LastFiredAt time.Time
}

// Session owns the nine key states for the lifetime of one run.
// It is not safe for concurrent use; the frame loop is its only caller.
type Session struct {
	states    [NumKeys]KeyState
	cooldowns Cooldowns
}

// NewSession creates a session with every key idle and never fired.
func NewSession(c Cooldowns) *Session {
	return &Session{cooldowns: c}
}

// State returns a copy of k's state.
func (s *Session) State(k Key) KeyState {
	return s.states[k]
}

// Suppressed reports whether thumbs-together contact currently silences finger keys.
func (s *Session) Suppressed() bool {
	return s.states[ThumbsTogether].Active
}

// Step advances every key by one frame and returns the keys that may
// dispatch, thumbs-together first. Finger keys are resolved after
// thumbs-together so that its contact for this frame silences them.
func (s *Session) Step(p Predicates, now time.Time) []Key {
	var fired []Key

	if s.advance(ThumbsTogether, p[ThumbsTogether], now, false) {
		fired = append(fired, ThumbsTogether)
	}

	suppressed := s.Suppressed()
	for k := Key(0); k < ThumbsTogether; k++ {
		if s.advance(k, p[k], now, suppressed) {
			fired = append(fired, k)
		}
	}

	return fired
}

// advance applies one transition. Only IDLE->ACTIVE can fire, and only when
// not suppressed and outside the key's cooldown. A blocked edge still
// becomes ACTIVE and keeps its old LastFiredAt.
func (s *Session) advance(k Key, contact bool, now time.Time, suppressed bool) bool {
	st := &s.states[k]
	rising := contact && !st.Active
	st.Active = contact

	if !rising || suppressed || !s.ready(k, now) {
		return false
	}

	st.LastFiredAt = now
	return true
}

func (s *Session) ready(k Key, now time.Time) bool {
	last := s.states[k].LastFiredAt
	return last.IsZero() || now.Sub(last) >= s.cooldowns.For(k)
}
