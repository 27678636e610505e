package trigger

import "sync"

// Radii are the touch-zone sizes in pixels.
type Radii struct {
	Finger int `json:"finger"`
	Thumb  int `json:"thumb"`
}

// Bounds is an inclusive range.
type Bounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (b Bounds) clamp(v int) int {
	return max(b.Min, min(b.Max, v))
}

// Limits constrains runtime radius changes.
type Limits struct {
	Finger Bounds `json:"finger"`
	Thumb  Bounds `json:"thumb"`
	Step   int    `json:"step"`
}

// DefaultRadii returns the starting touch-zone sizes.
func DefaultRadii() Radii {
	return Radii{Finger: 20, Thumb: 25}
}

// DefaultLimits returns the radius bounds and adjustment step.
func DefaultLimits() Limits {
	return Limits{
		Finger: Bounds{Min: 10, Max: 50},
		Thumb:  Bounds{Min: 15, Max: 60},
		Step:   2,
	}
}

// Tuning holds the runtime-adjustable radii. The frame loop reads it once
// per frame while operator commands may arrive from other goroutines.
type Tuning struct {
	mu       sync.RWMutex
	radii    Radii
	limits   Limits
	onChange func(Radii)
}

// NewTuning creates a Tuning starting at r, clamped to l.
func NewTuning(r Radii, l Limits) *Tuning {
	return &Tuning{
		radii:  Radii{Finger: l.Finger.clamp(r.Finger), Thumb: l.Thumb.clamp(r.Thumb)},
		limits: l,
	}
}

// Radii returns the current radii.
func (t *Tuning) Radii() Radii {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.radii
}

// Limits returns the configured bounds.
func (t *Tuning) Limits() Limits {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.limits
}

// OnChange registers a callback invoked after every Increase or Decrease.
func (t *Tuning) OnChange(fn func(Radii)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Increase grows both radii by one step, each clamped to its maximum.
func (t *Tuning) Increase() Radii {
	return t.adjust(1)
}

// Decrease shrinks both radii by one step, each clamped to its minimum.
func (t *Tuning) Decrease() Radii {
	return t.adjust(-1)
}

func (t *Tuning) adjust(dir int) Radii {
	t.mu.Lock()
	delta := dir * t.limits.Step
	t.radii.Finger = t.limits.Finger.clamp(t.radii.Finger + delta)
	t.radii.Thumb = t.limits.Thumb.clamp(t.radii.Thumb + delta)
	r := t.radii
	callback := t.onChange
	t.mu.Unlock()

	if callback != nil {
		callback(r)
	}
	return r
}
