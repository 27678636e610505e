package trigger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTuning_Clamping(t *testing.T) {
	tests := []struct {
		name  string
		start Radii
		steps int
		want  Radii
	}{
		{"one step up", DefaultRadii(), 1, Radii{Finger: 22, Thumb: 27}},
		{"one step down", DefaultRadii(), -1, Radii{Finger: 18, Thumb: 23}},
		{"saturates at maximum", DefaultRadii(), 40, Radii{Finger: 50, Thumb: 60}},
		{"saturates at minimum", DefaultRadii(), -40, Radii{Finger: 10, Thumb: 15}},
		{"finger hits max first", Radii{Finger: 49, Thumb: 25}, 1, Radii{Finger: 50, Thumb: 27}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tuning := NewTuning(tt.start, DefaultLimits())

			var got Radii
			for i := 0; i < tt.steps; i++ {
				got = tuning.Increase()
			}
			for i := 0; i > tt.steps; i-- {
				got = tuning.Decrease()
			}

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, tuning.Radii())
		})
	}
}

func TestNewTuning_ClampsInitialValues(t *testing.T) {
	tuning := NewTuning(Radii{Finger: 5, Thumb: 99}, DefaultLimits())
	assert.Equal(t, Radii{Finger: 10, Thumb: 60}, tuning.Radii())
}

func TestTuning_OnChange(t *testing.T) {
	tuning := NewTuning(DefaultRadii(), DefaultLimits())

	var seen []Radii
	tuning.OnChange(func(r Radii) {
		seen = append(seen, r)
		// Reading inside the callback must not deadlock.
		_ = tuning.Radii()
	})

	tuning.Increase()
	tuning.Decrease()

	assert.Equal(t, []Radii{{22, 27}, {20, 25}}, seen)
}

func TestTuning_ConcurrentAccess(t *testing.T) {
	tuning := NewTuning(DefaultRadii(), DefaultLimits())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tuning.Increase()
		}()
		go func() {
			defer wg.Done()
			_ = tuning.Radii()
		}()
	}
	wg.Wait()

	assert.Equal(t, Radii{Finger: 50, Thumb: 60}, tuning.Radii())
}
