package trigger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return base.Add(time.Duration(ms) * time.Millisecond)
}

func only(k Key) Predicates {
	var p Predicates
	p[k] = true
	return p
}

func TestSession_InitialState(t *testing.T) {
	s := NewSession(DefaultCooldowns())
	for _, k := range AllKeys() {
		st := s.State(k)
		assert.False(t, st.Active, "key %v", k)
		assert.True(t, st.LastFiredAt.IsZero(), "key %v", k)
	}
	assert.False(t, s.Suppressed())
}

func TestSession_SingleFirePerEdge(t *testing.T) {
	k := FingerKey(Right, Middle)
	s := NewSession(DefaultCooldowns())

	seq := []bool{false, true, true, true, false}
	var fired []Key
	for i, c := range seq {
		var p Predicates
		p[k] = c
		fired = append(fired, s.Step(p, at(i*33))...)
	}

	assert.Equal(t, []Key{k}, fired)
	assert.Equal(t, at(33), s.State(k).LastFiredAt)
	assert.False(t, s.State(k).Active)
}

func TestSession_Cooldown(t *testing.T) {
	tests := []struct {
		name     string
		key      Key
		refireMs int
		want     bool
	}{
		{"finger within cooldown", FingerKey(Left, Index), 150, false},
		{"finger at cooldown boundary", FingerKey(Left, Index), 200, true},
		{"finger after cooldown", FingerKey(Left, Index), 250, true},
		{"thumbs within cooldown", ThumbsTogether, 1999, false},
		{"thumbs at cooldown boundary", ThumbsTogether, 2000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(DefaultCooldowns())

			require.Equal(t, []Key{tt.key}, s.Step(only(tt.key), at(0)))
			require.Empty(t, s.Step(Predicates{}, at(tt.refireMs/2)))

			fired := s.Step(only(tt.key), at(tt.refireMs))
			assert.Equal(t, tt.want, len(fired) == 1)
			assert.True(t, s.State(tt.key).Active, "blocked edge still becomes active")

			if tt.want {
				assert.Equal(t, at(tt.refireMs), s.State(tt.key).LastFiredAt)
			} else {
				assert.Equal(t, at(0), s.State(tt.key).LastFiredAt, "blocked edge keeps LastFiredAt")
			}
		})
	}
}

func TestSession_BlockedEdgeDoesNotExtendCooldown(t *testing.T) {
	k := FingerKey(Right, Pinky)
	s := NewSession(DefaultCooldowns())

	s.Step(only(k), at(0))
	s.Step(Predicates{}, at(50))
	assert.Empty(t, s.Step(only(k), at(100)), "blocked by cooldown")
	s.Step(Predicates{}, at(150))

	// 210ms after the only real dispatch, not after the blocked edge.
	assert.Equal(t, []Key{k}, s.Step(only(k), at(210)))
}

func TestSession_IndependentClocks(t *testing.T) {
	rightIndex := FingerKey(Right, Index)
	leftRing := FingerKey(Left, Ring)
	s := NewSession(DefaultCooldowns())

	require.Equal(t, []Key{rightIndex}, s.Step(only(rightIndex), at(0)))
	s.Step(Predicates{}, at(10))

	assert.Equal(t, []Key{leftRing}, s.Step(only(leftRing), at(20)))
	s.Step(Predicates{}, at(30))
	assert.Equal(t, []Key{ThumbsTogether}, s.Step(only(ThumbsTogether), at(40)))
	assert.Equal(t, at(0), s.State(rightIndex).LastFiredAt)
}

func TestSession_PrioritySuppression(t *testing.T) {
	k := FingerKey(Right, Index)

	t.Run("fresh finger edge in the thumbs frame is silenced", func(t *testing.T) {
		s := NewSession(DefaultCooldowns())

		p := only(ThumbsTogether)
		p[k] = true
		assert.Equal(t, []Key{ThumbsTogether}, s.Step(p, at(0)))
		assert.True(t, s.State(k).Active, "debounce state still advances")
		assert.True(t, s.State(k).LastFiredAt.IsZero(), "suppressed edge does not touch the clock")
	})

	t.Run("sustained thumbs contact keeps suppressing", func(t *testing.T) {
		s := NewSession(DefaultCooldowns())

		s.Step(only(ThumbsTogether), at(0))
		p := only(ThumbsTogether)
		p[k] = true
		assert.Empty(t, s.Step(p, at(33)))
	})

	t.Run("thumbs blocked by cooldown still suppresses", func(t *testing.T) {
		s := NewSession(DefaultCooldowns())

		s.Step(only(ThumbsTogether), at(0))
		s.Step(Predicates{}, at(100))

		p := only(ThumbsTogether)
		p[k] = true
		assert.Empty(t, s.Step(p, at(200)))
		assert.True(t, s.Suppressed())
	})

	t.Run("suppression is not a latch", func(t *testing.T) {
		s := NewSession(DefaultCooldowns())

		s.Step(only(ThumbsTogether), at(0))
		assert.Equal(t, []Key{k}, s.Step(only(k), at(33)))
		assert.False(t, s.Suppressed())
	})

	t.Run("finger held through thumbs does not refire", func(t *testing.T) {
		s := NewSession(DefaultCooldowns())

		require.Equal(t, []Key{k}, s.Step(only(k), at(0)))
		p := only(ThumbsTogether)
		p[k] = true
		assert.Equal(t, []Key{ThumbsTogether}, s.Step(p, at(500)))
		assert.Empty(t, s.Step(only(k), at(1000)), "still held, no rising edge")
	})
}

func TestSession_AbsenceReleases(t *testing.T) {
	k := FingerKey(Left, Middle)
	s := NewSession(DefaultCooldowns())

	s.Step(only(k), at(0))
	require.True(t, s.State(k).Active)

	// Hand vanishes: every predicate for it is false.
	s.Step(Predicates{}, at(33))
	assert.False(t, s.State(k).Active)

	assert.Equal(t, []Key{k}, s.Step(only(k), at(300)))
}

func TestSession_ScenarioC(t *testing.T) {
	k := FingerKey(Right, Index)
	s := NewSession(DefaultCooldowns())

	require.Equal(t, []Key{k}, s.Step(only(k), at(0)))
	for ms := 33; ms < 1000; ms += 33 {
		require.Empty(t, s.Step(only(k), at(ms)), "held contact at %dms", ms)
	}

	s2 := NewSession(DefaultCooldowns())
	s2.Step(only(k), at(0))
	s2.Step(Predicates{}, at(66))
	assert.Empty(t, s2.Step(only(k), at(133)))
	s2.Step(Predicates{}, at(166))
	assert.Equal(t, []Key{k}, s2.Step(only(k), at(200)))
}

func TestSession_Properties(t *testing.T) {
	t.Run("spaced frames fire once per rising edge", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			k := Key(rapid.IntRange(0, NumKeys-1).Draw(t, "key"))
			contacts := rapid.SliceOf(rapid.Bool()).Draw(t, "contacts")

			s := NewSession(DefaultCooldowns())
			fires, edges := 0, 0
			prev := false
			for i, c := range contacts {
				var p Predicates
				p[k] = c
				if c && !prev {
					edges++
				}
				prev = c
				fires += len(s.Step(p, at((i+1)*3000)))
			}

			if fires != edges {
				t.Fatalf("fired %d times for %d rising edges", fires, edges)
			}
		})
	})

	t.Run("cooldown and priority always hold", func(t *testing.T) {
		cooldowns := DefaultCooldowns()
		rapid.Check(t, func(t *rapid.T) {
			s := NewSession(cooldowns)
			last := map[Key]time.Time{}
			prev := Predicates{}
			now := base

			n := rapid.IntRange(1, 40).Draw(t, "frames")
			for i := 0; i < n; i++ {
				now = now.Add(time.Duration(rapid.IntRange(0, 2500).Draw(t, fmt.Sprintf("dt%d", i))) * time.Millisecond)
				var p Predicates
				for k := range p {
					p[k] = rapid.Bool().Draw(t, fmt.Sprintf("p%d_%d", i, k))
				}

				for _, k := range s.Step(p, now) {
					if !p[k] || prev[k] {
						t.Fatalf("%v fired without a rising edge", k)
					}
					if !k.IsThumbs() && p[ThumbsTogether] {
						t.Fatalf("%v fired while thumbs were together", k)
					}
					if l, ok := last[k]; ok && now.Sub(l) < cooldowns.For(k) {
						t.Fatalf("%v fired %v after previous dispatch", k, now.Sub(l))
					}
					last[k] = now
				}
				for _, k := range AllKeys() {
					if s.State(k).Active != p[k] {
						t.Fatalf("%v active=%v, predicate=%v", k, s.State(k).Active, p[k])
					}
				}
				prev = p
			}
		})
	})
}
