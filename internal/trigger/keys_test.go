package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/detector"
)

func TestKeys_Enumeration(t *testing.T) {
	keys := AllKeys()
	require.Len(t, keys, 9)
	assert.Equal(t, ThumbsTogether, keys[len(keys)-1])

	seen := map[Key]bool{}
	for h := Hand(0); h < NumHands; h++ {
		for f := Finger(0); f < NumFingers; f++ {
			k := FingerKey(h, f)
			assert.False(t, seen[k], "duplicate key %v", k)
			seen[k] = true

			assert.Equal(t, h, k.Hand())
			assert.Equal(t, f, k.Finger())
			assert.False(t, k.IsThumbs())
			assert.True(t, k.Valid())
		}
	}
	assert.Len(t, seen, 8)
	assert.False(t, Key(NumKeys).Valid())
}

func TestKey_StringRoundTrip(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{FingerKey(Right, Index), "Right/INDEX"},
		{FingerKey(Left, Pinky), "Left/PINKY"},
		{FingerKey(Left, Middle), "Left/MIDDLE"},
		{ThumbsTogether, "ThumbsTogether"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.String())

			parsed, err := ParseKey(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.key, parsed)
		})
	}

	t.Run("case insensitive", func(t *testing.T) {
		k, err := ParseKey("right/ring")
		require.NoError(t, err)
		assert.Equal(t, FingerKey(Right, Ring), k)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := ParseKey("Right/THUMB")
		assert.Error(t, err)
	})
}

func TestParseHand(t *testing.T) {
	assert.Equal(t, Right, ParseHand("Right"))
	assert.Equal(t, Left, ParseHand("Left"))
	assert.Equal(t, Right, ParseHand("Handedness: Right"))
	assert.Equal(t, Left, ParseHand(""))
}

func TestFinger_TipIndex(t *testing.T) {
	assert.Equal(t, detector.IndexTip, Index.TipIndex())
	assert.Equal(t, detector.MiddleTip, Middle.TipIndex())
	assert.Equal(t, detector.RingTip, Ring.TipIndex())
	assert.Equal(t, detector.PinkyTip, Pinky.TipIndex())
}
