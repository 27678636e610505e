// Package trigger turns per-frame hand keypoints into debounced, rate limited
// sample triggers. One Engine owns the whole per-frame pass: geometry
// extraction, collision predicates, the per-key edge detectors with their
// cooldown clocks, thumbs-together priority and dispatch to a Player.
package trigger

import (
	"fmt"
	"strings"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/detector"
)

// Hand identifies which hand a detection belongs to.
type Hand int

const (
	Left Hand = iota
	Right
	NumHands
)

func (h Hand) String() string {
	if h == Right {
		return "Right"
	}
	return "Left"
}

// ParseHand maps a detector handedness label to a Hand. Any label that does
// not mention "Right" is treated as the left hand.
func ParseHand(label string) Hand {
	if strings.Contains(label, "Right") {
		return Right
	}
	return Left
}

// Finger identifies one of the four non-thumb fingers.
type Finger int

const (
	Index Finger = iota
	Middle
	Ring
	Pinky
	NumFingers
)

var fingerNames = [NumFingers]string{"INDEX", "MIDDLE", "RING", "PINKY"}

var fingerTips = [NumFingers]int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}

func (f Finger) String() string {
	if f < 0 || f >= NumFingers {
		return fmt.Sprintf("Finger(%d)", int(f))
	}
	return fingerNames[f]
}

// TipIndex returns the landmark index of the finger's tip.
func (f Finger) TipIndex() int {
	return fingerTips[f]
}

// Key identifies one of the nine fixed triggers.
type Key int

// ThumbsTogether is the two-hand key. Finger keys occupy 0..7.
const (
	ThumbsTogether Key = Key(int(NumHands) * int(NumFingers))
	NumKeys            = int(ThumbsTogether) + 1
)

// FingerKey returns the key for a hand/finger pair.
func FingerKey(h Hand, f Finger) Key {
	return Key(int(h)*int(NumFingers) + int(f))
}

// AllKeys lists every key, finger keys first.
func AllKeys() []Key {
	keys := make([]Key, NumKeys)
	for i := range keys {
		keys[i] = Key(i)
	}
	return keys
}

// Hand returns the hand of a finger key. It is meaningless for ThumbsTogether.
func (k Key) Hand() Hand {
	return Hand(int(k) / int(NumFingers))
}

// Finger returns the finger of a finger key. It is meaningless for ThumbsTogether.
func (k Key) Finger() Finger {
	return Finger(int(k) % int(NumFingers))
}

// IsThumbs reports whether k is the thumbs-together key.
func (k Key) IsThumbs() bool {
	return k == ThumbsTogether
}

// Valid reports whether k is one of the nine keys.
func (k Key) Valid() bool {
	return k >= 0 && int(k) < NumKeys
}

// String renders keys as "Right/INDEX" or "ThumbsTogether".
func (k Key) String() string {
	switch {
	case k.IsThumbs():
		return "ThumbsTogether"
	case k.Valid():
		return k.Hand().String() + "/" + k.Finger().String()
	default:
		return fmt.Sprintf("Key(%d)", int(k))
	}
}

// ParseKey is the inverse of Key.String. Matching is case-insensitive.
func ParseKey(s string) (Key, error) {
	for _, k := range AllKeys() {
		if strings.EqualFold(k.String(), s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown trigger key %q", s)
}
