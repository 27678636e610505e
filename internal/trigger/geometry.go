package trigger

import (
	"math"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/detector"
)

// Point is a pixel position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// FrameSize is the pixel size landmarks are projected into.
type FrameSize struct {
	Width  int
	Height int
}

// HandFrame holds one hand's thumb tip and fingertips in pixels for one frame.
type HandFrame struct {
	Hand  Hand
	Thumb Point
	Tips  [NumFingers]Point
}

// ToPixel projects a normalized landmark into the frame, truncating toward zero.
func ToPixel(p detector.Point3D, size FrameSize) Point {
	return Point{
		X: int(p.X * float64(size.Width)),
		Y: int(p.Y * float64(size.Height)),
	}
}

func distance(a, b Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Extract projects detected hands into pixel space. The result has at most
// one frame per hand, ordered Left then Right; a later detection with the
// same identity replaces an earlier one.
func Extract(hands []detector.HandLandmarks, size FrameSize) []HandFrame {
	var seen [NumHands]bool
	var byHand [NumHands]HandFrame

	for i := range hands {
		h := ParseHand(hands[i].Handedness)
		hf := HandFrame{
			Hand:  h,
			Thumb: ToPixel(hands[i].Points[detector.ThumbTip], size),
		}
		for f := Finger(0); f < NumFingers; f++ {
			hf.Tips[f] = ToPixel(hands[i].Points[f.TipIndex()], size)
		}
		byHand[h] = hf
		seen[h] = true
	}

	frames := make([]HandFrame, 0, NumHands)
	for h := Hand(0); h < NumHands; h++ {
		if seen[h] {
			frames = append(frames, byHand[h])
		}
	}
	return frames
}
