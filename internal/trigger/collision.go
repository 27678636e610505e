package trigger

// ThumbsReach scales the thumb radius into the thumbs-together trigger distance.
const ThumbsReach = 2.5

// Predicates is the per-frame contact state, indexed by Key.
type Predicates [NumKeys]bool

// Detect evaluates every contact predicate for one frame. Keys of hands that
// are absent stay false.
func Detect(frames []HandFrame, r Radii) Predicates {
	var p Predicates

	var thumbs [NumHands]*Point
	for i := range frames {
		hf := &frames[i]
		thumbs[hf.Hand] = &hf.Thumb

		reach := float64(r.Thumb + r.Finger)
		for f := Finger(0); f < NumFingers; f++ {
			p[FingerKey(hf.Hand, f)] = distance(hf.Thumb, hf.Tips[f]) < reach
		}
	}

	if thumbs[Left] != nil && thumbs[Right] != nil {
		p[ThumbsTogether] = distance(*thumbs[Left], *thumbs[Right]) < float64(r.Thumb)*ThumbsReach
	}

	return p
}
