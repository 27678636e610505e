package overlay

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/detector"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/trigger"
)

var (
	colorIdle     = color.RGBA{R: 180, G: 180, B: 180, A: 255}
	colorContact  = color.RGBA{G: 255, A: 255}
	colorThumb    = color.RGBA{R: 255, A: 255}
	colorThumbs   = color.RGBA{R: 255, G: 255, A: 255}
	colorTitle    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorFooter   = color.RGBA{G: 200, B: 255, A: 255}
	colorSkeleton = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

const footerHint = "Touch thumbs together = FULL SONG | +/- zones | S skeleton | ESC quit"

// Labeler names the clip bound to a key.
type Labeler interface {
	Label(k trigger.Key) string
}

// Renderer draws one frame's trigger state. The skeleton flag may be
// flipped from another goroutine.
type Renderer struct {
	title  string
	labels Labeler

	mu       sync.Mutex
	skeleton bool
}

// NewRenderer creates a renderer with the given title prefix.
func NewRenderer(title string, labels Labeler, skeleton bool) *Renderer {
	return &Renderer{title: title, labels: labels, skeleton: skeleton}
}

// ToggleSkeleton flips landmark skeleton drawing and returns the new value.
func (r *Renderer) ToggleSkeleton() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skeleton = !r.skeleton
	return r.skeleton
}

// Skeleton reports whether the skeleton is drawn.
func (r *Renderer) Skeleton() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skeleton
}

// Label returns the on-screen text for k: the bank label, or the finger name
// when the key has no clip.
func (r *Renderer) Label(k trigger.Key) string {
	if r.labels != nil {
		if l := r.labels.Label(k); l != "" {
			return l
		}
	}
	if k.IsThumbs() {
		return "FULL SONG"
	}
	return k.Finger().String()
}

// Title returns the header line.
func (r *Renderer) Title(fps int, radii trigger.Radii) string {
	return fmt.Sprintf("%s | FPS: %d | zones %d/%d", r.title, fps, radii.Finger, radii.Thumb)
}

// Draw annotates img with res. hands are the raw detections for the skeleton.
func (r *Renderer) Draw(img *gocv.Mat, res trigger.Result, hands []detector.HandLandmarks, fps int) {
	size := trigger.FrameSize{Width: img.Cols(), Height: img.Rows()}

	gocv.PutText(img, r.Title(fps, res.Radii), image.Pt(10, 25), gocv.FontHersheySimplex, 0.6, colorTitle, 2)
	gocv.PutText(img, footerHint, image.Pt(10, size.Height-15), gocv.FontHersheySimplex, 0.45, colorFooter, 1)

	thumbsTouching := res.Contacts[trigger.ThumbsTogether]
	if thumbsTouching {
		if left, right, ok := thumbPair(res.Hands); ok {
			gocv.Line(img, pt(left), pt(right), colorThumbs, 3)
		}
	}

	for _, hf := range res.Hands {
		thumbColor, thickness := colorThumb, 2
		if thumbsTouching {
			thumbColor, thickness = colorThumbs, 3
		}
		gocv.Circle(img, pt(hf.Thumb), res.Radii.Thumb, thumbColor, thickness)

		for f := trigger.Finger(0); f < trigger.NumFingers; f++ {
			k := trigger.FingerKey(hf.Hand, f)
			c := colorIdle
			if res.Contacts[k] {
				c = colorContact
			}
			tip := hf.Tips[f]
			gocv.Circle(img, pt(tip), res.Radii.Finger, c, 2)
			gocv.PutText(img, r.Label(k), image.Pt(tip.X-15, tip.Y-res.Radii.Finger-8), gocv.FontHersheySimplex, 0.35, c, 1)
		}
	}

	if r.Skeleton() {
		for i := range hands {
			drawSkeleton(img, &hands[i], size)
		}
	}
}

func drawSkeleton(img *gocv.Mat, hand *detector.HandLandmarks, size trigger.FrameSize) {
	for _, c := range detector.Connections {
		a := trigger.ToPixel(hand.Points[c[0]], size)
		b := trigger.ToPixel(hand.Points[c[1]], size)
		gocv.Line(img, pt(a), pt(b), colorSkeleton, 1)
	}
	for _, p := range hand.Points {
		gocv.Circle(img, pt(trigger.ToPixel(p, size)), 1, colorContact, 1)
	}
}

func thumbPair(hands []trigger.HandFrame) (left, right trigger.Point, ok bool) {
	var haveLeft, haveRight bool
	for _, hf := range hands {
		switch hf.Hand {
		case trigger.Left:
			left, haveLeft = hf.Thumb, true
		case trigger.Right:
			right, haveRight = hf.Thumb, true
		}
	}
	return left, right, haveLeft && haveRight
}

func pt(p trigger.Point) image.Point {
	return image.Pt(p.X, p.Y)
}
