package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It returns either a fixed set of hands or, when a script is queued,
// one scripted entry per Detect call.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	script [][]HandLandmarks
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Script queues per-frame results. Each Detect call consumes one entry;
// once the script is exhausted the fixed hands are returned.
func (m *MockDetector) Script(frames ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// RelaxedHand returns an open hand for the given handedness whose thumb tip
// sits at (thumbX, thumbY) in normalized coordinates. Every fingertip is
// placed well outside default touch range of the thumb.
func RelaxedHand(handedness string, thumbX, thumbY float64) HandLandmarks {
	hand := HandLandmarks{
		Handedness: handedness,
		Score:      0.95,
	}

	hand.Points[Wrist] = Point3D{X: thumbX, Y: thumbY + 0.30}
	hand.Points[ThumbCMC] = Point3D{X: thumbX, Y: thumbY + 0.22}
	hand.Points[ThumbMCP] = Point3D{X: thumbX, Y: thumbY + 0.15}
	hand.Points[ThumbIP] = Point3D{X: thumbX, Y: thumbY + 0.07}
	hand.Points[ThumbTip] = Point3D{X: thumbX, Y: thumbY}

	// Fingertips fan out above the thumb, each at least 0.25 away.
	tips := []struct {
		mcp, pip, dip, tip int
		dx                 float64
	}{
		{IndexMCP, IndexPIP, IndexDIP, IndexTip, -0.06},
		{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip, -0.02},
		{RingMCP, RingPIP, RingDIP, RingTip, 0.02},
		{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip, 0.06},
	}
	for _, f := range tips {
		x := thumbX + f.dx
		hand.Points[f.mcp] = Point3D{X: x, Y: thumbY + 0.05}
		hand.Points[f.pip] = Point3D{X: x, Y: thumbY - 0.08}
		hand.Points[f.dip] = Point3D{X: x, Y: thumbY - 0.17}
		hand.Points[f.tip] = Point3D{X: x, Y: thumbY - 0.26}
	}

	return hand
}

// PinchLandmarks returns a hand whose fingertip at tipIndex touches the thumb tip.
// The tip is moved 0.01 above the thumb, about 5 pixels at 640x480.
func PinchLandmarks(handedness string, tipIndex int, thumbX, thumbY float64) HandLandmarks {
	hand := RelaxedHand(handedness, thumbX, thumbY)
	hand.Points[tipIndex] = Point3D{X: thumbX, Y: thumbY - 0.01}
	return hand
}
