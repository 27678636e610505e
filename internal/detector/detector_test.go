package detector

import (
	"errors"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{
			RelaxedHand("Left", 0.3, 0.5),
			RelaxedHand("Right", 0.7, 0.5),
		})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
	})

	t.Run("script is consumed one entry per call", func(t *testing.T) {
		mock := NewMockDetector()
		fixed := []HandLandmarks{RelaxedHand("Left", 0.3, 0.5)}
		mock.SetHands(fixed)
		mock.Script(
			[]HandLandmarks{RelaxedHand("Right", 0.7, 0.5)},
			nil,
		)

		first, _ := mock.Detect(nil)
		second, _ := mock.Detect(nil)
		third, _ := mock.Detect(nil)

		if len(first) != 1 || first[0].Handedness != "Right" {
			t.Errorf("first call: got %v", first)
		}
		if len(second) != 0 {
			t.Errorf("second call: expected no hands, got %d", len(second))
		}
		if len(third) != 1 || third[0].Handedness != "Left" {
			t.Errorf("third call should fall back to fixed hands, got %v", third)
		}
		if mock.Calls() != 3 {
			t.Errorf("Calls() = %d, want 3", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("Close returns nil", func(t *testing.T) {
		if err := NewMockDetector().Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func pixelDistance(a, b Point3D) float64 {
	dx := (a.X - b.X) * 640
	dy := (a.Y - b.Y) * 480
	return math.Sqrt(dx*dx + dy*dy)
}

func TestRelaxedHand(t *testing.T) {
	hand := RelaxedHand("Right", 0.6, 0.6)

	if hand.Handedness != "Right" {
		t.Errorf("expected handedness Right, got %s", hand.Handedness)
	}

	thumb := hand.Points[ThumbTip]
	for _, tip := range []int{IndexTip, MiddleTip, RingTip, PinkyTip} {
		// 45px is the default thumb+finger radius sum.
		if d := pixelDistance(thumb, hand.Points[tip]); d < 45 {
			t.Errorf("tip %d is %.1fpx from thumb, expected out of touch range", tip, d)
		}
	}
}

func TestPinchLandmarks(t *testing.T) {
	hand := PinchLandmarks("Left", RingTip, 0.4, 0.5)

	thumb := hand.Points[ThumbTip]
	if d := pixelDistance(thumb, hand.Points[RingTip]); d > 10 {
		t.Errorf("ring tip is %.1fpx from thumb, expected a pinch", d)
	}
	if d := pixelDistance(thumb, hand.Points[IndexTip]); d < 45 {
		t.Errorf("index tip should stay relaxed, got %.1fpx", d)
	}
}

func TestParseResponse(t *testing.T) {
	full := make([]string, NumLandmarks)
	for i := range full {
		full[i] = `{"x":0.5,"y":0.25,"z":0}`
	}
	points := "[" + strings.Join(full, ",") + "]"

	tests := []struct {
		name      string
		line      string
		wantHands int
		wantErr   bool
	}{
		{
			name:      "no hands",
			line:      `{"hands":[]}`,
			wantHands: 0,
		},
		{
			name:      "one complete hand",
			line:      `{"hands":[{"handedness":"Left","score":0.9,"points":` + points + `}]}`,
			wantHands: 1,
		},
		{
			name:      "truncated hand is dropped",
			line:      `{"hands":[{"handedness":"Left","score":0.9,"points":[{"x":0.1,"y":0.1,"z":0}]}]}`,
			wantHands: 0,
		},
		{
			name:    "service error",
			line:    `{"hands":[],"error":"decode failed"}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			line:    `{"hands":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hands, err := parseResponse([]byte(tt.line))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(hands) != tt.wantHands {
				t.Errorf("got %d hands, want %d", len(hands), tt.wantHands)
			}
		})
	}

	t.Run("coordinates are copied", func(t *testing.T) {
		hands, err := parseResponse([]byte(`{"hands":[{"handedness":"Right","score":0.8,"points":` + points + `}]}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hands[0].Points[ThumbTip].X != 0.5 || hands[0].Points[ThumbTip].Y != 0.25 {
			t.Errorf("unexpected thumb tip %+v", hands[0].Points[ThumbTip])
		}
		if hands[0].Handedness != "Right" {
			t.Errorf("handedness = %s, want Right", hands[0].Handedness)
		}
	})
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	_, err := NewMediaPipeDetector(Config{ScriptPath: t.TempDir() + "/absent.py"}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error for missing script")
	}
}

func TestService_RoundTrip(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	// Answers with one empty reply, then drains stdin until it closes.
	script := filepath.Join(t.TempDir(), "fake_service.sh")
	body := "echo '{\"hands\":[]}'\ncat > /dev/null\n"
	if err := os.WriteFile(script, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	svc, err := startService(sh, script, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("startService() error = %v", err)
	}

	line, err := svc.roundTrip([]byte("not really a jpeg"))
	if err != nil {
		t.Fatalf("roundTrip() error = %v", err)
	}
	hands, err := parseResponse(line)
	if err != nil || len(hands) != 0 {
		t.Errorf("parseResponse() = %v, %v; want no hands", hands, err)
	}

	if err := svc.stop(); err != nil {
		t.Errorf("stop() error = %v", err)
	}
}

func TestFirstExisting(t *testing.T) {
	empty := t.TempDir()
	withScript := t.TempDir()
	want := filepath.Join(withScript, "scripts", ScriptName)
	if err := os.MkdirAll(filepath.Dir(want), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(want, nil, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	rel := filepath.Join("scripts", ScriptName)
	if got := firstExisting([]string{empty, withScript}, rel); got != want {
		t.Errorf("firstExisting() = %q, want %q", got, want)
	}
	if got := firstExisting([]string{empty}, rel); got != "" {
		t.Errorf("firstExisting() = %q, want empty", got)
	}
}
