package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/app"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/audio"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/capture"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/detector"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/server"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/store"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/trigger"
)

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	audioDir := filepath.Join(tmpDir, "audio")
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	for _, name := range []string{"robot.wav", "kanye_stronger.wav"} {
		if err := os.WriteFile(filepath.Join(audioDir, name), []byte("RIFF"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	tuning := trigger.NewTuning(app.RestoreRadii(s, trigger.DefaultRadii()), trigger.DefaultLimits())
	events := server.NewEventHub(zerolog.Nop())
	srv := server.New(server.Config{
		SessionID: "e2e",
		Store:     s,
		Tuning:    tuning,
		Events:    events,
		Logger:    zerolog.Nop(),
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	t.Run("BindSample", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/samples/Right/INDEX",
			strings.NewReader(`{"label": "Robot", "file": "robot.wav"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("PUT sample error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})

	samples, err := s.Samples().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	entries := make([]audio.Entry, 0, len(samples))
	for _, smp := range samples {
		entries = append(entries, audio.Entry{Key: smp.Key, Label: smp.Label, File: smp.File})
	}
	player := audio.NewRecorder()
	bank := audio.LoadBank(player, audioDir, entries, zerolog.Nop())
	if bank.Size() != 1 || !bank.HasFullTrack() {
		t.Fatalf("bank has %d samples, full track %v", bank.Size(), bank.HasFullTrack())
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	defer conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for events.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	frames := make([]*gocv.Mat, 4)
	for i := range frames {
		m := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	cam := capture.NewMockCamera(frames, false)
	defer cam.Release()

	pinch := detector.RelaxedHand("Right", 0.25, 0.5)
	pinch.Points[detector.IndexTip] = detector.Point3D{X: 0.25, Y: 0.46875}
	det := detector.NewMockDetector()
	det.Script(
		[]detector.HandLandmarks{pinch},
		nil,
		[]detector.HandLandmarks{
			detector.RelaxedHand("Left", 0.25, 0.5),
			detector.RelaxedHand("Right", 0.275, 0.5),
		},
		nil,
	)

	session, err := app.New(app.Config{
		SessionID: "e2e",
		Camera:    cam,
		Detector:  det,
		Player:    player,
		Bank:      bank,
		Tuning:    tuning,
		Cooldowns: trigger.DefaultCooldowns(),
		Store:     s,
		Events:    events,
		Logger:    zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}

	t.Run("PlaySession", func(t *testing.T) {
		if err := session.Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		want := []string{"play Right/INDEX", "stop", "full", "stop"}
		got := player.Commands()
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("player commands = %v, want %v", got, want)
		}
	})

	t.Run("LiveEvents", func(t *testing.T) {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		for _, want := range []string{"Right/INDEX", "ThumbsTogether"} {
			var ev server.Event
			if err := conn.ReadJSON(&ev); err != nil {
				t.Fatalf("read event error = %v", err)
			}
			if ev.Key != want || ev.Session != "e2e" {
				t.Errorf("event = %+v, want key %s", ev, want)
			}
		}
	})

	t.Run("TriggerHistory", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/triggers")
		if err != nil {
			t.Fatalf("GET triggers error = %v", err)
		}
		defer resp.Body.Close()

		var body struct {
			Triggers []struct {
				Key   string `json:"key"`
				Label string `json:"label"`
			} `json:"triggers"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if len(body.Triggers) != 2 {
			t.Fatalf("got %d triggers, want 2", len(body.Triggers))
		}
		if body.Triggers[0].Key != "ThumbsTogether" || body.Triggers[1].Label != "Robot" {
			t.Errorf("unexpected history: %+v", body.Triggers)
		}
	})

	t.Run("RadiiPersist", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/radii/increase", "application/json", nil)
		if err != nil {
			t.Fatalf("POST radii error = %v", err)
		}
		resp.Body.Close()

		want := trigger.Radii{Finger: 22, Thumb: 27}
		if got := app.RestoreRadii(s, trigger.DefaultRadii()); got != want {
			t.Errorf("RestoreRadii() = %v, want %v", got, want)
		}
	})
}
