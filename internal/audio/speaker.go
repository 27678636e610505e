package audio

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"github.com/rs/zerolog"
)

// resampleQuality trades CPU for fidelity when a clip's rate differs from the speaker's.
const resampleQuality = 4

// SpeakerPlayer decodes clips into memory and mixes them through the
// process-wide beep speaker.
type SpeakerPlayer struct {
	mu     sync.Mutex
	format beep.Format
	clips  map[string]*beep.Buffer
	full   *beep.Buffer
	logger zerolog.Logger
}

// NewSpeakerPlayer opens the default output device at sampleRate.
func NewSpeakerPlayer(sampleRate int, logger zerolog.Logger) (*SpeakerPlayer, error) {
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/20)); err != nil {
		return nil, fmt.Errorf("failed to open audio output: %w", err)
	}

	return &SpeakerPlayer{
		format: beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2},
		clips:  make(map[string]*beep.Buffer),
		logger: logger.With().Str("component", "audio").Logger(),
	}, nil
}

// Load decodes the WAV file at path and keeps it under id.
func (p *SpeakerPlayer) Load(id, path string) error {
	buf, err := decodeClip(path, p.format)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.clips[id] = buf
	p.mu.Unlock()
	return nil
}

// LoadFullTrack decodes the WAV file at path as the full track.
func (p *SpeakerPlayer) LoadFullTrack(path string) error {
	buf, err := decodeClip(path, p.format)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.full = buf
	p.mu.Unlock()
	return nil
}

// PlaySample starts the clip registered under id.
func (p *SpeakerPlayer) PlaySample(id string) {
	p.mu.Lock()
	buf, ok := p.clips[id]
	p.mu.Unlock()

	if !ok {
		p.logger.Warn().Err(ErrUnknownSample).Str("sample", id).Msg("Cannot play sample")
		return
	}
	speaker.Play(buf.Streamer(0, buf.Len()))
}

// StopAll silences every clip currently playing.
func (p *SpeakerPlayer) StopAll() {
	speaker.Clear()
}

// PlayFullTrack starts the full track, if loaded.
func (p *SpeakerPlayer) PlayFullTrack() {
	p.mu.Lock()
	buf := p.full
	p.mu.Unlock()

	if buf == nil {
		return
	}
	speaker.Play(buf.Streamer(0, buf.Len()))
}

// Close stops playback and releases the output device.
func (p *SpeakerPlayer) Close() error {
	speaker.Clear()
	speaker.Close()
	return nil
}

// decodeClip reads a WAV file fully into a buffer at the target format's rate.
func decodeClip(path string, target beep.Format) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != target.SampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, target.SampleRate, streamer)
	}

	buf := beep.NewBuffer(beep.Format{
		SampleRate:  target.SampleRate,
		NumChannels: format.NumChannels,
		Precision:   format.Precision,
	})
	buf.Append(s)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return buf, nil
}
