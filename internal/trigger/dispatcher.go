package trigger

import "github.com/rs/zerolog"

// Player receives playback commands. Every method must return without
// waiting for playback to finish.
type Player interface {
	PlaySample(id string)
	StopAll()
	PlayFullTrack()
}

// Bank resolves keys to loaded sample identities.
type Bank interface {
	SampleFor(k Key) (id string, ok bool)
	HasFullTrack() bool
}

// Dispatcher turns fired keys into playback commands.
type Dispatcher struct {
	player Player
	bank   Bank
	logger zerolog.Logger
}

// NewDispatcher creates a dispatcher over the given player and bank.
func NewDispatcher(p Player, b Bank, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		player: p,
		bank:   b,
		logger: logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch issues the commands for k and reports whether anything was sent.
// Keys without a loaded sample are a silent no-op.
func (d *Dispatcher) Dispatch(k Key) bool {
	if k.IsThumbs() {
		if !d.bank.HasFullTrack() {
			d.logger.Debug().Msg("Thumbs together, no full track loaded")
			return false
		}
		// Issued back to back on this goroutine so no other dispatch lands between them.
		d.player.StopAll()
		d.player.PlayFullTrack()
		d.logger.Info().Msg("Full track playing")
		return true
	}

	id, ok := d.bank.SampleFor(k)
	if !ok {
		d.logger.Debug().Stringer("key", k).Msg("No sample for key")
		return false
	}
	d.player.PlaySample(id)
	d.logger.Debug().Stringer("key", k).Str("sample", id).Msg("Sample playing")
	return true
}
