// Package transport keeps several independently decoded streams (one per
// stem, typically) moving together for preview playback. A single owner
// holds every stream handle and exposes atomic batch operations, so callers
// never observe a state where only some streams have updated.
package transport

import (
	"fmt"
	"sync"
	"time"

	"MashFM/model"
)

// Stream is one managed preview stream.
type Stream struct {
	ID          string
	Asset       *model.AudioAsset
	GainPercent float64
	Muted       bool
	Solo        bool
}

// MultiStreamTransport synchronizes N streams on one shared clock.
type MultiStreamTransport struct {
	mu      sync.Mutex
	streams map[string]*Stream
	order   []string

	playing   bool
	position  float64 // seconds, valid when paused; base when playing
	startedAt time.Time
	now       func() time.Time // injectable clock for tests
}

// New creates an empty transport.
func New() *MultiStreamTransport {
	return &MultiStreamTransport{
		streams: make(map[string]*Stream),
		now:     time.Now,
	}
}

// AddStream registers a decoded stream under the given id.
func (t *MultiStreamTransport) AddStream(id string, asset *model.AudioAsset) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id == "" {
		return fmt.Errorf("stream id is required")
	}
	if _, ok := t.streams[id]; ok {
		return fmt.Errorf("stream %s already registered", id)
	}
	t.streams[id] = &Stream{ID: id, Asset: asset, GainPercent: 100}
	t.order = append(t.order, id)
	return nil
}

// RemoveStream drops a stream. In-flight position is unaffected for the rest.
func (t *MultiStreamTransport) RemoveStream(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.streams[id]; !ok {
		return false
	}
	delete(t.streams, id)
	for i, sid := range t.order {
		if sid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// PlayAll starts every stream from the current shared position.
func (t *MultiStreamTransport) PlayAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.playing {
		return
	}
	t.playing = true
	t.startedAt = t.now()
}

// PauseAll freezes the shared position.
func (t *MultiStreamTransport) PauseAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.playing {
		return
	}
	t.position += t.now().Sub(t.startedAt).Seconds()
	t.playing = false
}

// SeekAll jumps every stream to the given position in one step. There is no
// intermediate state where streams disagree: the shared clock is the only
// position there is.
func (t *MultiStreamTransport) SeekAll(seconds float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	t.position = seconds
	t.startedAt = t.now()
}

// Position reports the shared transport position. Every stream reports this
// same value by construction.
func (t *MultiStreamTransport) Position() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.positionLocked()
}

func (t *MultiStreamTransport) positionLocked() float64 {
	if t.playing {
		return t.position + t.now().Sub(t.startedAt).Seconds()
	}
	return t.position
}

// Playing reports whether the transport is running.
func (t *MultiStreamTransport) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

// SetTrackGain updates one stream's gain.
func (t *MultiStreamTransport) SetTrackGain(id string, gainPercent float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.streams[id]
	if !ok {
		return fmt.Errorf("unknown stream %s", id)
	}
	if gainPercent < 0 {
		gainPercent = 0
	}
	if gainPercent > 100 {
		gainPercent = 100
	}
	s.GainPercent = gainPercent
	return nil
}

// SetMute updates one stream's mute flag.
func (t *MultiStreamTransport) SetMute(id string, muted bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.streams[id]
	if !ok {
		return fmt.Errorf("unknown stream %s", id)
	}
	s.Muted = muted
	return nil
}

// SetSolo updates one stream's solo flag.
func (t *MultiStreamTransport) SetSolo(id string, solo bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.streams[id]
	if !ok {
		return fmt.Errorf("unknown stream %s", id)
	}
	s.Solo = solo
	return nil
}

// Audible reports the effective audibility of a stream:
// not muted, and either no stream is soloed or this one is.
func (t *MultiStreamTransport) Audible(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.streams[id]
	if !ok {
		return false
	}
	if s.Muted {
		return false
	}
	anySolo := false
	for _, other := range t.streams {
		if other.Solo {
			anySolo = true
			break
		}
	}
	return !anySolo || s.Solo
}

// StreamState is a snapshot of one stream for UI/state sync.
type StreamState struct {
	ID          string  `json:"id"`
	GainPercent float64 `json:"gainPercent"`
	Muted       bool    `json:"muted"`
	Solo        bool    `json:"solo"`
	Audible     bool    `json:"audible"`
}

// TransportState is a coherent snapshot of the whole transport, taken under
// one lock so all streams agree.
type TransportState struct {
	Playing  bool          `json:"playing"`
	Position float64       `json:"position"`
	Streams  []StreamState `json:"streams"`
}

// State snapshots the transport atomically.
func (t *MultiStreamTransport) State() TransportState {
	t.mu.Lock()
	defer t.mu.Unlock()

	anySolo := false
	for _, s := range t.streams {
		if s.Solo {
			anySolo = true
			break
		}
	}

	state := TransportState{
		Playing:  t.playing,
		Position: t.positionLocked(),
	}
	for _, id := range t.order {
		s := t.streams[id]
		state.Streams = append(state.Streams, StreamState{
			ID:          s.ID,
			GainPercent: s.GainPercent,
			Muted:       s.Muted,
			Solo:        s.Solo,
			Audible:     !s.Muted && (!anySolo || s.Solo),
		})
	}
	return state
}
