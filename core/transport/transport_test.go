package transport

import (
	"testing"
	"time"

	"MashFM/model"
)

func stubAsset(id string) *model.AudioAsset {
	return &model.AudioAsset{ID: id, SampleRate: 1000, NumChannels: 1, Samples: [][]float64{make([]float64, 1000)}}
}

// fakeClock lets tests advance the transport's shared clock manually.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTransport(ids ...string) (*MultiStreamTransport, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tr := New()
	tr.now = clock.now
	for _, id := range ids {
		if err := tr.AddStream(id, stubAsset(id)); err != nil {
			panic(err)
		}
	}
	return tr, clock
}

func TestSharedClock(t *testing.T) {
	tr, clock := newTestTransport("a", "b", "c")

	tr.PlayAll()
	clock.advance(3 * time.Second)
	if got := tr.Position(); got != 3 {
		t.Errorf("position %v, want 3", got)
	}

	tr.PauseAll()
	clock.advance(10 * time.Second)
	if got := tr.Position(); got != 3 {
		t.Errorf("paused position drifted to %v", got)
	}

	tr.PlayAll()
	clock.advance(2 * time.Second)
	if got := tr.Position(); got != 5 {
		t.Errorf("resumed position %v, want 5", got)
	}
}

func TestSeekAll(t *testing.T) {
	tr, clock := newTestTransport("a", "b")
	tr.PlayAll()
	clock.advance(10 * time.Second)

	tr.SeekAll(2)
	if got := tr.Position(); got != 2 {
		t.Errorf("position %v, want 2", got)
	}

	tr.SeekAll(-5)
	if got := tr.Position(); got != 0 {
		t.Errorf("negative seek landed at %v, want 0", got)
	}

	// Every stream in the snapshot sees the same position.
	state := tr.State()
	if state.Position != tr.Position() {
		t.Error("snapshot position diverged")
	}
}

func TestAudibilityMatrix(t *testing.T) {
	tests := []struct {
		name  string
		setup func(tr *MultiStreamTransport)
		want  map[string]bool
	}{
		{
			name:  "default all audible",
			setup: func(tr *MultiStreamTransport) {},
			want:  map[string]bool{"a": true, "b": true, "c": true},
		},
		{
			name: "mute silences only itself",
			setup: func(tr *MultiStreamTransport) {
				tr.SetMute("b", true)
			},
			want: map[string]bool{"a": true, "b": false, "c": true},
		},
		{
			name: "solo silences the others",
			setup: func(tr *MultiStreamTransport) {
				tr.SetSolo("a", true)
			},
			want: map[string]bool{"a": true, "b": false, "c": false},
		},
		{
			name: "two solos both audible",
			setup: func(tr *MultiStreamTransport) {
				tr.SetSolo("a", true)
				tr.SetSolo("c", true)
			},
			want: map[string]bool{"a": true, "b": false, "c": true},
		},
		{
			name: "muted solo stays silent",
			setup: func(tr *MultiStreamTransport) {
				tr.SetSolo("a", true)
				tr.SetMute("a", true)
			},
			want: map[string]bool{"a": false, "b": false, "c": false},
		},
		{
			name: "solo released restores everyone",
			setup: func(tr *MultiStreamTransport) {
				tr.SetSolo("a", true)
				tr.SetSolo("a", false)
			},
			want: map[string]bool{"a": true, "b": true, "c": true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTestTransport("a", "b", "c")
			tt.setup(tr)
			for id, want := range tt.want {
				if got := tr.Audible(id); got != want {
					t.Errorf("Audible(%s)=%v, want %v", id, got, want)
				}
			}
		})
	}
}

func TestStateSnapshotConsistent(t *testing.T) {
	tr, _ := newTestTransport("a", "b")
	tr.SetSolo("a", true)
	tr.SetTrackGain("b", 40)

	state := tr.State()
	if len(state.Streams) != 2 {
		t.Fatalf("got %d streams", len(state.Streams))
	}
	// Order follows insertion.
	if state.Streams[0].ID != "a" || state.Streams[1].ID != "b" {
		t.Error("stream order lost")
	}
	if !state.Streams[0].Audible || state.Streams[1].Audible {
		t.Error("snapshot audibility disagrees with solo state")
	}
	if state.Streams[1].GainPercent != 40 {
		t.Errorf("gain %v, want 40", state.Streams[1].GainPercent)
	}
}

func TestGainClamped(t *testing.T) {
	tr, _ := newTestTransport("a")
	tr.SetTrackGain("a", 150)
	if got := tr.State().Streams[0].GainPercent; got != 100 {
		t.Errorf("gain %v, want clamped 100", got)
	}
	tr.SetTrackGain("a", -10)
	if got := tr.State().Streams[0].GainPercent; got != 0 {
		t.Errorf("gain %v, want clamped 0", got)
	}
}

func TestStreamLifecycle(t *testing.T) {
	tr, _ := newTestTransport("a")
	if err := tr.AddStream("a", stubAsset("a")); err == nil {
		t.Error("duplicate stream id accepted")
	}
	if err := tr.SetMute("nope", true); err == nil {
		t.Error("mute on unknown stream accepted")
	}
	if !tr.RemoveStream("a") {
		t.Error("remove of known stream failed")
	}
	if tr.RemoveStream("a") {
		t.Error("double remove succeeded")
	}
	if tr.Audible("a") {
		t.Error("removed stream still audible")
	}
}
