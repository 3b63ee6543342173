package analysis

import (
	"math"
	"testing"
)

func TestBeatGridSpacing(t *testing.T) {
	beats := BeatGrid(120, 0, 8)

	if len(beats) != 16 {
		t.Fatalf("got %d beats, want 16", len(beats))
	}
	for i, b := range beats {
		want := float64(i) * 0.5
		if math.Abs(b.TimeSeconds-want) > 1e-9 {
			t.Errorf("beat %d at %v, want %v", i, b.TimeSeconds, want)
		}
		if b.BeatIndex != i {
			t.Errorf("beat %d has index %d", i, b.BeatIndex)
		}
		if got, want := b.IsBar, i%4 == 0; got != want {
			t.Errorf("beat %d IsBar=%v, want %v", i, got, want)
		}
		if got, want := b.IsHalfBar, i%2 == 0; got != want {
			t.Errorf("beat %d IsHalfBar=%v, want %v", i, got, want)
		}
	}
}

func TestBeatGridOffset(t *testing.T) {
	beats := BeatGrid(120, 0.25, 8)
	if len(beats) == 0 {
		t.Fatal("no beats")
	}
	if beats[0].TimeSeconds != 0.25 {
		t.Errorf("first beat at %v, want 0.25", beats[0].TimeSeconds)
	}
	last := beats[len(beats)-1]
	if last.TimeSeconds >= 8 {
		t.Errorf("last beat %v not strictly before duration", last.TimeSeconds)
	}
}

func TestBeatGridInvalidBPM(t *testing.T) {
	beats := BeatGrid(0, 0, 2)
	if len(beats) == 0 {
		t.Fatal("no beats for fallback tempo")
	}
	if got := beats[1].TimeSeconds - beats[0].TimeSeconds; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("fallback step %v, want 0.5", got)
	}
}
