package analysis

import (
	"math"
	"testing"

	"MashFM/model"
)

func TestNeutralKeyAnalyzer(t *testing.T) {
	key, loudness := NeutralKeyAnalyzer{}.KeyAndLoudness(nil)
	if key.PitchClass != 0 || key.Scale != model.ScaleMajor {
		t.Errorf("got %s", key.Name())
	}
	if loudness != model.LoudnessUnknown {
		t.Errorf("loudness %v, want sentinel", loudness)
	}
}

func TestChromaKeyAnalyzerPureTone(t *testing.T) {
	// A 220Hz tone should land on pitch class 9 (A) whatever the mode.
	sr := 8000
	samples := make([]float64, sr*4)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*220*float64(i)/float64(sr))
	}
	asset := &model.AudioAsset{ID: "a220", SampleRate: sr, NumChannels: 1, Samples: [][]float64{samples}}

	key, loudness := ChromaKeyAnalyzer{}.KeyAndLoudness(asset)
	if key.PitchClass != 9 {
		t.Errorf("pitch class %d (%s), want 9 (A)", key.PitchClass, key.Name())
	}
	if loudness > 0 || loudness < -60 {
		t.Errorf("implausible loudness %v dBFS for a loud tone", loudness)
	}
}

func TestChromaKeyAnalyzerSilence(t *testing.T) {
	asset := &model.AudioAsset{ID: "quiet", SampleRate: 8000, NumChannels: 1, Samples: [][]float64{make([]float64, 8000)}}
	_, loudness := ChromaKeyAnalyzer{}.KeyAndLoudness(asset)
	if loudness > -100 {
		t.Errorf("silence measured at %v dBFS", loudness)
	}
}

func TestKeyEstimateName(t *testing.T) {
	tests := []struct {
		key  model.KeyEstimate
		want string
	}{
		{model.KeyEstimate{PitchClass: 9, Scale: model.ScaleMinor}, "A minor"},
		{model.KeyEstimate{PitchClass: 0, Scale: model.ScaleMajor}, "C major"},
		{model.KeyEstimate{PitchClass: 13, Scale: model.ScaleMajor}, "C# major"},
	}
	for _, tt := range tests {
		if got := tt.key.Name(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}
