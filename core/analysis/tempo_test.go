package analysis

import (
	"testing"

	"MashFM/model"
)

// clickTrain builds a mono asset with evenly spaced one-hop clicks so the
// energy envelope shows exactly the wanted number of peaks.
func clickTrain(sampleRate int, durationSeconds float64, clicks int) *model.AudioAsset {
	total := int(durationSeconds * float64(sampleRate))
	samples := make([]float64, total)

	hop := sampleRate / 200
	numHops := total / hop
	startHop := 10
	spacing := (numHops - 2*startHop) / clicks

	for k := 0; k < clicks; k++ {
		h := startHop + k*spacing
		for j := h * hop; j < (h+1)*hop && j < total; j++ {
			samples[j] = 0.9
		}
	}
	return &model.AudioAsset{
		ID:          "click-train",
		SampleRate:  sampleRate,
		NumChannels: 1,
		Samples:     [][]float64{samples},
	}
}

func TestEstimateTempoShortBuffer(t *testing.T) {
	asset := clickTrain(8000, 2.0, 4)
	got := EstimateTempo(asset)
	if got.Value != FallbackBPM {
		t.Errorf("short buffer: got %d, want %d", got.Value, FallbackBPM)
	}
	if got.Confidence >= 0.5 {
		t.Errorf("short buffer confidence: got %v, want low", got.Confidence)
	}
}

func TestEstimateTempoSilence(t *testing.T) {
	asset := &model.AudioAsset{
		ID:          "silence",
		SampleRate:  8000,
		NumChannels: 1,
		Samples:     [][]float64{make([]float64, 8000*30)},
	}
	if got := EstimateTempo(asset); got.Value != FallbackBPM {
		t.Errorf("silence: got %d, want %d", got.Value, FallbackBPM)
	}
}

func TestEstimateTempoNilAsset(t *testing.T) {
	if got := EstimateTempo(nil); got.Value != FallbackBPM {
		t.Errorf("nil asset: got %d, want %d", got.Value, FallbackBPM)
	}
}

func TestEstimateTempoOctaveCorrection(t *testing.T) {
	tests := []struct {
		name   string
		clicks int
		want   int
	}{
		// 20 peaks over 30s is a raw 40 BPM, doubled into range.
		{"sparse doubles", 20, 80},
		// 110 peaks over 30s is a raw 220 BPM, halved into range.
		{"dense halves", 110, 110},
		// 60 peaks over 30s sits in range untouched.
		{"in range", 60, 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset := clickTrain(8000, 30.0, tt.clicks)
			got := EstimateTempo(asset)
			if got.Value != tt.want {
				t.Errorf("clicks=%d: got %d BPM, want %d", tt.clicks, got.Value, tt.want)
			}
		})
	}
}

func TestEstimateTempoResultInRange(t *testing.T) {
	for _, clicks := range []int{25, 50, 75, 100, 150} {
		asset := clickTrain(8000, 30.0, clicks)
		got := EstimateTempo(asset)
		if got.Value < 60 || got.Value > 200 {
			t.Errorf("clicks=%d: %d BPM outside [60, 200]", clicks, got.Value)
		}
	}
}
