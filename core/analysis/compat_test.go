package analysis

import (
	"testing"

	"MashFM/model"
)

func analysisWith(bpm int, pitchClass int, scale model.Scale) *model.TrackAnalysis {
	return &model.TrackAnalysis{
		BPM: model.BPMEstimate{Value: bpm, Confidence: 0.7},
		Key: model.KeyEstimate{PitchClass: pitchClass, Scale: scale},
	}
}

func TestScoreSymmetric(t *testing.T) {
	pairs := [][2]*model.TrackAnalysis{
		{analysisWith(120, 0, model.ScaleMajor), analysisWith(124, 9, model.ScaleMinor)},
		{analysisWith(90, 5, model.ScaleMinor), analysisWith(178, 7, model.ScaleMajor)},
		{analysisWith(128, 2, model.ScaleMajor), analysisWith(128, 2, model.ScaleMajor)},
		{analysisWith(70, 11, model.ScaleMinor), analysisWith(199, 3, model.ScaleMajor)},
	}
	for i, pair := range pairs {
		ab := Score(pair[0], pair[1])
		ba := Score(pair[1], pair[0])
		if ab.Score != ba.Score {
			t.Errorf("pair %d: score %d vs %d", i, ab.Score, ba.Score)
		}
		if ab.BPMCompatible != ba.BPMCompatible {
			t.Errorf("pair %d: bpmCompatible asymmetric", i)
		}
		if ab.KeyCompatible != ba.KeyCompatible {
			t.Errorf("pair %d: keyCompatible asymmetric", i)
		}
	}
}

func TestBPMCompatibility(t *testing.T) {
	tests := []struct {
		name string
		a, b int
		want bool
	}{
		{"identical", 120, 120, true},
		{"within tolerance", 120, 123, true},
		{"just outside", 120, 124, false},
		{"double", 60, 120, true},
		{"near double", 61, 120, true},
		{"half", 170, 85, true},
		{"unrelated", 100, 137, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(analysisWith(tt.a, 0, model.ScaleMajor), analysisWith(tt.b, 0, model.ScaleMajor))
			if got.BPMCompatible != tt.want {
				t.Errorf("%d vs %d: got %v, want %v", tt.a, tt.b, got.BPMCompatible, tt.want)
			}
		})
	}
}

func TestKeyCompatibility(t *testing.T) {
	tests := []struct {
		name string
		a, b model.KeyEstimate
		want bool
	}{
		{"same key", key(0, model.ScaleMajor), key(0, model.ScaleMajor), true},
		{"same tonic different mode", key(0, model.ScaleMajor), key(0, model.ScaleMinor), false},
		{"relative minor", key(0, model.ScaleMajor), key(9, model.ScaleMinor), true},
		{"relative major", key(9, model.ScaleMinor), key(0, model.ScaleMajor), true},
		{"fifth up", key(0, model.ScaleMajor), key(7, model.ScaleMajor), true},
		{"fourth up", key(0, model.ScaleMajor), key(5, model.ScaleMajor), true},
		{"fifth across modes", key(0, model.ScaleMajor), key(7, model.ScaleMinor), false},
		{"tritone", key(0, model.ScaleMajor), key(6, model.ScaleMajor), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(analysisWith(120, tt.a.PitchClass, tt.a.Scale), analysisWith(120, tt.b.PitchClass, tt.b.Scale))
			if got.KeyCompatible != tt.want {
				t.Errorf("%s vs %s: got %v, want %v", tt.a.Name(), tt.b.Name(), got.KeyCompatible, tt.want)
			}
		})
	}
}

func key(pc int, scale model.Scale) model.KeyEstimate {
	return model.KeyEstimate{PitchClass: pc, Scale: scale}
}

func TestScoreMonotonicInTempoDistance(t *testing.T) {
	base := analysisWith(120, 0, model.ScaleMajor)
	prev := 101
	for _, bpm := range []int{120, 125, 132, 140, 155} {
		got := Score(base, analysisWith(bpm, 0, model.ScaleMajor)).Score
		if got > prev {
			t.Errorf("score rose from %d to %d as tempo distance grew (bpm %d)", prev, got, bpm)
		}
		prev = got
	}
}

func TestScoreBounds(t *testing.T) {
	perfect := Score(analysisWith(120, 0, model.ScaleMajor), analysisWith(120, 0, model.ScaleMajor))
	if perfect.Score != 100 {
		t.Errorf("identical tracks: got %d, want 100", perfect.Score)
	}
	awful := Score(analysisWith(120, 0, model.ScaleMajor), analysisWith(157, 6, model.ScaleMinor))
	if awful.Score < 0 || awful.Score > 100 {
		t.Errorf("score %d outside [0, 100]", awful.Score)
	}
}

func TestRecommendedPitchShift(t *testing.T) {
	a := analysisWith(130, 0, model.ScaleMajor)
	b := analysisWith(100, 0, model.ScaleMajor)

	got := Score(a, b)
	if got.BPMCompatible {
		t.Fatal("130 vs 100 should not be bpm compatible")
	}
	if want := 30.0; got.RecommendedPitchShiftPercent != want {
		t.Errorf("shift %v, want %v", got.RecommendedPitchShiftPercent, want)
	}

	// Compatible pairs need no shift.
	same := Score(a, analysisWith(131, 0, model.ScaleMajor))
	if same.RecommendedPitchShiftPercent != 0 {
		t.Errorf("compatible pair recommended shift %v, want 0", same.RecommendedPitchShiftPercent)
	}
}
