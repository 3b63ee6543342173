package analysis

import (
	"math"

	"MashFM/model"
)

// KeyLoudnessAnalyzer supplies the key/loudness half of a TrackAnalysis.
// The tempo algorithm is fully specified in-repo; key and loudness may come
// from whatever analyzer is wired in, including a deterministic stub.
type KeyLoudnessAnalyzer interface {
	KeyAndLoudness(asset *model.AudioAsset) (model.KeyEstimate, float64)
}

// NeutralKeyAnalyzer returns C major and the loudness sentinel. Used in tests
// and when no real analyzer is configured.
type NeutralKeyAnalyzer struct{}

func (NeutralKeyAnalyzer) KeyAndLoudness(_ *model.AudioAsset) (model.KeyEstimate, float64) {
	return model.KeyEstimate{PitchClass: 0, Scale: model.ScaleMajor}, model.LoudnessUnknown
}

// Krumhansl-Schmuckler key profiles.
var (
	majProfile = [12]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minProfile = [12]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// ChromaKeyAnalyzer estimates key by folding a Goertzel-style pitch-class
// energy histogram against the Krumhansl profiles, and loudness as mean RMS
// in dBFS. Deterministic, no external service needed.
type ChromaKeyAnalyzer struct{}

func (ChromaKeyAnalyzer) KeyAndLoudness(asset *model.AudioAsset) (model.KeyEstimate, float64) {
	if asset == nil || len(asset.Samples) == 0 {
		return model.KeyEstimate{PitchClass: 0, Scale: model.ScaleMajor}, model.LoudnessUnknown
	}
	samples := asset.Samples[0]
	sr := float64(asset.SampleRate)

	// Pitch-class energy via per-semitone Goertzel bins over C2..B5.
	var chroma [12]float64
	window := len(samples)
	if window > int(sr*30) {
		window = int(sr * 30) // first 30 seconds is plenty for key
	}
	for midi := 36; midi < 84; midi++ {
		freq := 440.0 * math.Pow(2, (float64(midi)-69)/12)
		if freq >= sr/2 {
			break
		}
		chroma[midi%12] += goertzelPower(samples[:window], sr, freq)
	}

	bestScore := math.Inf(-1)
	best := model.KeyEstimate{PitchClass: 0, Scale: model.ScaleMajor}
	for rot := 0; rot < 12; rot++ {
		var maj, min float64
		for j := 0; j < 12; j++ {
			v := chroma[(j+rot)%12]
			maj += v * majProfile[j]
			min += v * minProfile[j]
		}
		if maj > bestScore {
			bestScore = maj
			best = model.KeyEstimate{PitchClass: rot, Scale: model.ScaleMajor}
		}
		if min > bestScore {
			bestScore = min
			best = model.KeyEstimate{PitchClass: rot, Scale: model.ScaleMinor}
		}
	}

	// Loudness: RMS over the whole buffer in dBFS. Not true LUFS weighting,
	// close enough for compatibility display.
	var sumSq float64
	for _, s := range samples {
		sumSq += s * s
	}
	rms := math.Sqrt(sumSq / float64(len(samples)+1))
	loudness := 20 * math.Log10(rms+1e-9)

	return best, loudness
}

// goertzelPower returns the normalized power of one frequency bin.
func goertzelPower(samples []float64, sampleRate, freq float64) float64 {
	w := 2 * math.Pi * freq / sampleRate
	coeff := 2 * math.Cos(w)
	var s0, s1, s2 float64
	for _, x := range samples {
		s0 = x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	power := s1*s1 + s2*s2 - coeff*s1*s2
	return power / float64(len(samples)+1)
}
