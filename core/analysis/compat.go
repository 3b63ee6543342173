package analysis

import (
	"math"

	"MashFM/model"
)

// bpmTolerance is the window inside which two tempos mix without adjustment,
// directly or after a half/double octave jump.
const bpmTolerance = 3.0

// Score rates how well two analyzed tracks mix. Symmetric: Score(a, b) and
// Score(b, a) agree on Score/BPMCompatible/KeyCompatible; only the signed
// pitch-shift recommendation depends on argument order (it brings b to a).
func Score(a, b *model.TrackAnalysis) model.CompatibilityScore {
	bpmA := float64(a.BPM.Value)
	bpmB := float64(b.BPM.Value)

	bpmCompatible := bpmDistance(bpmA, bpmB) <= bpmTolerance
	keyCompatible := keysCompatible(a.Key, b.Key)

	var shift float64
	if !bpmCompatible && bpmB > 0 {
		shift = (bpmA - bpmB) / bpmB * 100.0
	}

	// Tempo closeness dominates (60 points), key adds the rest (40).
	dist := bpmDistance(bpmA, bpmB)
	tempoPoints := 60.0 * math.Max(0, 1-dist/30.0)

	keyPoints := 0.0
	switch {
	case keyCompatible:
		keyPoints = 40
	case a.Key.Scale == b.Key.Scale:
		// Same mode but unrelated tonic still blends better than clashing modes.
		keyPoints = 10
	}

	score := int(math.Round(tempoPoints + keyPoints))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return model.CompatibilityScore{
		Score:                        score,
		BPMCompatible:                bpmCompatible,
		KeyCompatible:                keyCompatible,
		RecommendedPitchShiftPercent: shift,
	}
}

// bpmDistance is the minimum absolute tempo difference considering direct
// comparison and one half/double octave jump either way. Symmetric.
func bpmDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	if v := math.Abs(a*2 - b); v < d {
		d = v
	}
	if v := math.Abs(a - b*2); v < d {
		d = v
	}
	return d
}

// keysCompatible applies the classic harmonic mixing rules: same tonic,
// relative major/minor pair, or circle-of-fifths neighbor in the same mode.
func keysCompatible(a, b model.KeyEstimate) bool {
	pa := ((a.PitchClass % 12) + 12) % 12
	pb := ((b.PitchClass % 12) + 12) % 12

	if pa == pb && a.Scale == b.Scale {
		return true
	}

	// Relative major/minor: minor tonic three semitones below the major.
	if a.Scale != b.Scale {
		maj, min := pa, pb
		if a.Scale == model.ScaleMinor {
			maj, min = pb, pa
		}
		if (maj+9)%12 == min {
			return true
		}
	}

	// Adjacent on the circle of fifths, same mode.
	if a.Scale == b.Scale {
		diff := (pa - pb + 12) % 12
		if diff == 5 || diff == 7 {
			return true
		}
	}

	return false
}
