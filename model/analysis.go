package model

// Scale is the mode of a musical key.
type Scale string

const (
	ScaleMajor Scale = "major"
	ScaleMinor Scale = "minor"
)

// BPMEstimate is a tempo estimate with a confidence in [0, 1].
type BPMEstimate struct {
	Value      int     `json:"value"`
	Confidence float64 `json:"confidence"`
}

// KeyEstimate is a musical key estimate. PitchClass is 0-11 with C = 0.
type KeyEstimate struct {
	PitchClass int   `json:"pitchClass"`
	Scale      Scale `json:"scale"`
}

// LoudnessUnknown is the sentinel loudness when no analyzer was available.
const LoudnessUnknown = -99.0

// TrackAnalysis is the immutable per-asset analysis record. Computed once
// per asset id and cached; never mutated afterwards.
type TrackAnalysis struct {
	AssetID         string      `json:"assetId"`
	BPM             BPMEstimate `json:"bpm"`
	Key             KeyEstimate `json:"key"`
	LoudnessLUFS    float64     `json:"loudnessLufs"`
	DurationSeconds float64     `json:"durationSeconds"`
}

// CompatibilityScore is an ephemeral harmonic/tempo mixing score between two
// analyzed tracks. Recomputed on demand, never persisted.
type CompatibilityScore struct {
	Score                        int     `json:"score"` // 0-100
	BPMCompatible                bool    `json:"bpmCompatible"`
	KeyCompatible                bool    `json:"keyCompatible"`
	RecommendedPitchShiftPercent float64 `json:"recommendedPitchShiftPercent"`
}

var pitchClassNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Name returns a display name like "A minor".
func (k KeyEstimate) Name() string {
	pc := ((k.PitchClass % 12) + 12) % 12
	scale := k.Scale
	if scale == "" {
		scale = ScaleMajor
	}
	return pitchClassNames[pc] + " " + string(scale)
}
