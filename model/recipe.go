package model

// FilterType selects the optional per-track filter stage in the mixdown graph.
type FilterType string

const (
	FilterNone     FilterType = "none"
	FilterLowpass  FilterType = "lowpass"
	FilterHighpass FilterType = "highpass"
)

// MixRecipe is an immutable named rendering preset ("vibe"). Users pick one,
// they do not edit fields individually.
type MixRecipe struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	TempoMultiplier   float64    `json:"tempoMultiplier"` // [0.5, 2.0]
	KeyShiftSemitones int        `json:"keyShiftSemitones"`
	ReverbAmountPct   float64    `json:"reverbAmountPercent"`
	FilterType        FilterType `json:"filterType"`
	BeatComplexity    float64    `json:"beatComplexity"`
	VocalProcessing   string     `json:"vocalProcessing"`
}
