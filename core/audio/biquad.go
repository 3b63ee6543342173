package audio

import (
	"math"

	"MashFM/model"
)

// Biquad is a two-pole two-zero IIR filter section (RBJ cookbook form).
type Biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

// clampCutoff keeps the cutoff inside (0, Nyquist) so the section stays stable
// at low sample rates.
func clampCutoff(sampleRate int, cutoffHz float64) float64 {
	nyquist := float64(sampleRate) / 2
	if cutoffHz >= nyquist {
		return nyquist * 0.9
	}
	if cutoffHz < 1 {
		return 1
	}
	return cutoffHz
}

// NewLowpass builds a lowpass biquad at the given cutoff.
func NewLowpass(sampleRate int, cutoffHz, q float64) *Biquad {
	cutoffHz = clampCutoff(sampleRate, cutoffHz)
	w0 := 2 * math.Pi * cutoffHz / float64(sampleRate)
	alpha := math.Sin(w0) / (2 * q)
	cosW0 := math.Cos(w0)

	b0 := (1 - cosW0) / 2
	b1 := 1 - cosW0
	b2 := (1 - cosW0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha

	return &Biquad{b0: b0 / a0, b1: b1 / a0, b2: b2 / a0, a1: a1 / a0, a2: a2 / a0}
}

// NewHighpass builds a highpass biquad at the given cutoff.
func NewHighpass(sampleRate int, cutoffHz, q float64) *Biquad {
	cutoffHz = clampCutoff(sampleRate, cutoffHz)
	w0 := 2 * math.Pi * cutoffHz / float64(sampleRate)
	alpha := math.Sin(w0) / (2 * q)
	cosW0 := math.Cos(w0)

	b0 := (1 + cosW0) / 2
	b1 := -(1 + cosW0)
	b2 := (1 + cosW0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha

	return &Biquad{b0: b0 / a0, b1: b1 / a0, b2: b2 / a0, a1: a1 / a0, a2: a2 / a0}
}

// Process filters one sample through the section (direct form I).
func (f *Biquad) Process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// Reset clears the filter state.
func (f *Biquad) Reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}

// Default cutoffs for the mixdown filter stage.
const (
	LowpassCutoffHz  = 3500.0
	HighpassCutoffHz = 250.0
	FilterQ          = 1.0
)

// NewFilterFor returns the biquad matching a recipe filter type, or nil for
// FilterNone.
func NewFilterFor(filterType model.FilterType, sampleRate int) *Biquad {
	switch filterType {
	case model.FilterLowpass:
		return NewLowpass(sampleRate, LowpassCutoffHz, FilterQ)
	case model.FilterHighpass:
		return NewHighpass(sampleRate, HighpassCutoffHz, FilterQ)
	default:
		return nil
	}
}
