package analysis

import (
	"math"

	"MashFM/model"
)

const (
	// FallbackBPM is returned when the signal is too short or too sparse
	// to count onsets.
	FallbackBPM = 120

	// envelopeRate is the target rate of the energy envelope in Hz.
	envelopeRate = 200

	// peakDebounce is the minimum distance between accepted peaks, in
	// envelope samples (~50ms at 200Hz).
	peakDebounce = 10

	minDurationSeconds = 5.0
	minPeakCount       = 4
)

// EstimateTempo estimates BPM from channel 0 via energy-envelope onset
// counting. This is an onset-density heuristic, not an autocorrelation beat
// tracker: it is cheap and approximate by design, and its accuracy on sparse
// or very dense material is a known limitation.
func EstimateTempo(asset *model.AudioAsset) model.BPMEstimate {
	if asset == nil || len(asset.Samples) == 0 || asset.SampleRate <= 0 {
		return model.BPMEstimate{Value: FallbackBPM, Confidence: 0}
	}

	samples := asset.Samples[0]
	duration := asset.DurationSeconds()

	hop := asset.SampleRate / envelopeRate
	if hop < 1 {
		hop = 1
	}

	// Energy envelope: mean of squared samples per hop.
	numHops := len(samples) / hop
	energies := make([]float64, numHops)
	for i := 0; i < numHops; i++ {
		sum := 0.0
		for j := i * hop; j < (i+1)*hop; j++ {
			sum += samples[j] * samples[j]
		}
		energies[i] = sum / float64(hop)
	}

	var mean float64
	for _, e := range energies {
		mean += e
	}
	if numHops > 0 {
		mean /= float64(numHops)
	}
	threshold := mean * 1.5

	// Debounced strict local maxima above threshold.
	peakCount := 0
	lastPeak := -peakDebounce
	for i := 1; i < numHops-1; i++ {
		if energies[i] > threshold &&
			energies[i] > energies[i-1] &&
			energies[i] > energies[i+1] &&
			i-lastPeak >= peakDebounce {
			peakCount++
			lastPeak = i
		}
	}

	if duration < minDurationSeconds || peakCount < minPeakCount {
		return model.BPMEstimate{Value: FallbackBPM, Confidence: 0.2}
	}

	rawBpm := float64(peakCount) / duration * 60.0

	// Single octave correction into a plausible range.
	if rawBpm < 60 {
		rawBpm *= 2
	} else if rawBpm > 200 {
		rawBpm /= 2
	}

	confidence := 0.5
	if rawBpm >= 70 && rawBpm <= 180 {
		confidence = 0.7
	}
	return model.BPMEstimate{Value: int(math.Round(rawBpm)), Confidence: confidence}
}
