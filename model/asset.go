package model

// AudioAsset is an immutable decoded audio buffer. Samples are stored
// per channel as float64 in [-1, 1]. Rendering always produces a new
// AudioAsset; two assets never alias the same sample storage.
type AudioAsset struct {
	ID          string      `json:"id"`
	SampleRate  int         `json:"sampleRate"`
	NumChannels int         `json:"channelCount"`
	Samples     [][]float64 `json:"-"` // per-channel, not serialized
}

// DurationSeconds returns the asset duration derived from channel 0.
func (a *AudioAsset) DurationSeconds() float64 {
	if a == nil || len(a.Samples) == 0 || a.SampleRate <= 0 {
		return 0
	}
	return float64(len(a.Samples[0])) / float64(a.SampleRate)
}

// Channel returns the sample slice for the given channel, falling back to
// channel 0 when the index is out of range (mono assets feeding stereo graphs).
func (a *AudioAsset) Channel(i int) []float64 {
	if len(a.Samples) == 0 {
		return nil
	}
	if i < 0 || i >= len(a.Samples) {
		return a.Samples[0]
	}
	return a.Samples[i]
}
