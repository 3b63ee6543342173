package analysis

import "MashFM/model"

// Beat is one derived beat-grid entry.
type Beat struct {
	TimeSeconds float64 `json:"timeSeconds"`
	BeatIndex   int     `json:"beatIndex"`
	IsBar       bool    `json:"isBar"`
	IsHalfBar   bool    `json:"isHalfBar"`
}

// BeatGrid derives beat/bar timestamps for visual alignment. Pure function,
// recomputed on demand and never stored: beats step by 60/bpm from the offset
// up to (exclusive) the duration. Bars are every 4th beat in 4/4.
func BeatGrid(bpm int, beatOffset, durationSeconds float64) []Beat {
	if bpm <= 0 {
		bpm = FallbackBPM
	}
	step := 60.0 / float64(bpm)

	var beats []Beat
	idx := 0
	for t := beatOffset; t < durationSeconds; t += step {
		beats = append(beats, Beat{
			TimeSeconds: t,
			BeatIndex:   idx,
			IsBar:       idx%4 == 0,
			IsHalfBar:   idx%2 == 0,
		})
		idx++
	}
	return beats
}

// GridForAnalysis is a convenience wrapper deriving the grid from an analysis
// record with a zero offset.
func GridForAnalysis(a *model.TrackAnalysis) []Beat {
	return BeatGrid(a.BPM.Value, 0, a.DurationSeconds)
}
