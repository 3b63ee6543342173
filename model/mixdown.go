package model

// MixdownStatus is the terminal state of a render.
type MixdownStatus string

const (
	MixdownComplete MixdownStatus = "complete"
	MixdownError    MixdownStatus = "error"
)

// MixSegment describes the time range one source track occupies in the
// rendered output, for bookkeeping and UI display.
type MixSegment struct {
	StartTime     float64  `json:"startTime"`
	EndTime       float64  `json:"endTime"`
	SourceTrackID string   `json:"sourceTrackId"`
	StemType      StemType `json:"stemType"`
	Effect        string   `json:"effect"`
}

// AnalysisSummary holds presentation heuristics for a rendered mix. These are
// derived from the recipe and intensity, not measured from audio; each value
// is bounded to [0, 100].
type AnalysisSummary struct {
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Valence      float64 `json:"valence"`
	Acousticness float64 `json:"acousticness"`
}

// MixdownResult is the outcome of an offline render. Either Status is
// complete and OutputAsset is a valid new asset, or Status is error and no
// asset is attached.
type MixdownResult struct {
	ID              string          `json:"id"`
	OutputAsset     *AudioAsset     `json:"-"`
	OutputWAV       []byte          `json:"-"` // encoded container, ready to store
	DurationSeconds float64         `json:"durationSeconds"`
	BPM             int             `json:"bpm"`
	Key             string          `json:"key"`
	AnalysisSummary AnalysisSummary `json:"analysisSummary"`
	Segments        []MixSegment    `json:"segments"`
	Status          MixdownStatus   `json:"status"`
	ErrorMessage    string          `json:"errorMessage,omitempty"`
}
