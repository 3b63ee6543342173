package timeline

import (
	"github.com/google/uuid"

	"MashFM/model"
)

// MinClipDuration is the shortest a clip may become through any edit.
const MinClipDuration = 0.1

// Clip is a placed, trimmed reference to a time range of an AudioAsset.
// All mutation goes through Composition operations so invariants hold:
//
//	SourceOffset + Duration <= asset duration
//	Duration >= MinClipDuration
//	StartTime >= 0, SourceOffset >= 0
type Clip struct {
	ID            string  `json:"id"`
	TrackID       string  `json:"trackId"`
	AssetID       string  `json:"assetId"`
	Name          string  `json:"name"`
	StartTime     float64 `json:"startTime"`
	Duration      float64 `json:"durationSeconds"`
	SourceOffset  float64 `json:"sourceOffsetSeconds"`
	GainPercent   float64 `json:"gainPercent"` // 0-100
	Muted         bool    `json:"muted"`
	FadeInSeconds float64 `json:"fadeInSeconds"`
	FadeOutSecs   float64 `json:"fadeOutSeconds"`
	ColorTag      string  `json:"colorTag"`

	// AssetDuration is carried on the clip so edits can validate the source
	// range without reaching back to the decoded buffer.
	AssetDuration float64 `json:"assetDurationSeconds"`
}

// EndTime is the clip's end position on the timeline.
func (c *Clip) EndTime() float64 {
	return c.StartTime + c.Duration
}

// clone returns a deep copy with the same id.
func (c *Clip) clone() *Clip {
	cp := *c
	return &cp
}

// TrackKind distinguishes full mixes from separated stems.
type TrackKind string

const (
	TrackFullMix TrackKind = "fullMix"
	TrackStem    TrackKind = "stem"
)

// Track is an ordered-by-insertion set of clips sharing a lane identity.
type Track struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Kind     TrackKind      `json:"kind"`
	StemType model.StemType `json:"stemType,omitempty"` // set when Kind == TrackStem
	Clips    []*Clip        `json:"clips"`
	ColorTag string         `json:"colorTag"`
}

// NewTrack creates an empty track.
func NewTrack(name string, kind TrackKind, stem model.StemType) *Track {
	return &Track{
		ID:       uuid.NewString(),
		Name:     name,
		Kind:     kind,
		StemType: stem,
	}
}
