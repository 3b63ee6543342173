package timeline

import (
	"math"

	"github.com/google/uuid"

	"MashFM/model"
)

// Composition is the aggregate root of the non-destructive editor. All edits
// go through its methods; a rejected edit leaves the composition untouched.
//
// Clips on one track are allowed to overlap. The renderer sums overlapping
// clips, matching the looseness of the editing model rather than forbidding
// arrangements the UI can produce.
type Composition struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Tracks   []*Track `json:"tracks"`
	Playhead float64  `json:"playheadSeconds"`
	Zoom     float64  `json:"zoomFactor"`

	Selection string `json:"selection,omitempty"` // selected clip id
	clipboard *Clip  // snapshot, not serialized
}

// NewComposition creates an empty composition.
func NewComposition(title string) *Composition {
	return &Composition{
		ID:    uuid.NewString(),
		Title: title,
		Zoom:  1.0,
	}
}

// AddTrack appends a track and returns it.
func (c *Composition) AddTrack(name string, kind TrackKind, stem model.StemType) *Track {
	t := NewTrack(name, kind, stem)
	c.Tracks = append(c.Tracks, t)
	return t
}

// RemoveTrack deletes a track and all its clips. Selection and clipboard
// references into the track are cleared.
func (c *Composition) RemoveTrack(trackID string) bool {
	for i, t := range c.Tracks {
		if t.ID != trackID {
			continue
		}
		for _, clip := range t.Clips {
			c.forgetClip(clip.ID)
		}
		c.Tracks = append(c.Tracks[:i], c.Tracks[i+1:]...)
		return true
	}
	return false
}

// AddClip places a new clip for an asset on a track. The clip spans the
// requested source range, clamped to the asset.
func (c *Composition) AddClip(trackID string, asset *model.AudioAsset, name string, startTime, sourceOffset, duration float64) (*Clip, error) {
	track := c.track(trackID)
	if track == nil {
		return nil, &InvalidEditError{Op: "addClip", Reason: "track not found: " + trackID}
	}

	assetDur := asset.DurationSeconds()
	if sourceOffset < 0 {
		sourceOffset = 0
	}
	if duration <= 0 || sourceOffset+duration > assetDur {
		duration = assetDur - sourceOffset
	}
	if duration < MinClipDuration {
		return nil, &InvalidEditError{Op: "addClip", Reason: "clip would be shorter than the minimum"}
	}
	if startTime < 0 {
		startTime = 0
	}

	clip := &Clip{
		ID:            uuid.NewString(),
		TrackID:       trackID,
		AssetID:       asset.ID,
		Name:          name,
		StartTime:     startTime,
		Duration:      duration,
		SourceOffset:  sourceOffset,
		GainPercent:   100,
		AssetDuration: assetDur,
	}
	track.Clips = append(track.Clips, clip)
	return clip, nil
}

// MoveClip repositions a clip, clamping the new start to zero. Duration and
// source offset are untouched.
func (c *Composition) MoveClip(clipID string, newStartTime float64) error {
	clip := c.clip(clipID)
	if clip == nil {
		return notFound("moveClip", clipID)
	}
	clip.StartTime = math.Max(0, newStartTime)
	return nil
}

// TrimStart moves the clip's left edge, eating into (or restoring from) the
// source material. Rejected when the result would be too short or would read
// before the start of the source.
func (c *Composition) TrimStart(clipID string, newStartTime float64) error {
	clip := c.clip(clipID)
	if clip == nil {
		return notFound("trimStart", clipID)
	}

	delta := newStartTime - clip.StartTime
	newDuration := clip.Duration - delta
	newOffset := clip.SourceOffset + delta

	if newDuration < MinClipDuration {
		return &InvalidEditError{Op: "trimStart", ClipID: clipID, Reason: "clip would be shorter than the minimum"}
	}
	if newOffset < 0 {
		return &InvalidEditError{Op: "trimStart", ClipID: clipID, Reason: "would read before the start of the source"}
	}
	if newStartTime < 0 {
		return &InvalidEditError{Op: "trimStart", ClipID: clipID, Reason: "start time would be negative"}
	}

	clip.StartTime = newStartTime
	clip.SourceOffset = newOffset
	clip.Duration = newDuration
	return nil
}

// TrimEnd sets the clip duration, floored at the minimum. Rejected when it
// would read past the end of the source.
func (c *Composition) TrimEnd(clipID string, newDuration float64) error {
	clip := c.clip(clipID)
	if clip == nil {
		return notFound("trimEnd", clipID)
	}

	d := math.Max(MinClipDuration, newDuration)
	if clip.AssetDuration > 0 && clip.SourceOffset+d > clip.AssetDuration {
		return &InvalidEditError{Op: "trimEnd", ClipID: clipID, Reason: "would read past the end of the source"}
	}
	clip.Duration = d
	return nil
}

// SplitAt cuts a clip in two at the given timeline position. A no-op (with
// error) when the position is not strictly inside the clip. The new right
// half keeps playing the same source material it did before the split.
func (c *Composition) SplitAt(clipID string, atTime float64) (*Clip, error) {
	clip := c.clip(clipID)
	if clip == nil {
		return nil, notFound("splitAt", clipID)
	}
	if atTime <= clip.StartTime || atTime >= clip.EndTime() {
		return nil, &InvalidEditError{Op: "splitAt", ClipID: clipID, Reason: "split point is not inside the clip"}
	}

	track := c.track(clip.TrackID)
	if track == nil {
		return nil, &InvalidEditError{Op: "splitAt", ClipID: clipID, Reason: "owning track is gone"}
	}

	into := atTime - clip.StartTime
	right := clip.clone()
	right.ID = uuid.NewString()
	right.StartTime = atTime
	right.Duration = clip.Duration - into
	right.SourceOffset = clip.SourceOffset + into
	right.FadeInSeconds = 0

	clip.Duration = into
	clip.FadeOutSecs = 0

	track.Clips = append(track.Clips, right)
	return right, nil
}

// Copy snapshots a clip into the clipboard.
func (c *Composition) Copy(clipID string) error {
	clip := c.clip(clipID)
	if clip == nil {
		return notFound("copy", clipID)
	}
	c.clipboard = clip.clone()
	return nil
}

// Paste re-instantiates the clipboard clip at the given time on the target
// track, under a fresh id.
func (c *Composition) Paste(atTime float64, targetTrackID string) (*Clip, error) {
	if c.clipboard == nil {
		return nil, &InvalidEditError{Op: "paste", Reason: "clipboard is empty"}
	}
	track := c.track(targetTrackID)
	if track == nil {
		return nil, &InvalidEditError{Op: "paste", Reason: "track not found: " + targetTrackID}
	}

	pasted := c.clipboard.clone()
	pasted.ID = uuid.NewString()
	pasted.TrackID = targetTrackID
	pasted.StartTime = math.Max(0, atTime)
	track.Clips = append(track.Clips, pasted)
	return pasted, nil
}

// DeleteClip removes a clip from its track and clears any selection or
// clipboard reference to it.
func (c *Composition) DeleteClip(clipID string) error {
	for _, t := range c.Tracks {
		for i, clip := range t.Clips {
			if clip.ID == clipID {
				t.Clips = append(t.Clips[:i], t.Clips[i+1:]...)
				c.forgetClip(clipID)
				return nil
			}
		}
	}
	return notFound("deleteClip", clipID)
}

// Select marks a clip as selected; empty id clears the selection.
func (c *Composition) Select(clipID string) {
	c.Selection = clipID
}

// SetPlayhead moves the playhead, clamped to zero.
func (c *Composition) SetPlayhead(seconds float64) {
	c.Playhead = math.Max(0, seconds)
}

// TotalDuration is the derived arrangement length: the furthest clip end.
func (c *Composition) TotalDuration() float64 {
	max := 0.0
	for _, t := range c.Tracks {
		for _, clip := range t.Clips {
			if end := clip.EndTime(); end > max {
				max = end
			}
		}
	}
	return max
}

// Clip finds a clip by id across all tracks.
func (c *Composition) Clip(clipID string) *Clip {
	return c.clip(clipID)
}

// TrackByID finds a track by id.
func (c *Composition) TrackByID(trackID string) *Track {
	return c.track(trackID)
}

func (c *Composition) clip(clipID string) *Clip {
	for _, t := range c.Tracks {
		for _, clip := range t.Clips {
			if clip.ID == clipID {
				return clip
			}
		}
	}
	return nil
}

func (c *Composition) track(trackID string) *Track {
	for _, t := range c.Tracks {
		if t.ID == trackID {
			return t
		}
	}
	return nil
}

func (c *Composition) forgetClip(clipID string) {
	if c.Selection == clipID {
		c.Selection = ""
	}
	if c.clipboard != nil && c.clipboard.ID == clipID {
		c.clipboard = nil
	}
}
