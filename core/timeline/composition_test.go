package timeline

import (
	"math"
	"testing"

	"MashFM/model"
)

func monoAsset(id string, seconds float64) *model.AudioAsset {
	sr := 1000
	return &model.AudioAsset{
		ID:          id,
		SampleRate:  sr,
		NumChannels: 1,
		Samples:     [][]float64{make([]float64, int(seconds*float64(sr)))},
	}
}

func buildComposition(t *testing.T, assetSeconds float64) (*Composition, *Track, *Clip) {
	t.Helper()
	comp := NewComposition("test")
	track := comp.AddTrack("lane", TrackFullMix, "")
	clip, err := comp.AddClip(track.ID, monoAsset("a1", assetSeconds), "clip", 10, 0, assetSeconds)
	if err != nil {
		t.Fatalf("AddClip: %v", err)
	}
	return comp, track, clip
}

func TestTrimStartPreservesSourceMapping(t *testing.T) {
	comp, _, clip := buildComposition(t, 8)

	if err := comp.TrimStart(clip.ID, 12); err != nil {
		t.Fatalf("TrimStart: %v", err)
	}
	if clip.StartTime != 12 {
		t.Errorf("StartTime %v, want 12", clip.StartTime)
	}
	if clip.SourceOffset != 2 {
		t.Errorf("SourceOffset %v, want 2", clip.SourceOffset)
	}
	if clip.Duration != 6 {
		t.Errorf("Duration %v, want 6", clip.Duration)
	}
	// Trimming back out restores the original mapping.
	if err := comp.TrimStart(clip.ID, 10); err != nil {
		t.Fatalf("TrimStart back: %v", err)
	}
	if clip.SourceOffset != 0 || clip.Duration != 8 {
		t.Errorf("restore failed: offset %v dur %v", clip.SourceOffset, clip.Duration)
	}
}

func TestTrimStartRejectionsLeaveClipUnchanged(t *testing.T) {
	comp, _, clip := buildComposition(t, 8)
	before := *clip

	tests := []struct {
		name string
		to   float64
	}{
		{"too short", 17.95},
		{"before source start", 9.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := comp.TrimStart(clip.ID, tt.to)
			if err == nil {
				t.Fatal("expected rejection")
			}
			if _, ok := err.(*InvalidEditError); !ok {
				t.Fatalf("got %T, want *InvalidEditError", err)
			}
			if *clip != before {
				t.Error("rejected edit mutated the clip")
			}
		})
	}
}

func TestTrimEndClampsAndRejects(t *testing.T) {
	comp, _, clip := buildComposition(t, 8)

	// Below the minimum clamps up rather than rejecting.
	if err := comp.TrimEnd(clip.ID, 0.01); err != nil {
		t.Fatalf("TrimEnd clamp: %v", err)
	}
	if clip.Duration != MinClipDuration {
		t.Errorf("Duration %v, want %v", clip.Duration, MinClipDuration)
	}

	// Past the end of the source rejects.
	if err := comp.TrimEnd(clip.ID, 9); err == nil {
		t.Error("expected rejection past source end")
	}
	if clip.Duration != MinClipDuration {
		t.Error("rejected TrimEnd mutated the clip")
	}
}

func TestSplitCoversOriginalRange(t *testing.T) {
	comp, track, clip := buildComposition(t, 8)
	clip.FadeInSeconds = 0.5
	clip.FadeOutSecs = 0.5

	right, err := comp.SplitAt(clip.ID, 13)
	if err != nil {
		t.Fatalf("SplitAt: %v", err)
	}

	if len(track.Clips) != 2 {
		t.Fatalf("got %d clips, want 2", len(track.Clips))
	}
	if clip.EndTime() != right.StartTime {
		t.Errorf("halves not adjacent: %v vs %v", clip.EndTime(), right.StartTime)
	}
	if got := clip.Duration + right.Duration; got != 8 {
		t.Errorf("combined duration %v, want 8", got)
	}
	// Right half keeps playing the same source material.
	if right.SourceOffset != clip.SourceOffset+clip.Duration {
		t.Errorf("right SourceOffset %v, want %v", right.SourceOffset, clip.SourceOffset+clip.Duration)
	}
	if right.ID == clip.ID {
		t.Error("split halves share an id")
	}
	// Fades at the cut are cleared, outer fades kept.
	if clip.FadeOutSecs != 0 || right.FadeInSeconds != 0 {
		t.Error("fades at the cut were not cleared")
	}
	if clip.FadeInSeconds != 0.5 || right.FadeOutSecs != 0.5 {
		t.Error("outer fades were not preserved")
	}
}

func TestSplitOutsideClipRejected(t *testing.T) {
	comp, track, clip := buildComposition(t, 8)
	for _, at := range []float64{10, 18, 5, 25} {
		if _, err := comp.SplitAt(clip.ID, at); err == nil {
			t.Errorf("split at %v accepted, want rejection", at)
		}
	}
	if len(track.Clips) != 1 {
		t.Error("rejected split changed the track")
	}
}

func TestMoveClipClampsToZero(t *testing.T) {
	comp, _, clip := buildComposition(t, 8)
	if err := comp.MoveClip(clip.ID, -3); err != nil {
		t.Fatalf("MoveClip: %v", err)
	}
	if clip.StartTime != 0 {
		t.Errorf("StartTime %v, want 0", clip.StartTime)
	}
	if clip.Duration != 8 || clip.SourceOffset != 0 {
		t.Error("move touched duration or source offset")
	}
}

func TestCopyPasteDelete(t *testing.T) {
	comp, track, clip := buildComposition(t, 8)

	if err := comp.Copy(clip.ID); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	pasted, err := comp.Paste(30, track.ID)
	if err != nil {
		t.Fatalf("Paste: %v", err)
	}
	if pasted.ID == clip.ID {
		t.Error("pasted clip shares the original id")
	}
	if pasted.StartTime != 30 || pasted.Duration != clip.Duration {
		t.Errorf("pasted at %v dur %v", pasted.StartTime, pasted.Duration)
	}

	// Deleting the source clip doesn't invalidate the pasted one.
	comp.Select(clip.ID)
	if err := comp.DeleteClip(clip.ID); err != nil {
		t.Fatalf("DeleteClip: %v", err)
	}
	if comp.Selection != "" {
		t.Error("selection survived clip deletion")
	}
	if comp.Clip(pasted.ID) == nil {
		t.Error("pasted clip disappeared")
	}

	// Clipboard held a snapshot of the deleted clip, so paste still works
	// only if the clipboard itself wasn't the deleted clip's snapshot id.
	if _, err := comp.Paste(40, track.ID); err == nil {
		t.Error("paste after deleting the copied clip should fail: clipboard cleared")
	}
}

func TestPasteEmptyClipboard(t *testing.T) {
	comp, track, _ := buildComposition(t, 8)
	comp2 := NewComposition("empty")
	_ = comp
	if _, err := comp2.Paste(0, track.ID); err == nil {
		t.Error("paste with empty clipboard accepted")
	}
}

func TestTotalDurationAndOverlap(t *testing.T) {
	comp := NewComposition("overlap")
	track := comp.AddTrack("lane", TrackFullMix, "")
	asset := monoAsset("a1", 10)

	if _, err := comp.AddClip(track.ID, asset, "one", 0, 0, 10); err != nil {
		t.Fatal(err)
	}
	// Overlapping placement on the same track is allowed.
	if _, err := comp.AddClip(track.ID, asset, "two", 5, 0, 10); err != nil {
		t.Fatalf("overlapping AddClip rejected: %v", err)
	}
	if got := comp.TotalDuration(); got != 15 {
		t.Errorf("TotalDuration %v, want 15", got)
	}
}

func TestAddClipClampsToAsset(t *testing.T) {
	comp := NewComposition("clamp")
	track := comp.AddTrack("lane", TrackFullMix, "")
	asset := monoAsset("a1", 10)

	clip, err := comp.AddClip(track.ID, asset, "long", 0, 2, 100)
	if err != nil {
		t.Fatalf("AddClip: %v", err)
	}
	if clip.Duration != 8 {
		t.Errorf("Duration %v, want clamped 8", clip.Duration)
	}
	if clip.GainPercent != 100 {
		t.Errorf("GainPercent %v, want 100", clip.GainPercent)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	comp, track, clip := buildComposition(t, 8)
	comp.SetPlayhead(42)
	comp.Select(clip.ID)

	data, err := comp.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	restored, err := FromSnapshot(data)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}

	if restored.ID != comp.ID || restored.Title != comp.Title {
		t.Error("identity fields lost")
	}
	if len(restored.Tracks) != 1 || restored.Tracks[0].ID != track.ID {
		t.Fatal("tracks lost")
	}
	got := restored.Clip(clip.ID)
	if got == nil {
		t.Fatal("clip lost")
	}
	if got.StartTime != clip.StartTime || got.Duration != clip.Duration || got.SourceOffset != clip.SourceOffset {
		t.Error("clip timing fields lost")
	}
	if restored.Playhead != 42 {
		t.Errorf("playhead %v, want 42", restored.Playhead)
	}
	if restored.Zoom != 1.0 {
		t.Errorf("zoom %v, want 1.0 default", restored.Zoom)
	}
}

func TestPlayheadClampsNegative(t *testing.T) {
	comp := NewComposition("p")
	comp.SetPlayhead(-5)
	if comp.Playhead != 0 {
		t.Errorf("playhead %v, want 0", comp.Playhead)
	}
	comp.SetPlayhead(math.Pi)
	if comp.Playhead != math.Pi {
		t.Errorf("playhead %v, want pi", comp.Playhead)
	}
}
