package mixdown

import (
	"bytes"
	"context"
	"math"
	"testing"

	"MashFM/core/timeline"
	"MashFM/model"

	"github.com/google/uuid"
)

// testRate keeps buffers small; render math is sample-rate independent.
const testRate = 500

func toneAsset(seconds float64, freq float64) *model.AudioAsset {
	frames := int(seconds * testRate)
	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := range left {
		v := 0.5 * math.Sin(2*math.Pi*freq*float64(i)/testRate)
		left[i] = v
		right[i] = v
	}
	return &model.AudioAsset{
		ID:          uuid.NewString(),
		SampleRate:  testRate,
		NumChannels: 2,
		Samples:     [][]float64{left, right},
	}
}

func TestRenderTwoTracks(t *testing.T) {
	r := NewRenderer(testRate, nil)
	tracks := []RenderTrack{
		{Asset: toneAsset(180, 3), GainPercent: 100},
		{Asset: toneAsset(200, 5), GainPercent: 100},
	}
	recipe := model.MixRecipe{
		ID:              "test",
		TempoMultiplier: 1.1,
		FilterType:      model.FilterLowpass,
	}

	result, err := r.Render(context.Background(), "comp-1", tracks, recipe, 75)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if result.Status != model.MixdownComplete {
		t.Fatalf("status %s, want complete", result.Status)
	}
	wantDur := 200.0 / 1.1
	if math.Abs(result.DurationSeconds-wantDur) > 0.1 {
		t.Errorf("duration %v, want ~%v", result.DurationSeconds, wantDur)
	}
	if result.OutputAsset == nil || len(result.OutputWAV) == 0 {
		t.Fatal("missing output")
	}
	if result.OutputAsset.SampleRate != testRate {
		t.Errorf("output sample rate %d", result.OutputAsset.SampleRate)
	}

	if len(result.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(result.Segments))
	}
	if result.Segments[0].StemType != model.StemVocals || result.Segments[1].StemType != model.StemDrums {
		t.Errorf("stem cycle broken: %s, %s", result.Segments[0].StemType, result.Segments[1].StemType)
	}
	for i, seg := range result.Segments {
		if seg.Effect != "lowpass" {
			t.Errorf("segment %d effect %q", i, seg.Effect)
		}
	}
	if math.Abs(result.Segments[0].EndTime-180.0/1.1) > 0.01 {
		t.Errorf("segment 0 end %v", result.Segments[0].EndTime)
	}
}

func TestRenderNoValidAssets(t *testing.T) {
	r := NewRenderer(testRate, nil)
	empty := &model.AudioAsset{ID: "empty", SampleRate: testRate, NumChannels: 2, Samples: [][]float64{{}, {}}}

	result, err := r.Render(context.Background(), "comp-2", []RenderTrack{{Asset: empty}, {Asset: nil}}, model.MixRecipe{TempoMultiplier: 1}, 100)
	if err == nil {
		t.Fatal("expected error for zero valid assets")
	}
	if _, ok := err.(*RenderError); !ok {
		t.Fatalf("got %T, want *RenderError", err)
	}
	if result.Status != model.MixdownError {
		t.Errorf("status %s, want error", result.Status)
	}
	if result.OutputAsset != nil {
		t.Error("error result carries an asset")
	}
}

func TestRenderCancelled(t *testing.T) {
	r := NewRenderer(testRate, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := r.Render(ctx, "comp-3", []RenderTrack{{Asset: toneAsset(10, 3), GainPercent: 100}}, model.MixRecipe{TempoMultiplier: 1}, 100)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if result.Status != model.MixdownError {
		t.Errorf("status %s, want error", result.Status)
	}
	if result.OutputAsset != nil {
		t.Error("cancelled render kept its output")
	}
}

func TestKeyShiftDoesNotChangeAudio(t *testing.T) {
	r := NewRenderer(testRate, nil)
	asset := toneAsset(20, 4)
	base := model.MixRecipe{ID: "a", TempoMultiplier: 1.2, FilterType: model.FilterLowpass}
	shifted := base
	shifted.KeyShiftSemitones = 2

	plain, err := r.Render(context.Background(), "comp-4", []RenderTrack{{Asset: asset, GainPercent: 100}}, base, 80)
	if err != nil {
		t.Fatal(err)
	}
	moved, err := r.Render(context.Background(), "comp-4", []RenderTrack{{Asset: asset, GainPercent: 100}}, shifted, 80)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(plain.OutputWAV, moved.OutputWAV) {
		t.Error("key shift changed the rendered audio; it is metadata only")
	}
}

func TestRenderIntensityScalesOutput(t *testing.T) {
	r := NewRenderer(testRate, nil)
	asset := toneAsset(10, 4)

	loud, err := r.Render(context.Background(), "c", []RenderTrack{{Asset: asset, GainPercent: 100}}, model.MixRecipe{TempoMultiplier: 1}, 100)
	if err != nil {
		t.Fatal(err)
	}
	quiet, err := r.Render(context.Background(), "c", []RenderTrack{{Asset: asset, GainPercent: 100}}, model.MixRecipe{TempoMultiplier: 1}, 50)
	if err != nil {
		t.Fatal(err)
	}

	if rms(quiet.OutputAsset.Samples[0]) >= rms(loud.OutputAsset.Samples[0]) {
		t.Error("lower intensity did not reduce output level")
	}
}

func rms(samples []float64) float64 {
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func TestRenderComposition(t *testing.T) {
	r := NewRenderer(testRate, nil)
	comp := timeline.NewComposition("mix")
	track := comp.AddTrack("lane", timeline.TrackFullMix, "")

	asset := toneAsset(10, 4)
	clip, err := comp.AddClip(track.ID, asset, "one", 0, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	mutedClip, err := comp.AddClip(track.ID, asset, "muted", 20, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	mutedClip.Muted = true

	// A clip whose asset is missing renders as silence without failing the
	// siblings.
	ghost := &model.AudioAsset{ID: "ghost", SampleRate: testRate, NumChannels: 2,
		Samples: [][]float64{make([]float64, 10*testRate), make([]float64, 10*testRate)}}
	if _, err := comp.AddClip(track.ID, ghost, "ghost", 5, 0, 10); err != nil {
		t.Fatal(err)
	}

	assets := map[string]*model.AudioAsset{asset.ID: asset}
	result, err := r.RenderComposition(context.Background(), comp, assets, model.MixRecipe{TempoMultiplier: 1}, 100)
	if err != nil {
		t.Fatalf("RenderComposition: %v", err)
	}
	if result.Status != model.MixdownComplete {
		t.Fatalf("status %s", result.Status)
	}
	// Total duration spans the furthest clip (muted one at 20..30).
	if math.Abs(result.DurationSeconds-30) > 0.1 {
		t.Errorf("duration %v, want ~30", result.DurationSeconds)
	}
	// Only the one playable clip produced a segment.
	if len(result.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(result.Segments))
	}
	if result.Segments[0].StartTime != clip.StartTime {
		t.Errorf("segment start %v", result.Segments[0].StartTime)
	}
}

func TestRenderCompositionNoPlayableClips(t *testing.T) {
	r := NewRenderer(testRate, nil)
	comp := timeline.NewComposition("empty")
	comp.AddTrack("lane", timeline.TrackFullMix, "")

	result, err := r.RenderComposition(context.Background(), comp, nil, model.MixRecipe{TempoMultiplier: 1}, 100)
	if err == nil {
		t.Fatal("expected error")
	}
	if result.Status != model.MixdownError {
		t.Errorf("status %s", result.Status)
	}
}

func TestClampFades(t *testing.T) {
	in, out := clampFades(3, 3, 4)
	if in != 2 || out != 2 {
		t.Errorf("got (%v, %v), want proportional (2, 2)", in, out)
	}
	in, out = clampFades(1, 1, 10)
	if in != 1 || out != 1 {
		t.Errorf("non-overlapping fades changed: (%v, %v)", in, out)
	}
	in, out = clampFades(-1, 0.5, 10)
	if in != 0 || out != 0.5 {
		t.Errorf("negative fade not floored: (%v, %v)", in, out)
	}
}

func TestFadeEnvelope(t *testing.T) {
	if got := fadeEnvelope(0, 10, 2, 2); got != 0 {
		t.Errorf("t=0 env %v, want 0", got)
	}
	if got := fadeEnvelope(1, 10, 2, 2); got != 0.5 {
		t.Errorf("mid fade-in env %v, want 0.5", got)
	}
	if got := fadeEnvelope(5, 10, 2, 2); got != 1 {
		t.Errorf("body env %v, want 1", got)
	}
	if got := fadeEnvelope(9, 10, 2, 2); got != 0.5 {
		t.Errorf("mid fade-out env %v, want 0.5", got)
	}
}
