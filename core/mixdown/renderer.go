package mixdown

import (
	"context"
	"math"
	"sync"

	"MashFM/core/analysis"
	"MashFM/core/audio"
	"MashFM/logger"
	"MashFM/model"

	"github.com/google/uuid"
)

// RenderTrack is one input to an ad-hoc render: a decoded asset with a
// per-track gain.
type RenderTrack struct {
	Asset       *model.AudioAsset
	GainPercent float64
}

// Renderer flattens arrangements into a single output asset. One render per
// composition id runs at a time; concurrent callers on the same id serialize
// on a per-composition lock.
type Renderer struct {
	outputSampleRate int
	keyAnalyzer      analysis.KeyLoudnessAnalyzer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRenderer creates a renderer emitting at the given sample rate
// (44100 for production; tests use lower rates to keep buffers small).
func NewRenderer(outputSampleRate int, keyAnalyzer analysis.KeyLoudnessAnalyzer) *Renderer {
	if outputSampleRate <= 0 {
		outputSampleRate = 44100
	}
	if keyAnalyzer == nil {
		keyAnalyzer = analysis.NeutralKeyAnalyzer{}
	}
	return &Renderer{
		outputSampleRate: outputSampleRate,
		keyAnalyzer:      keyAnalyzer,
		locks:            make(map[string]*sync.Mutex),
	}
}

func (r *Renderer) lockFor(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	return l
}

// Render mixes a set of assets offline under a recipe.
//
// Graph per track: playback at TempoMultiplier rate (linear interpolation —
// pitch shifts along with tempo; accepted artifact of rate playback) →
// per-track gain of (gainPercent/100)/trackCount → optional biquad filter →
// summed into a master gain of intensityPercent/100.
//
// KeyShiftSemitones is carried in the recipe but is not applied anywhere in
// the graph; it only informs result metadata. Known gap, kept inert on
// purpose.
func (r *Renderer) Render(ctx context.Context, compositionID string, tracks []RenderTrack, recipe model.MixRecipe, intensityPercent float64) (*model.MixdownResult, error) {
	lock := r.lockFor(compositionID)
	lock.Lock()
	defer lock.Unlock()

	valid := tracks[:0:0]
	for _, t := range tracks {
		if t.Asset != nil && t.Asset.DurationSeconds() > 0 {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		return errorResult("no valid input assets"), &RenderError{Reason: "no valid input assets"}
	}

	tempo := clampTempo(recipe.TempoMultiplier)
	intensity := clampPercent(intensityPercent)

	outDuration := 0.0
	for _, t := range valid {
		if d := t.Asset.DurationSeconds() / tempo; d > outDuration {
			outDuration = d
		}
	}

	frames := int(outDuration * float64(r.outputSampleRate))
	left := make([]float64, frames)
	right := make([]float64, frames)

	trackGainBase := 1.0 / float64(len(valid))
	segments := make([]model.MixSegment, 0, len(valid))
	stemCycle := model.AllStemTypes()

	for i, t := range valid {
		if err := ctx.Err(); err != nil {
			// Caller went away; discard everything rendered so far.
			return errorResult("render cancelled"), &RenderError{Reason: "render cancelled", Err: err}
		}

		gain := clampPercent(t.GainPercent) / 100.0 * trackGainBase
		fl := audio.NewFilterFor(recipe.FilterType, r.outputSampleRate)
		fr := audio.NewFilterFor(recipe.FilterType, r.outputSampleRate)

		r.mixAsset(left, right, t.Asset, tempo, gain, fl, fr)

		segments = append(segments, model.MixSegment{
			StartTime:     0,
			EndTime:       t.Asset.DurationSeconds() / tempo,
			SourceTrackID: t.Asset.ID,
			StemType:      stemCycle[i%len(stemCycle)],
			Effect:        effectName(recipe),
		})
	}

	master := intensity / 100.0
	for i := range left {
		left[i] *= master
		right[i] *= master
	}

	out := &model.AudioAsset{
		ID:          uuid.NewString(),
		SampleRate:  r.outputSampleRate,
		NumChannels: 2,
		Samples:     [][]float64{left, right},
	}

	wav, err := audio.EncodeWAV(out)
	if err != nil {
		return errorResult(err.Error()), &RenderError{Reason: "wav encode failed", Err: err}
	}

	bpm := analysis.EstimateTempo(out)
	key, _ := r.keyAnalyzer.KeyAndLoudness(valid[0].Asset)

	result := &model.MixdownResult{
		ID:              uuid.NewString(),
		OutputAsset:     out,
		OutputWAV:       wav,
		DurationSeconds: out.DurationSeconds(),
		BPM:             bpm.Value,
		Key:             key.Name(),
		AnalysisSummary: Summarize(recipe, intensity),
		Segments:        segments,
		Status:          model.MixdownComplete,
	}

	logger.Info("mixdown rendered",
		logger.String("compositionId", compositionID),
		logger.Int("tracks", len(valid)),
		logger.Float64("durationSeconds", result.DurationSeconds),
		logger.String("recipe", recipe.ID))
	return result, nil
}

// mixAsset sums one asset into the output at the given playback rate, gain
// and optional per-channel filters.
func (r *Renderer) mixAsset(left, right []float64, asset *model.AudioAsset, tempo, gain float64, fl, fr *audio.Biquad) {
	srcL := asset.Channel(0)
	srcR := asset.Channel(1)
	// Source position advances tempo-scaled relative to output time.
	rate := tempo * float64(asset.SampleRate) / float64(r.outputSampleRate)
	pos := 0.0
	for i := range left {
		idx := int(pos)
		if idx >= len(srcL)-1 {
			break
		}
		frac := pos - float64(idx)

		l := (srcL[idx] + (srcL[idx+1]-srcL[idx])*frac) * gain
		rv := (srcR[idx] + (srcR[idx+1]-srcR[idx])*frac) * gain
		if fl != nil {
			l = fl.Process(l)
		}
		if fr != nil {
			rv = fr.Process(rv)
		}
		left[i] += l
		right[i] += rv
		pos += rate
	}
}

func effectName(recipe model.MixRecipe) string {
	switch recipe.FilterType {
	case model.FilterLowpass:
		return "lowpass"
	case model.FilterHighpass:
		return "highpass"
	default:
		return "none"
	}
}

func errorResult(msg string) *model.MixdownResult {
	return &model.MixdownResult{
		ID:           uuid.NewString(),
		Status:       model.MixdownError,
		ErrorMessage: msg,
	}
}

func clampTempo(m float64) float64 {
	if m < 0.5 {
		if m <= 0 {
			return 1.0
		}
		return 0.5
	}
	if m > 2.0 {
		return 2.0
	}
	return m
}

func clampPercent(p float64) float64 {
	return math.Max(0, math.Min(100, p))
}
