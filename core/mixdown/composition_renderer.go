package mixdown

import (
	"context"
	"math"

	"MashFM/core/analysis"
	"MashFM/core/audio"
	"MashFM/core/timeline"
	"MashFM/logger"
	"MashFM/model"

	"github.com/google/uuid"
)

// RenderComposition flattens a full arrangement clip-accurately: every
// unmuted clip plays its trimmed source range at its timeline position with
// clip gain and fades applied, overlapping clips on a track summing
// naturally. The recipe's tempo multiplier and filter apply globally, the
// same way they do in the ad-hoc Render path.
func (r *Renderer) RenderComposition(ctx context.Context, comp *timeline.Composition, assets map[string]*model.AudioAsset, recipe model.MixRecipe, intensityPercent float64) (*model.MixdownResult, error) {
	lock := r.lockFor(comp.ID)
	lock.Lock()
	defer lock.Unlock()

	tempo := clampTempo(recipe.TempoMultiplier)
	intensity := clampPercent(intensityPercent)

	type placed struct {
		clip  *timeline.Clip
		asset *model.AudioAsset
		track *timeline.Track
	}
	var clips []placed
	for _, t := range comp.Tracks {
		for _, c := range t.Clips {
			if c.Muted {
				continue
			}
			asset, ok := assets[c.AssetID]
			if !ok || asset == nil || asset.DurationSeconds() == 0 {
				// Missing asset only silences this clip; siblings still render.
				logger.Warn("clip references missing asset, skipping",
					logger.String("clipId", c.ID),
					logger.String("assetId", c.AssetID))
				continue
			}
			clips = append(clips, placed{clip: c, asset: asset, track: t})
		}
	}
	if len(clips) == 0 {
		return errorResult("no renderable clips"), &RenderError{Reason: "no renderable clips"}
	}

	outDuration := comp.TotalDuration() / tempo
	frames := int(outDuration * float64(r.outputSampleRate))
	left := make([]float64, frames)
	right := make([]float64, frames)

	trackGainBase := 1.0 / float64(len(comp.Tracks))
	segments := make([]model.MixSegment, 0, len(clips))
	stemCycle := model.AllStemTypes()

	for i, p := range clips {
		if err := ctx.Err(); err != nil {
			return errorResult("render cancelled"), &RenderError{Reason: "render cancelled", Err: err}
		}

		gain := clampPercent(p.clip.GainPercent) / 100.0 * trackGainBase
		fl := audio.NewFilterFor(recipe.FilterType, r.outputSampleRate)
		fr := audio.NewFilterFor(recipe.FilterType, r.outputSampleRate)

		r.mixClip(left, right, p.clip, p.asset, tempo, gain, fl, fr)

		stem := p.track.StemType
		if !stem.Valid() {
			stem = stemCycle[i%len(stemCycle)]
		}
		segments = append(segments, model.MixSegment{
			StartTime:     p.clip.StartTime / tempo,
			EndTime:       p.clip.EndTime() / tempo,
			SourceTrackID: p.track.ID,
			StemType:      stem,
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
	key, _ := r.keyAnalyzer.KeyAndLoudness(clips[0].asset)

	return &model.MixdownResult{
		ID:              uuid.NewString(),
		OutputAsset:     out,
		OutputWAV:       wav,
		DurationSeconds: out.DurationSeconds(),
		BPM:             bpm.Value,
		Key:             key.Name(),
		AnalysisSummary: Summarize(recipe, intensity),
		Segments:        segments,
		Status:          model.MixdownComplete,
	}, nil
}

// mixClip sums one clip into the output. Fades clamp to the clip length when
// fadeIn+fadeOut exceed it: the crossover point splits the overlap evenly.
func (r *Renderer) mixClip(left, right []float64, clip *timeline.Clip, asset *model.AudioAsset, tempo, gain float64, fl, fr *audio.Biquad) {
	srcL := asset.Channel(0)
	srcR := asset.Channel(1)
	sr := float64(r.outputSampleRate)
	rate := tempo * float64(asset.SampleRate) / sr

	outStart := int(clip.StartTime / tempo * sr)
	outFrames := int(clip.Duration / tempo * sr)

	fadeIn, fadeOut := clampFades(clip.FadeInSeconds, clip.FadeOutSecs, clip.Duration)

	srcBase := clip.SourceOffset * float64(asset.SampleRate)
	for i := 0; i < outFrames; i++ {
		oi := outStart + i
		if oi < 0 || oi >= len(left) {
			continue
		}
		pos := srcBase + float64(i)*rate
		idx := int(pos)
		if idx >= len(srcL)-1 {
			break
		}
		frac := pos - float64(idx)

		// Clip-local time in source seconds drives the fade envelopes.
		tClip := float64(i) * tempo / sr
		env := fadeEnvelope(tClip, clip.Duration, fadeIn, fadeOut)

		g := gain * env
		l := (srcL[idx] + (srcL[idx+1]-srcL[idx])*frac) * g
		rv := (srcR[idx] + (srcR[idx+1]-srcR[idx])*frac) * g
		if fl != nil {
			l = fl.Process(l)
		}
		if fr != nil {
			rv = fr.Process(rv)
		}
		left[oi] += l
		right[oi] += rv
	}
}

// clampFades shrinks overlapping fades proportionally so they never cross.
func clampFades(fadeIn, fadeOut, duration float64) (float64, float64) {
	fadeIn = math.Max(0, fadeIn)
	fadeOut = math.Max(0, fadeOut)
	total := fadeIn + fadeOut
	if total > duration && total > 0 {
		scale := duration / total
		fadeIn *= scale
		fadeOut *= scale
	}
	return fadeIn, fadeOut
}

// fadeEnvelope is a linear in/out envelope over clip-local time.
func fadeEnvelope(t, duration, fadeIn, fadeOut float64) float64 {
	env := 1.0
	if fadeIn > 0 && t < fadeIn {
		env = t / fadeIn
	}
	if fadeOut > 0 && t > duration-fadeOut {
		out := (duration - t) / fadeOut
		if out < env {
			env = out
		}
	}
	if env < 0 {
		return 0
	}
	return env
}
