package mixdown

import (
	"testing"

	"MashFM/model"
)

func TestSummarizeBounded(t *testing.T) {
	recipes := append([]model.MixRecipe{}, Presets...)
	recipes = append(recipes, model.MixRecipe{TempoMultiplier: 2.0, ReverbAmountPct: 100, BeatComplexity: 1})
	recipes = append(recipes, model.MixRecipe{TempoMultiplier: 0.5})

	for _, recipe := range recipes {
		for _, intensity := range []float64{0, 25, 50, 75, 100, 150, -10} {
			s := Summarize(recipe, intensity)
			for name, v := range map[string]float64{
				"energy":       s.Energy,
				"danceability": s.Danceability,
				"valence":      s.Valence,
				"acousticness": s.Acousticness,
			} {
				if v < 0 || v > 100 {
					t.Errorf("recipe %s intensity %v: %s=%v outside [0, 100]", recipe.ID, intensity, name, v)
				}
			}
		}
	}
}

func TestSummarizeMonotonic(t *testing.T) {
	recipe := model.MixRecipe{TempoMultiplier: 1.0}

	prevEnergy := -1.0
	for _, intensity := range []float64{0, 20, 40, 60, 80, 100} {
		s := Summarize(recipe, intensity)
		if s.Energy < prevEnergy {
			t.Errorf("energy fell as intensity rose: %v", s.Energy)
		}
		prevEnergy = s.Energy
	}

	slow := Summarize(model.MixRecipe{TempoMultiplier: 0.8}, 50)
	fast := Summarize(model.MixRecipe{TempoMultiplier: 1.4}, 50)
	if fast.Energy <= slow.Energy || fast.Danceability <= slow.Danceability {
		t.Error("faster tempo did not read as more energetic")
	}
}

func TestSummarizeFilterValence(t *testing.T) {
	none := Summarize(model.MixRecipe{TempoMultiplier: 1, FilterType: model.FilterNone}, 50)
	low := Summarize(model.MixRecipe{TempoMultiplier: 1, FilterType: model.FilterLowpass}, 50)
	high := Summarize(model.MixRecipe{TempoMultiplier: 1, FilterType: model.FilterHighpass}, 50)

	if !(low.Valence < high.Valence && high.Valence < none.Valence) {
		t.Errorf("valence ordering broken: none=%v high=%v low=%v", none.Valence, high.Valence, low.Valence)
	}
}

func TestPresetByID(t *testing.T) {
	if got := PresetByID("slowed-reverb"); got.TempoMultiplier != 0.8 {
		t.Errorf("preset lookup failed: %+v", got)
	}
	fallback := PresetByID("no-such-preset")
	if fallback.TempoMultiplier != 1.0 || fallback.FilterType != model.FilterNone {
		t.Errorf("fallback recipe not neutral: %+v", fallback)
	}
}
