package mixdown

import "MashFM/model"

// Summarize derives the presentation-only analysis summary for a render.
// These are heuristics over the recipe and intensity, not measurements:
// each value is monotonic in its inputs and bounded to [0, 100].
func Summarize(recipe model.MixRecipe, intensityPercent float64) model.AnalysisSummary {
	intensity := clampPercent(intensityPercent)
	tempo := clampTempo(recipe.TempoMultiplier)

	// Faster and louder reads as more energetic and more danceable.
	energy := clamp100(intensity*0.6 + (tempo-0.5)/1.5*40.0)
	danceability := clamp100(35.0 + tempo*30.0 + recipe.BeatComplexity*10.0)

	// Filtering darkens the mood slightly; highpass feels thinner but brighter.
	valence := 65.0
	switch recipe.FilterType {
	case model.FilterLowpass:
		valence = 45.0
	case model.FilterHighpass:
		valence = 55.0
	}

	// Heavier processing reads as less acoustic.
	acousticness := clamp100(70.0 - intensity*0.4 - recipe.ReverbAmountPct*0.2)

	return model.AnalysisSummary{
		Energy:       energy,
		Danceability: danceability,
		Valence:      valence,
		Acousticness: acousticness,
	}
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
