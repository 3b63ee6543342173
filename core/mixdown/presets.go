package mixdown

import "MashFM/model"

// Presets are the selectable vibe recipes. Users pick one by id; the fields
// are never edited individually.
var Presets = []model.MixRecipe{
	{
		ID:              "club-heat",
		Name:            "Club Heat",
		TempoMultiplier: 1.1,
		FilterType:      model.FilterNone,
		ReverbAmountPct: 10,
		BeatComplexity:  0.8,
		VocalProcessing: "dry",
	},
	{
		ID:              "midnight-drive",
		Name:            "Midnight Drive",
		TempoMultiplier: 0.92,
		FilterType:      model.FilterLowpass,
		ReverbAmountPct: 35,
		BeatComplexity:  0.4,
		VocalProcessing: "soft",
	},
	{
		ID:                "chipmunk-rush",
		Name:              "Chipmunk Rush",
		TempoMultiplier:   1.35,
		KeyShiftSemitones: 2,
		FilterType:        model.FilterHighpass,
		ReverbAmountPct:   5,
		BeatComplexity:    0.9,
		VocalProcessing:   "bright",
	},
	{
		ID:              "slowed-reverb",
		Name:            "Slowed + Reverb",
		TempoMultiplier: 0.8,
		FilterType:      model.FilterLowpass,
		ReverbAmountPct: 60,
		BeatComplexity:  0.3,
		VocalProcessing: "washed",
	},
}

// PresetByID looks up a preset, falling back to a neutral recipe.
func PresetByID(id string) model.MixRecipe {
	for _, p := range Presets {
		if p.ID == id {
			return p
		}
	}
	return model.MixRecipe{ID: "neutral", Name: "Neutral", TempoMultiplier: 1.0, FilterType: model.FilterNone}
}
