package analysis

import (
	"sync"

	"MashFM/logger"
	"MashFM/model"
)

// AnalysisCache is the optional write-through layer behind the in-process
// memo (satisfied by cache.AnalysisCache backed by redis).
type AnalysisCache interface {
	GetAnalysis(assetID string) (*model.TrackAnalysis, bool)
	PutAnalysis(analysis *model.TrackAnalysis)
}

// TrackAnalyzer produces immutable TrackAnalysis records, memoized per asset
// id. Tempo estimation never runs twice for the same id.
type TrackAnalyzer struct {
	keyAnalyzer KeyLoudnessAnalyzer
	cache       AnalysisCache

	mu   sync.Mutex
	memo map[string]*model.TrackAnalysis
}

// NewTrackAnalyzer wires an analyzer. keyAnalyzer may be nil (neutral stub is
// used); cache may be nil (in-process memo only).
func NewTrackAnalyzer(keyAnalyzer KeyLoudnessAnalyzer, cache AnalysisCache) *TrackAnalyzer {
	if keyAnalyzer == nil {
		keyAnalyzer = NeutralKeyAnalyzer{}
	}
	return &TrackAnalyzer{
		keyAnalyzer: keyAnalyzer,
		cache:       cache,
		memo:        make(map[string]*model.TrackAnalysis),
	}
}

// Analyze returns the analysis for the asset, computing it on first sight.
func (t *TrackAnalyzer) Analyze(asset *model.AudioAsset) *model.TrackAnalysis {
	t.mu.Lock()
	if hit, ok := t.memo[asset.ID]; ok {
		t.mu.Unlock()
		return hit
	}
	t.mu.Unlock()

	if t.cache != nil {
		if hit, ok := t.cache.GetAnalysis(asset.ID); ok {
			t.mu.Lock()
			t.memo[asset.ID] = hit
			t.mu.Unlock()
			return hit
		}
	}

	bpm := EstimateTempo(asset)
	key, loudness := t.keyAnalyzer.KeyAndLoudness(asset)

	analysis := &model.TrackAnalysis{
		AssetID:         asset.ID,
		BPM:             bpm,
		Key:             key,
		LoudnessLUFS:    loudness,
		DurationSeconds: asset.DurationSeconds(),
	}

	t.mu.Lock()
	// Another goroutine may have raced us here; first write wins so the
	// record stays immutable from the caller's point of view.
	if prior, ok := t.memo[asset.ID]; ok {
		t.mu.Unlock()
		return prior
	}
	t.memo[asset.ID] = analysis
	t.mu.Unlock()

	if t.cache != nil {
		t.cache.PutAnalysis(analysis)
	}

	logger.Debug("track analyzed",
		logger.String("assetId", asset.ID),
		logger.Int("bpm", analysis.BPM.Value),
		logger.String("key", analysis.Key.Name()))
	return analysis
}
