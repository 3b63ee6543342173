package cache

import (
	"context"
	"encoding/json"
	"time"

	"MashFM/logger"
	"MashFM/model"

	"github.com/redis/go-redis/v9"
)

const analysisTTL = 7 * 24 * time.Hour

// AnalysisCache is a redis-backed write-through cache for TrackAnalysis
// records, keyed by asset id. A nil or unconnected client degrades to
// cache-miss behavior; the analyzer's in-process memo still applies.
type AnalysisCache struct{}

func analysisKey(assetID string) string {
	return "analysis:" + assetID
}

// GetAnalysis fetches a cached analysis. A miss or any redis error returns
// (nil, false); errors never propagate to analysis callers.
func (AnalysisCache) GetAnalysis(assetID string) (*model.TrackAnalysis, bool) {
	if RedisClient == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := RedisClient.Get(ctx, analysisKey(assetID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("analysis cache read failed",
				logger.String("assetId", assetID),
				logger.ErrorField(err))
		}
		return nil, false
	}

	var analysis model.TrackAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		logger.Warn("analysis cache entry corrupt, dropping",
			logger.String("assetId", assetID),
			logger.ErrorField(err))
		return nil, false
	}
	return &analysis, true
}

// PutAnalysis stores an analysis record. Failures are logged and swallowed.
func (AnalysisCache) PutAnalysis(analysis *model.TrackAnalysis) {
	if RedisClient == nil || analysis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(analysis)
	if err != nil {
		return
	}
	if err := RedisClient.Set(ctx, analysisKey(analysis.AssetID), data, analysisTTL).Err(); err != nil {
		logger.Warn("analysis cache write failed",
			logger.String("assetId", analysis.AssetID),
			logger.ErrorField(err))
	}
}
