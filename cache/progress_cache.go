package cache

import (
	"context"
	"strconv"
	"time"

	"MashFM/logger"

	"github.com/redis/go-redis/v9"
)

const progressTTL = time.Hour

// SetUploadProgress records per-file processing progress (0-100). Progress
// for one upload only ever moves forward; regressions are ignored so clients
// observe a monotonic 0 → partial → 100 sequence.
func SetUploadProgress(uploadID string, percent int) {
	if RedisClient == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := "upload_progress:" + uploadID
	if current, err := RedisClient.Get(ctx, key).Int(); err == nil && current >= percent {
		return
	}
	if err := RedisClient.Set(ctx, key, percent, progressTTL).Err(); err != nil {
		logger.Warn("progress write failed",
			logger.String("uploadId", uploadID),
			logger.ErrorField(err))
	}
}

// GetUploadProgress reads progress, returning 0 when unknown.
func GetUploadProgress(uploadID string) int {
	if RedisClient == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	val, err := RedisClient.Get(ctx, "upload_progress:"+uploadID).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Debug("progress read failed", logger.ErrorField(err))
		}
		return 0
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return n
}
