package cache

import (
	"testing"

	"MashFM/config"
)

func TestConnectRedisFailureClearsClient(t *testing.T) {
	cfg := &config.Config{RedisHost: "127.0.0.1", RedisPort: "1"}
	if err := ConnectRedis(cfg); err == nil {
		CloseRedis()
		t.Skip("something is listening on port 1")
	}
	// A failed connect must not leave a half-connected client behind: cache
	// helpers treat nil as "caching disabled" and skip the network entirely.
	if RedisClient != nil {
		t.Error("RedisClient non-nil after failed connect")
	}
	if got := GetUploadProgress("any"); got != 0 {
		t.Errorf("progress read without redis returned %d, want 0", got)
	}
}
