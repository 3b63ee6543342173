package server

import (
	"sync"

	"MashFM/model"
)

// AssetRegistry holds decoded audio assets in memory, keyed by asset id.
// Uploads and the ingest watcher write; analysis and rendering read.
type AssetRegistry struct {
	mu     sync.RWMutex
	assets map[string]*model.AudioAsset
}

// NewAssetRegistry creates an empty registry.
func NewAssetRegistry() *AssetRegistry {
	return &AssetRegistry{assets: make(map[string]*model.AudioAsset)}
}

// Put registers a decoded asset.
func (r *AssetRegistry) Put(asset *model.AudioAsset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[asset.ID] = asset
}

// Get returns the asset or nil.
func (r *AssetRegistry) Get(id string) *model.AudioAsset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.assets[id]
}

// Delete forgets an asset.
func (r *AssetRegistry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assets, id)
}

// Snapshot returns the assets referenced by the given ids; missing ids are
// simply absent from the result.
func (r *AssetRegistry) Snapshot(ids []string) map[string]*model.AudioAsset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*model.AudioAsset, len(ids))
	for _, id := range ids {
		if a, ok := r.assets[id]; ok {
			out[id] = a
		}
	}
	return out
}
