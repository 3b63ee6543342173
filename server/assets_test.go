package server

import (
	"testing"

	"MashFM/model"
)

func registryAsset(id string) *model.AudioAsset {
	return &model.AudioAsset{ID: id, SampleRate: 1000, NumChannels: 1, Samples: [][]float64{make([]float64, 10)}}
}

func TestAssetRegistry(t *testing.T) {
	r := NewAssetRegistry()
	if r.Get("missing") != nil {
		t.Error("empty registry returned an asset")
	}

	a := registryAsset("one")
	b := registryAsset("two")
	r.Put(a)
	r.Put(b)

	if r.Get("one") != a {
		t.Error("lookup returned a different asset")
	}

	snap := r.Snapshot([]string{"one", "two", "ghost"})
	if len(snap) != 2 {
		t.Errorf("snapshot has %d entries, want 2", len(snap))
	}
	if _, ok := snap["ghost"]; ok {
		t.Error("snapshot invented a missing asset")
	}

	r.Delete("one")
	if r.Get("one") != nil {
		t.Error("deleted asset still present")
	}
}
