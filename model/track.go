package model

import "time"

// SourceTrack is an uploaded source recording row. The decoded asset itself
// lives in memory/object storage; this record carries the library metadata.
type SourceTrack struct {
	ID       int64   `json:"id"`
	UserID   int64   `json:"userId"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	AssetID  string  `json:"assetId"`
	FilePath string  `json:"-"`        // object path in storage, not exposed directly
	Duration float64 `json:"duration"` // seconds
	BPM      int     `json:"bpm"`
	KeyName  string  `json:"key"`
	Status   string  `json:"status"` // processing, completed, failed
	HasStems bool    `json:"hasStems"`
	// StemAssets maps each separated stem to its decoded asset id. Populated
	// once stem separation succeeds; empty otherwise.
	StemAssets map[StemType]string `json:"stemAssets,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}
