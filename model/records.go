package model

import "time"

// CompositionRecord persists a composition snapshot. The snapshot JSON is
// the timeline package's serialized structural state; this row only adds
// ownership and bookkeeping.
type CompositionRecord struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    int64     `gorm:"index" json:"userId"`
	Title     string    `gorm:"size:255" json:"title"`
	Snapshot  []byte    `gorm:"type:mediumblob" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName keeps the table name explicit.
func (CompositionRecord) TableName() string { return "compositions" }

// MixdownRecord persists the metadata of one rendered mixdown. The audio
// itself lives in object storage at OutputPath.
type MixdownRecord struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	CompositionID   string    `gorm:"index;size:36" json:"compositionId"`
	UserID          int64     `gorm:"index" json:"userId"`
	OutputPath      string    `gorm:"size:512" json:"outputPath"`
	DurationSeconds float64   `json:"durationSeconds"`
	BPM             int       `json:"bpm"`
	KeyName         string    `gorm:"size:32" json:"key"`
	RecipeID        string    `gorm:"size:64" json:"recipeId"`
	Status          string    `gorm:"size:16" json:"status"`
	ErrorMessage    string    `gorm:"size:512" json:"errorMessage,omitempty"`
	SummaryJSON     []byte    `gorm:"type:blob" json:"-"`
	SegmentsJSON    []byte    `gorm:"type:blob" json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TableName keeps the table name explicit.
func (MixdownRecord) TableName() string { return "mixdowns" }
