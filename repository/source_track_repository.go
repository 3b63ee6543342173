package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"MashFM/model"
)

// SourceTrackRepository defines the interface for source-track rows.
type SourceTrackRepository interface {
	CreateSourceTrack(track *model.SourceTrack) (int64, error)
	GetSourceTrackByID(id int64) (*model.SourceTrack, error)
	GetSourceTracksByUserID(userID int64) ([]*model.SourceTrack, error)
	GetSourceTrackByAssetID(assetID string) (*model.SourceTrack, error)
	UpdateAnalysis(trackID int64, duration float64, bpm int, keyName string) error
	UpdateStatus(trackID int64, status string, hasStems bool) error
	UpdateStems(trackID int64, stemAssets map[model.StemType]string) error
	DeleteSourceTrack(trackID int64) error
}

// mysqlSourceTrackRepository implements SourceTrackRepository for MySQL.
type mysqlSourceTrackRepository struct {
	db *sql.DB
}

// NewMySQLSourceTrackRepository creates a new instance.
func NewMySQLSourceTrackRepository(db *sql.DB) SourceTrackRepository {
	return &mysqlSourceTrackRepository{db: db}
}

const sourceTrackColumns = "id, COALESCE(user_id, 0), title, COALESCE(artist, ''), asset_id, file_path, COALESCE(duration, 0), COALESCE(bpm, 0), COALESCE(key_name, ''), COALESCE(status, ''), has_stems, COALESCE(stem_assets, ''), created_at, updated_at"

// nullableUserID maps the system owner (id 0) to NULL so the users foreign
// key only binds for real accounts.
func nullableUserID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// CreateSourceTrack inserts a new source track row.
func (r *mysqlSourceTrackRepository) CreateSourceTrack(track *model.SourceTrack) (int64, error) {
	query := `INSERT INTO source_tracks (user_id, title, artist, asset_id, file_path, duration, bpm, key_name, status, has_stems, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateSourceTrack: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	res, err := stmt.Exec(nullableUserID(track.UserID), track.Title, track.Artist, track.AssetID, track.FilePath,
		track.Duration, track.BPM, track.KeyName, track.Status, track.HasStems, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateSourceTrack: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateSourceTrack: %w", err)
	}
	return id, nil
}

func (r *mysqlSourceTrackRepository) scanTrack(row *sql.Row) (*model.SourceTrack, error) {
	track := &model.SourceTrack{}
	var stemAssets string
	err := row.Scan(&track.ID, &track.UserID, &track.Title, &track.Artist, &track.AssetID, &track.FilePath,
		&track.Duration, &track.BPM, &track.KeyName, &track.Status, &track.HasStems, &stemAssets,
		&track.CreatedAt, &track.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, fmt.Errorf("failed to scan source track: %w", err)
	}
	if stemAssets != "" {
		if err := json.Unmarshal([]byte(stemAssets), &track.StemAssets); err != nil {
			return nil, fmt.Errorf("failed to decode stem assets for track %d: %w", track.ID, err)
		}
	}
	return track, nil
}

// GetSourceTrackByID retrieves a track by its ID.
func (r *mysqlSourceTrackRepository) GetSourceTrackByID(id int64) (*model.SourceTrack, error) {
	return r.scanTrack(r.db.QueryRow("SELECT "+sourceTrackColumns+" FROM source_tracks WHERE id = ?", id))
}

// GetSourceTrackByAssetID retrieves a track by its decoded asset id.
func (r *mysqlSourceTrackRepository) GetSourceTrackByAssetID(assetID string) (*model.SourceTrack, error) {
	return r.scanTrack(r.db.QueryRow("SELECT "+sourceTrackColumns+" FROM source_tracks WHERE asset_id = ?", assetID))
}

// GetSourceTracksByUserID retrieves all tracks belonging to a user.
func (r *mysqlSourceTrackRepository) GetSourceTracksByUserID(userID int64) ([]*model.SourceTrack, error) {
	rows, err := r.db.Query("SELECT "+sourceTrackColumns+" FROM source_tracks WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query source tracks for user %d: %w", userID, err)
	}
	defer rows.Close()

	tracks := make([]*model.SourceTrack, 0)
	for rows.Next() {
		track := &model.SourceTrack{}
		var stemAssets string
		err := rows.Scan(&track.ID, &track.UserID, &track.Title, &track.Artist, &track.AssetID, &track.FilePath,
			&track.Duration, &track.BPM, &track.KeyName, &track.Status, &track.HasStems, &stemAssets,
			&track.CreatedAt, &track.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source track row: %w", err)
		}
		if stemAssets != "" {
			if err := json.Unmarshal([]byte(stemAssets), &track.StemAssets); err != nil {
				return nil, fmt.Errorf("failed to decode stem assets for track %d: %w", track.ID, err)
			}
		}
		tracks = append(tracks, track)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during source track iteration: %w", err)
	}
	return tracks, nil
}

// UpdateAnalysis stores the analysis outcome for a track.
func (r *mysqlSourceTrackRepository) UpdateAnalysis(trackID int64, duration float64, bpm int, keyName string) error {
	_, err := r.db.Exec("UPDATE source_tracks SET duration = ?, bpm = ?, key_name = ?, updated_at = ? WHERE id = ?",
		duration, bpm, keyName, time.Now(), trackID)
	if err != nil {
		return fmt.Errorf("failed to update analysis for track %d: %w", trackID, err)
	}
	return nil
}

// UpdateStatus updates processing status and stem availability.
func (r *mysqlSourceTrackRepository) UpdateStatus(trackID int64, status string, hasStems bool) error {
	_, err := r.db.Exec("UPDATE source_tracks SET status = ?, has_stems = ?, updated_at = ? WHERE id = ?",
		status, hasStems, time.Now(), trackID)
	if err != nil {
		return fmt.Errorf("failed to update status for track %d: %w", trackID, err)
	}
	return nil
}

// UpdateStems stores the stem asset mapping and marks stems available.
func (r *mysqlSourceTrackRepository) UpdateStems(trackID int64, stemAssets map[model.StemType]string) error {
	encoded, err := json.Marshal(stemAssets)
	if err != nil {
		return fmt.Errorf("failed to encode stem assets for track %d: %w", trackID, err)
	}
	_, err = r.db.Exec("UPDATE source_tracks SET stem_assets = ?, has_stems = TRUE, updated_at = ? WHERE id = ?",
		string(encoded), time.Now(), trackID)
	if err != nil {
		return fmt.Errorf("failed to update stems for track %d: %w", trackID, err)
	}
	return nil
}

// DeleteSourceTrack removes a track row.
func (r *mysqlSourceTrackRepository) DeleteSourceTrack(trackID int64) error {
	_, err := r.db.Exec("DELETE FROM source_tracks WHERE id = ?", trackID)
	if err != nil {
		return fmt.Errorf("failed to delete source track %d: %w", trackID, err)
	}
	return nil
}
