package server

import (
	"encoding/json"
	"net/http"
	"time"

	"MashFM/core/timeline"
	"MashFM/logger"
	"MashFM/model"

	"github.com/gorilla/mux"
)

// CreateCompositionHandler starts a new empty composition.
func (h *APIHandler) CreateCompositionHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		req.Title = "Untitled Mashup"
	}

	comp := timeline.NewComposition(req.Title)
	h.compMu.Lock()
	h.compositions[comp.ID] = comp
	h.compMu.Unlock()

	if err := h.persistComposition(r, comp, userID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to persist composition")
		return
	}
	respondJSON(w, http.StatusCreated, comp)
}

// ListCompositionsHandler lists the caller's compositions (metadata only).
func (h *APIHandler) ListCompositionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	records, err := h.compRepo.ListByUser(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list compositions", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list compositions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"compositions": records})
}

// GetCompositionHandler returns the full timeline state.
func (h *APIHandler) GetCompositionHandler(w http.ResponseWriter, r *http.Request) {
	comp, ok := h.ownedComposition(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, comp)
}

// DeleteCompositionHandler removes a composition.
func (h *APIHandler) DeleteCompositionHandler(w http.ResponseWriter, r *http.Request) {
	comp, ok := h.ownedComposition(w, r)
	if !ok {
		return
	}
	if err := h.compRepo.Delete(r.Context(), comp.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete composition")
		return
	}
	h.compMu.Lock()
	delete(h.compositions, comp.ID)
	h.compMu.Unlock()
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddTrackHandler appends a lane to the composition.
func (h *APIHandler) AddTrackHandler(w http.ResponseWriter, r *http.Request) {
	comp, ok := h.ownedComposition(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string         `json:"name"`
		Kind string         `json:"kind"`
		Stem model.StemType `json:"stem"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	kind := timeline.TrackFullMix
	if req.Kind == string(timeline.TrackStem) {
		kind = timeline.TrackStem
	}
	track := comp.AddTrack(req.Name, kind, req.Stem)
	h.saveAfterEdit(w, r, comp, track)
}

// StemTracksHandler wraps each separated stem of a source track into its own
// stem lane on the composition, one full-length clip per stem.
func (h *APIHandler) StemTracksHandler(w http.ResponseWriter, r *http.Request) {
	comp, ok := h.ownedComposition(w, r)
	if !ok {
		return
	}
	var req struct {
		TrackID int64 `json:"trackId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, _ := GetUserIDFromContext(r.Context())
	source, err := h.trackRepo.GetSourceTrackByID(req.TrackID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load track")
		return
	}
	if source == nil || source.UserID != userID {
		respondError(w, http.StatusNotFound, "track not found")
		return
	}
	if len(source.StemAssets) == 0 {
		respondError(w, http.StatusConflict, "track has no separated stems")
		return
	}

	tracks := addStemTracks(comp, source.Title, source.StemAssets, h.assets)
	if len(tracks) == 0 {
		respondError(w, http.StatusConflict, "stem assets not loaded; re-upload the file")
		return
	}
	h.saveAfterEdit(w, r, comp, map[string]interface{}{"tracks": tracks})
}

// addStemTracks creates one stem track per available stem asset. Stems whose
// decoded asset is not in the registry are skipped.
func addStemTracks(comp *timeline.Composition, title string, stemAssets map[model.StemType]string, registry *AssetRegistry) []*timeline.Track {
	var tracks []*timeline.Track
	for _, st := range model.AllStemTypes() {
		assetID, ok := stemAssets[st]
		if !ok {
			continue
		}
		asset := registry.Get(assetID)
		if asset == nil {
			logger.Warn("stem asset not loaded, skipping",
				logger.String("stem", string(st)),
				logger.String("assetId", assetID))
			continue
		}
		track := comp.AddTrack(title+" ("+string(st)+")", timeline.TrackStem, st)
		if _, err := comp.AddClip(track.ID, asset, string(st), 0, 0, asset.DurationSeconds()); err != nil {
			logger.Warn("failed to place stem clip", logger.ErrorField(err))
		}
		tracks = append(tracks, track)
	}
	return tracks
}

// RemoveTrackHandler removes a lane and all its clips.
func (h *APIHandler) RemoveTrackHandler(w http.ResponseWriter, r *http.Request) {
	comp, ok := h.ownedComposition(w, r)
	if !ok {
		return
	}
	if !comp.RemoveTrack(mux.Vars(r)["track_id"]) {
		respondError(w, http.StatusNotFound, "track not found")
		return
	}
	h.saveAfterEdit(w, r, comp, comp)
}

// AddClipHandler places a trimmed asset reference on a track.
func (h *APIHandler) AddClipHandler(w http.ResponseWriter, r *http.Request) {
	comp, ok := h.ownedComposition(w, r)
	if !ok {
		return
	}
	var req struct {
		TrackID      string  `json:"trackId"`
		AssetID      string  `json:"assetId"`
		Name         string  `json:"name"`
		StartTime    float64 `json:"startTime"`
		SourceOffset float64 `json:"sourceOffsetSeconds"`
		Duration     float64 `json:"durationSeconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	asset := h.assets.Get(req.AssetID)
	if asset == nil {
		respondError(w, http.StatusNotFound, "asset not found")
		return
	}
	clip, err := comp.AddClip(req.TrackID, asset, req.Name, req.StartTime, req.SourceOffset, req.Duration)
	if err != nil {
		respondEditError(w, err)
		return
	}
	h.saveAfterEdit(w, r, comp, clip)
}

// EditClipHandler dispatches the edit operations addressed to one clip.
func (h *APIHandler) EditClipHandler(w http.ResponseWriter, r *http.Request) {
	comp, ok := h.ownedComposition(w, r)
	if !ok {
		return
	}
	clipID := mux.Vars(r)["clip_id"]
	op := mux.Vars(r)["op"]

	var req struct {
		StartTime float64 `json:"startTime"`
		Duration  float64 `json:"durationSeconds"`
		AtTime    float64 `json:"atTime"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	var result interface{}
	var err error
	switch op {
	case "move":
		err = comp.MoveClip(clipID, req.StartTime)
		result = comp.Clip(clipID)
	case "trim-start":
		err = comp.TrimStart(clipID, req.StartTime)
		result = comp.Clip(clipID)
	case "trim-end":
		err = comp.TrimEnd(clipID, req.Duration)
		result = comp.Clip(clipID)
	case "split":
		result, err = comp.SplitAt(clipID, req.AtTime)
	case "copy":
		err = comp.Copy(clipID)
		result = map[string]string{"status": "copied"}
	case "select":
		comp.Select(clipID)
		result = map[string]string{"status": "selected"}
	default:
		respondError(w, http.StatusNotFound, "unknown clip operation")
		return
	}
	if err != nil {
		respondEditError(w, err)
		return
	}
	h.saveAfterEdit(w, r, comp, result)
}

// DeleteClipHandler removes a clip.
func (h *APIHandler) DeleteClipHandler(w http.ResponseWriter, r *http.Request) {
	comp, ok := h.ownedComposition(w, r)
	if !ok {
		return
	}
	if err := comp.DeleteClip(mux.Vars(r)["clip_id"]); err != nil {
		respondEditError(w, err)
		return
	}
	h.saveAfterEdit(w, r, comp, map[string]string{"status": "deleted"})
}

// PasteHandler places the clipboard clip at a new position.
func (h *APIHandler) PasteHandler(w http.ResponseWriter, r *http.Request) {
	comp, ok := h.ownedComposition(w, r)
	if !ok {
		return
	}
	var req struct {
		AtTime  float64 `json:"atTime"`
		TrackID string  `json:"trackId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	clip, err := comp.Paste(req.AtTime, req.TrackID)
	if err != nil {
		respondEditError(w, err)
		return
	}
	h.saveAfterEdit(w, r, comp, clip)
}

// PlayheadHandler moves the playhead (view state, always succeeds).
func (h *APIHandler) PlayheadHandler(w http.ResponseWriter, r *http.Request) {
	comp, ok := h.ownedComposition(w, r)
	if !ok {
		return
	}
	var req struct {
		Seconds float64 `json:"seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	comp.SetPlayhead(req.Seconds)
	h.saveAfterEdit(w, r, comp, map[string]float64{"playhead": comp.Playhead})
}

// respondEditError maps engine edit errors onto HTTP statuses.
func respondEditError(w http.ResponseWriter, err error) {
	if editErr, ok := err.(*timeline.InvalidEditError); ok {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  editErr.Error(),
			"op":     editErr.Op,
			"clipId": editErr.ClipID,
		})
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

// ownedComposition resolves {composition_id}, loading from the database when
// the live copy is not in memory.
func (h *APIHandler) ownedComposition(w http.ResponseWriter, r *http.Request) (*timeline.Composition, bool) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	compID := mux.Vars(r)["composition_id"]

	record, err := h.compRepo.GetByID(r.Context(), compID)
	if err != nil {
		logger.Error("failed to load composition record", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to load composition")
		return nil, false
	}
	if record == nil || record.UserID != userID {
		respondError(w, http.StatusNotFound, "composition not found")
		return nil, false
	}

	h.compMu.Lock()
	defer h.compMu.Unlock()
	if comp, ok := h.compositions[compID]; ok {
		return comp, true
	}
	comp, err := timeline.FromSnapshot(record.Snapshot)
	if err != nil {
		logger.Error("failed to restore composition snapshot", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to restore composition")
		return nil, false
	}
	h.compositions[compID] = comp
	return comp, true
}

// saveAfterEdit persists the composition snapshot and responds with result.
func (h *APIHandler) saveAfterEdit(w http.ResponseWriter, r *http.Request, comp *timeline.Composition, result interface{}) {
	userID, _ := GetUserIDFromContext(r.Context())
	if err := h.persistComposition(r, comp, userID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to persist composition")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *APIHandler) persistComposition(r *http.Request, comp *timeline.Composition, userID int64) error {
	snapshot, err := comp.Snapshot()
	if err != nil {
		return err
	}
	record := &model.CompositionRecord{
		ID:        comp.ID,
		UserID:    userID,
		Title:     comp.Title,
		Snapshot:  snapshot,
		UpdatedAt: time.Now(),
	}
	if err := h.compRepo.Save(r.Context(), record); err != nil {
		logger.Error("failed to save composition", logger.ErrorField(err))
		return err
	}
	return nil
}
