package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"MashFM/core/mixdown"
	"MashFM/core/timeline"
	"MashFM/logger"
	"MashFM/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// renderTimeout bounds one offline render end to end.
const renderTimeout = 10 * time.Minute

// RenderHandler kicks off an asynchronous mixdown of a composition under a
// preset. Responds immediately with the mixdown id; poll GetMixdownHandler
// for the outcome.
func (h *APIHandler) RenderHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	comp, ok := h.ownedComposition(w, r)
	if !ok {
		return
	}

	var req struct {
		PresetID         string  `json:"presetId"`
		IntensityPercent float64 `json:"intensityPercent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IntensityPercent == 0 {
		req.IntensityPercent = 100
	}
	recipe := mixdown.PresetByID(req.PresetID)

	// The live composition keeps mutating under the editor, so the render
	// works from a snapshot copy plus a frozen asset map.
	snapshot, err := comp.Snapshot()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to snapshot composition")
		return
	}
	frozen, err := timeline.FromSnapshot(snapshot)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to snapshot composition")
		return
	}
	var assetIDs []string
	for _, t := range frozen.Tracks {
		for _, c := range t.Clips {
			assetIDs = append(assetIDs, c.AssetID)
		}
	}
	assets := h.assets.Snapshot(assetIDs)

	record := &model.MixdownRecord{
		ID:            uuid.NewString(),
		CompositionID: comp.ID,
		UserID:        userID,
		RecipeID:      recipe.ID,
		Status:        "rendering",
		CreatedAt:     time.Now(),
	}
	if err := h.mixRepo.Create(r.Context(), record); err != nil {
		logger.Error("failed to create mixdown record", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to start render")
		return
	}

	go h.runRender(record, frozen, assets, recipe, req.IntensityPercent)

	respondJSON(w, http.StatusAccepted, map[string]string{
		"mixdownId": record.ID,
		"status":    "rendering",
	})
}

// runRender executes the render off the request goroutine and persists the
// outcome.
func (h *APIHandler) runRender(record *model.MixdownRecord, comp *timeline.Composition, assets map[string]*model.AudioAsset, recipe model.MixRecipe, intensity float64) {
	ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
	defer cancel()

	result, err := h.renderer.RenderComposition(ctx, comp, assets, recipe, intensity)
	if err != nil {
		record.Status = string(model.MixdownError)
		if result != nil {
			record.ErrorMessage = result.ErrorMessage
		} else {
			record.ErrorMessage = err.Error()
		}
		if updErr := h.mixRepo.Update(ctx, record); updErr != nil {
			logger.Error("failed to record render failure", logger.ErrorField(updErr))
		}
		logger.Warn("mixdown render failed",
			logger.String("mixdownId", record.ID),
			logger.ErrorField(err))
		return
	}

	if h.store != nil {
		key, putErr := h.store.PutMixdown(ctx, record.ID, result.OutputWAV)
		if putErr != nil {
			logger.Error("failed to store mixdown wav", logger.ErrorField(putErr))
		} else {
			record.OutputPath = key
		}
	}
	h.assets.Put(result.OutputAsset)

	record.Status = string(result.Status)
	record.DurationSeconds = result.DurationSeconds
	record.BPM = result.BPM
	record.KeyName = result.Key
	if data, mErr := json.Marshal(result.AnalysisSummary); mErr == nil {
		record.SummaryJSON = data
	}
	if data, mErr := json.Marshal(result.Segments); mErr == nil {
		record.SegmentsJSON = data
	}
	if err := h.mixRepo.Update(ctx, record); err != nil {
		logger.Error("failed to persist mixdown result", logger.ErrorField(err))
		return
	}
	logger.Info("mixdown stored",
		logger.String("mixdownId", record.ID),
		logger.String("compositionId", record.CompositionID),
		logger.Float64("durationSeconds", record.DurationSeconds))
}

// GetMixdownHandler returns one mixdown record with its summary and segments.
func (h *APIHandler) GetMixdownHandler(w http.ResponseWriter, r *http.Request) {
	record, ok := h.ownedMixdown(w, r)
	if !ok {
		return
	}

	var summary model.AnalysisSummary
	var segments []model.MixSegment
	if len(record.SummaryJSON) > 0 {
		json.Unmarshal(record.SummaryJSON, &summary)
	}
	if len(record.SegmentsJSON) > 0 {
		json.Unmarshal(record.SegmentsJSON, &segments)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"mixdown":  record,
		"summary":  summary,
		"segments": segments,
	})
}

// ListMixdownsHandler lists the renders of a composition.
func (h *APIHandler) ListMixdownsHandler(w http.ResponseWriter, r *http.Request) {
	comp, ok := h.ownedComposition(w, r)
	if !ok {
		return
	}
	records, err := h.mixRepo.ListByComposition(r.Context(), comp.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list mixdowns")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"mixdowns": records})
}

// MixdownAudioHandler streams the rendered WAV from object storage.
func (h *APIHandler) MixdownAudioHandler(w http.ResponseWriter, r *http.Request) {
	record, ok := h.ownedMixdown(w, r)
	if !ok {
		return
	}
	if record.OutputPath == "" || h.store == nil {
		respondError(w, http.StatusNotFound, "mixdown audio not available")
		return
	}
	data, err := h.store.Get(r.Context(), record.OutputPath)
	if err != nil {
		logger.Error("failed to read mixdown wav", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to read mixdown audio")
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.Write(data)
}

func (h *APIHandler) ownedMixdown(w http.ResponseWriter, r *http.Request) (*model.MixdownRecord, bool) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	record, err := h.mixRepo.GetByID(r.Context(), mux.Vars(r)["mixdown_id"])
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load mixdown")
		return nil, false
	}
	if record == nil || record.UserID != userID {
		respondError(w, http.StatusNotFound, "mixdown not found")
		return nil, false
	}
	return record, true
}
