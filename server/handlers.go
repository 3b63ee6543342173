package server

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"MashFM/cache"
	"MashFM/config"
	"MashFM/core/analysis"
	"MashFM/core/audio"
	"MashFM/core/mixdown"
	"MashFM/core/stems"
	"MashFM/core/timeline"
	"MashFM/core/transport"
	"MashFM/logger"
	"MashFM/model"
	"MashFM/repository"
	"MashFM/storage"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// APIHandler holds the dependencies for all HTTP handlers.
type APIHandler struct {
	cfg       *config.Config
	decoder   audio.Decoder
	analyzer  *analysis.TrackAnalyzer
	renderer  *mixdown.Renderer
	separator stems.Separator

	userRepo  repository.UserRepository
	trackRepo repository.SourceTrackRepository
	compRepo  repository.CompositionRepository
	mixRepo   repository.MixdownRepository

	assets *AssetRegistry
	store  *storage.AssetStore

	transport *transport.MultiStreamTransport
	wsHub     *transportHub

	compMu       sync.Mutex
	compositions map[string]*timeline.Composition
}

// NewAPIHandler creates a new APIHandler with its dependencies.
func NewAPIHandler(
	cfg *config.Config,
	decoder audio.Decoder,
	analyzer *analysis.TrackAnalyzer,
	renderer *mixdown.Renderer,
	separator stems.Separator,
	userRepo repository.UserRepository,
	trackRepo repository.SourceTrackRepository,
	compRepo repository.CompositionRepository,
	mixRepo repository.MixdownRepository,
	store *storage.AssetStore,
) *APIHandler {
	return &APIHandler{
		cfg:          cfg,
		decoder:      decoder,
		analyzer:     analyzer,
		renderer:     renderer,
		separator:    separator,
		userRepo:     userRepo,
		trackRepo:    trackRepo,
		compRepo:     compRepo,
		mixRepo:      mixRepo,
		assets:       NewAssetRegistry(),
		store:        store,
		transport:    transport.New(),
		wsHub:        newTransportHub(),
		compositions: make(map[string]*timeline.Composition),
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// uploadResult is the per-file outcome of an upload request.
type uploadResult struct {
	UploadID string                    `json:"uploadId"`
	Filename string                    `json:"filename"`
	AssetID  string                    `json:"assetId,omitempty"`
	TrackID  int64                     `json:"trackId,omitempty"`
	Duration float64                   `json:"durationSeconds,omitempty"`
	Status   string                    `json:"status"`
	Error    string                    `json:"error,omitempty"`
	Analysis *model.TrackAnalysis      `json:"analysis,omitempty"`
	Stems    map[model.StemType]string `json:"stems,omitempty"`
}

// UploadTracksHandler accepts one or more audio files via multipart form.
// Files are processed strictly in order; a failure on one file never aborts
// the others.
func (h *APIHandler) UploadTracksHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(200 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		if single := r.MultipartForm.File["file"]; len(single) > 0 {
			files = single
		}
	}
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files in request")
		return
	}

	results := make([]uploadResult, 0, len(files))
	for _, fh := range files {
		results = append(results, h.processUpload(r, userID, fh))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// processUpload runs the full pipeline for one file: store, decode, analyze,
// then a best-effort stem separation. Progress moves 0 -> 50 -> 100 and never
// backwards.
func (h *APIHandler) processUpload(r *http.Request, userID int64, fh *multipart.FileHeader) uploadResult {
	uploadID := uuid.NewString()
	result := uploadResult{UploadID: uploadID, Filename: fh.Filename}
	cache.SetUploadProgress(uploadID, 0)

	data, err := readMultipartFile(fh)
	if err != nil {
		result.Status = "failed"
		result.Error = "failed to read file"
		return result
	}

	title := strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))
	if formTitle := r.FormValue("title"); formTitle != "" {
		title = formTitle
	}
	artist := r.FormValue("artist")

	// Bounded duration probe before the full decode, so the response carries
	// a length estimate even when decoding is slow or fails.
	probedDuration := h.decoder.ProbeDuration(data, h.probeTimeout())
	if probedDuration == 0 {
		probedDuration = audio.DefaultDuration
	}
	result.Duration = probedDuration

	asset, err := h.decoder.Decode(data)
	if err != nil {
		// Decode failure is local to this file: record it with the probed
		// duration so the library row still exists.
		logger.Warn("decode failed for upload",
			logger.String("filename", fh.Filename),
			logger.ErrorField(err))
		track := &model.SourceTrack{
			UserID:   userID,
			Title:    title,
			Artist:   artist,
			AssetID:  uploadID,
			Duration: probedDuration,
			Status:   "failed",
		}
		if id, dbErr := h.trackRepo.CreateSourceTrack(track); dbErr == nil {
			result.TrackID = id
		}
		result.Status = "failed"
		result.Error = err.Error()
		cache.SetUploadProgress(uploadID, 100)
		return result
	}

	h.assets.Put(asset)
	result.AssetID = asset.ID

	objectPath := ""
	if h.store != nil {
		if key, putErr := h.store.PutSource(r.Context(), asset.ID, fh.Filename, data); putErr != nil {
			logger.Warn("failed to store source in minio", logger.ErrorField(putErr))
		} else {
			objectPath = key
		}
	}
	cache.SetUploadProgress(uploadID, 50)

	trackAnalysis := h.analyzer.Analyze(asset)
	result.Analysis = trackAnalysis
	result.Duration = trackAnalysis.DurationSeconds

	track := &model.SourceTrack{
		UserID:   userID,
		Title:    title,
		Artist:   artist,
		AssetID:  asset.ID,
		FilePath: objectPath,
		Duration: trackAnalysis.DurationSeconds,
		BPM:      trackAnalysis.BPM.Value,
		KeyName:  trackAnalysis.Key.Name(),
		Status:   "completed",
	}
	trackID, err := h.trackRepo.CreateSourceTrack(track)
	if err != nil {
		logger.Error("failed to persist source track", logger.ErrorField(err))
		result.Status = "failed"
		result.Error = "failed to persist track"
		cache.SetUploadProgress(uploadID, 100)
		return result
	}
	result.TrackID = trackID
	result.Status = "completed"
	cache.SetUploadProgress(uploadID, 100)

	// Stem separation is a collaborator call; its failure never fails the
	// upload.
	if h.separator != nil {
		set, sepErr := h.separator.Separate(r.Context(), asset.ID, trackAnalysis.DurationSeconds)
		if sepErr != nil {
			logger.Warn("stem separation unavailable",
				logger.String("assetId", asset.ID),
				logger.ErrorField(sepErr))
		} else if stemAssets := h.ingestStems(r.Context(), asset.ID, set); len(stemAssets) > 0 {
			result.Stems = stemAssets
			if updErr := h.trackRepo.UpdateStems(trackID, stemAssets); updErr != nil {
				logger.Warn("failed to persist stem assets", logger.ErrorField(updErr))
			}
		}
	}

	return result
}

// ingestStems fetches, decodes, and registers each separated stem, returning
// the decoded asset id per stem type. A failure on one stem skips only that
// stem.
func (h *APIHandler) ingestStems(ctx context.Context, sourceAssetID string, set stems.StemSet) map[model.StemType]string {
	stemAssets := make(map[model.StemType]string, len(set))
	for _, st := range model.AllStemTypes() {
		ref, ok := set[st]
		if !ok {
			continue
		}
		data, err := h.separator.FetchStem(ctx, ref)
		if err != nil {
			logger.Warn("failed to fetch stem",
				logger.String("stem", string(st)),
				logger.ErrorField(err))
			continue
		}
		stemAsset, err := h.decoder.Decode(data)
		if err != nil {
			logger.Warn("failed to decode stem",
				logger.String("stem", string(st)),
				logger.ErrorField(err))
			continue
		}
		h.assets.Put(stemAsset)
		if h.store != nil {
			if _, putErr := h.store.PutStem(ctx, sourceAssetID, string(st), data); putErr != nil {
				logger.Warn("failed to store stem",
					logger.String("stem", string(st)),
					logger.ErrorField(putErr))
			}
		}
		stemAssets[st] = stemAsset.ID
	}
	return stemAssets
}

// probeTimeout converts the configured probe bound, defaulting to 5s.
func (h *APIHandler) probeTimeout() time.Duration {
	if h.cfg != nil && h.cfg.ProbeTimeoutMs > 0 {
		return time.Duration(h.cfg.ProbeTimeoutMs) * time.Millisecond
	}
	return 5 * time.Second
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// UploadProgressHandler reports monotonic 0-100 progress for one upload.
func (h *APIHandler) UploadProgressHandler(w http.ResponseWriter, r *http.Request) {
	uploadID := mux.Vars(r)["upload_id"]
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"uploadId": uploadID,
		"percent":  cache.GetUploadProgress(uploadID),
	})
}

// GetTracksHandler lists the caller's source tracks.
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	tracks, err := h.trackRepo.GetSourceTracksByUserID(userID)
	if err != nil {
		logger.Error("failed to list source tracks", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list tracks")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"tracks": tracks})
}

// DeleteTrackHandler removes a source track and its decoded asset.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	trackID, err := strconv.ParseInt(mux.Vars(r)["track_id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid track id")
		return
	}

	track, err := h.trackRepo.GetSourceTrackByID(trackID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load track")
		return
	}
	if track == nil || track.UserID != userID {
		respondError(w, http.StatusNotFound, "track not found")
		return
	}

	if err := h.trackRepo.DeleteSourceTrack(trackID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete track")
		return
	}
	h.assets.Delete(track.AssetID)
	if h.store != nil && track.FilePath != "" {
		if delErr := h.store.Delete(r.Context(), track.FilePath); delErr != nil {
			logger.Warn("failed to delete source object", logger.ErrorField(delErr))
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// TrackAnalysisHandler returns the cached analysis for a track's asset.
func (h *APIHandler) TrackAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	track, ok := h.ownedTrack(w, r)
	if !ok {
		return
	}
	asset := h.assets.Get(track.AssetID)
	if asset == nil {
		respondError(w, http.StatusConflict, "asset not loaded; re-upload the file")
		return
	}
	respondJSON(w, http.StatusOK, h.analyzer.Analyze(asset))
}

// TrackBeatGridHandler derives the beat grid for a track from its analysis.
func (h *APIHandler) TrackBeatGridHandler(w http.ResponseWriter, r *http.Request) {
	track, ok := h.ownedTrack(w, r)
	if !ok {
		return
	}
	asset := h.assets.Get(track.AssetID)
	if asset == nil {
		respondError(w, http.StatusConflict, "asset not loaded; re-upload the file")
		return
	}
	grid := analysis.GridForAnalysis(h.analyzer.Analyze(asset))
	respondJSON(w, http.StatusOK, map[string]interface{}{"beats": grid})
}

// CompatibilityHandler scores two assets for mashup compatibility.
func (h *APIHandler) CompatibilityHandler(w http.ResponseWriter, r *http.Request) {
	aID := r.URL.Query().Get("a")
	bID := r.URL.Query().Get("b")
	if aID == "" || bID == "" {
		respondError(w, http.StatusBadRequest, "query params a and b are required")
		return
	}
	assetA := h.assets.Get(aID)
	assetB := h.assets.Get(bID)
	if assetA == nil || assetB == nil {
		respondError(w, http.StatusNotFound, "asset not found")
		return
	}
	score := analysis.Score(h.analyzer.Analyze(assetA), h.analyzer.Analyze(assetB))
	respondJSON(w, http.StatusOK, score)
}

// PresetsHandler lists the selectable mix recipes.
func (h *APIHandler) PresetsHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"presets": mixdown.Presets})
}

// ownedTrack loads the {track_id} route var and checks ownership.
func (h *APIHandler) ownedTrack(w http.ResponseWriter, r *http.Request) (*model.SourceTrack, bool) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	trackID, err := strconv.ParseInt(mux.Vars(r)["track_id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid track id")
		return nil, false
	}
	track, err := h.trackRepo.GetSourceTrackByID(trackID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load track")
		return nil, false
	}
	if track == nil || track.UserID != userID {
		respondError(w, http.StatusNotFound, "track not found")
		return nil, false
	}
	return track, true
}
