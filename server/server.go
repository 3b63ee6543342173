package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MashFM/cache"
	"MashFM/config"
	"MashFM/core/analysis"
	"MashFM/core/audio"
	"MashFM/core/auth"
	"MashFM/core/mixdown"
	"MashFM/core/stems"
	"MashFM/db"
	"MashFM/logger"
	"MashFM/model"
	"MashFM/repository"
	"MashFM/storage"

	"github.com/gorilla/mux"
)

// Start initializes all backing services and runs the HTTP server until
// SIGINT/SIGTERM.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.InfoLevel,
		OutputPath: "logs/mashfm.log",
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	auth.SetSecret(cfg.JWTSecret)

	if err := storage.InitMinio(); err != nil {
		logger.Fatal("failed to initialize minio", logger.ErrorField(err))
	}
	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()
	if err := db.InitDB(); err != nil {
		logger.Fatal("failed to initialize database schema", logger.ErrorField(err))
	}
	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("failed to connect gorm", logger.ErrorField(err))
	}
	defer db.CloseGormDB()
	if err := db.AutoMigrateModels(&model.CompositionRecord{}, &model.MixdownRecord{}); err != nil {
		logger.Fatal("failed to migrate models", logger.ErrorField(err))
	}
	if err := cache.ConnectRedis(cfg); err != nil {
		// Redis only backs caches; the server still works without it.
		logger.Warn("redis unavailable, caches disabled", logger.ErrorField(err))
	} else {
		defer cache.CloseRedis()
	}

	ensureDirExists(cfg.UploadDir)
	ensureDirExists(cfg.AudioUploadDir)
	ensureDirExists(cfg.MixdownDir)

	decoder := audio.NewFFmpegDecoder(cfg.FFmpegPath, cfg.DecodeSampleRate)
	analyzer := analysis.NewTrackAnalyzer(analysis.ChromaKeyAnalyzer{}, cache.AnalysisCache{})
	renderer := mixdown.NewRenderer(cfg.OutputSampleRate, analysis.ChromaKeyAnalyzer{})
	separator := stems.NewClient(cfg.SeparationAPIURL)

	userRepo := repository.NewMySQLUserRepository(db.DB)
	trackRepo := repository.NewMySQLSourceTrackRepository(db.DB)
	compRepo := repository.NewGormCompositionRepository(db.GormDB)
	mixRepo := repository.NewGormMixdownRepository(db.GormDB)

	store, err := storage.NewAssetStore()
	if err != nil {
		logger.Fatal("failed to create asset store", logger.ErrorField(err))
	}

	apiHandler := NewAPIHandler(cfg, decoder, analyzer, renderer, separator,
		userRepo, trackRepo, compRepo, mixRepo, store)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// Auth
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)

	// Library
	router.HandleFunc("/api/tracks", apiHandler.AuthMiddleware(apiHandler.GetTracksHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{track_id}", apiHandler.AuthMiddleware(apiHandler.DeleteTrackHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/tracks/{track_id}/analysis", apiHandler.AuthMiddleware(apiHandler.TrackAnalysisHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{track_id}/beatgrid", apiHandler.AuthMiddleware(apiHandler.TrackBeatGridHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/upload", apiHandler.AuthMiddleware(apiHandler.UploadTracksHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/upload/{upload_id}/progress", apiHandler.AuthMiddleware(apiHandler.UploadProgressHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/compatibility", apiHandler.AuthMiddleware(apiHandler.CompatibilityHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/presets", apiHandler.PresetsHandler).Methods(http.MethodGet)

	// Compositions and edit operations
	router.HandleFunc("/api/compositions", apiHandler.AuthMiddleware(apiHandler.CreateCompositionHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/compositions", apiHandler.AuthMiddleware(apiHandler.ListCompositionsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/compositions/{composition_id}", apiHandler.AuthMiddleware(apiHandler.GetCompositionHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/compositions/{composition_id}", apiHandler.AuthMiddleware(apiHandler.DeleteCompositionHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/compositions/{composition_id}/tracks", apiHandler.AuthMiddleware(apiHandler.AddTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/compositions/{composition_id}/tracks/{track_id}", apiHandler.AuthMiddleware(apiHandler.RemoveTrackHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/compositions/{composition_id}/stem-tracks", apiHandler.AuthMiddleware(apiHandler.StemTracksHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/compositions/{composition_id}/clips", apiHandler.AuthMiddleware(apiHandler.AddClipHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/compositions/{composition_id}/clips/{clip_id}/{op}", apiHandler.AuthMiddleware(apiHandler.EditClipHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/compositions/{composition_id}/clips/{clip_id}", apiHandler.AuthMiddleware(apiHandler.DeleteClipHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/compositions/{composition_id}/paste", apiHandler.AuthMiddleware(apiHandler.PasteHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/compositions/{composition_id}/playhead", apiHandler.AuthMiddleware(apiHandler.PlayheadHandler)).Methods(http.MethodPost)

	// Mixdowns
	router.HandleFunc("/api/compositions/{composition_id}/render", apiHandler.AuthMiddleware(apiHandler.RenderHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/compositions/{composition_id}/mixdowns", apiHandler.AuthMiddleware(apiHandler.ListMixdownsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/mixdowns/{mixdown_id}", apiHandler.AuthMiddleware(apiHandler.GetMixdownHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/mixdowns/{mixdown_id}/audio", apiHandler.AuthMiddleware(apiHandler.MixdownAudioHandler)).Methods(http.MethodGet)

	// Live preview transport
	router.HandleFunc("/ws/transport", apiHandler.TransportWSHandler)

	httpServer := &http.Server{
		Addr:         ":8080",
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stopWatcher := make(chan struct{})
	if cfg.WatchIngestDir {
		if err := apiHandler.StartIngestWatcher(cfg.AudioUploadDir, stopWatcher); err != nil {
			logger.Warn("ingest watcher unavailable", logger.ErrorField(err))
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", logger.ErrorField(err))
		}
	}()

	<-stop
	close(stopWatcher)
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", logger.ErrorField(err))
	}
	logger.Info("server stopped")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ensureDirExists(dir string) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Fatal("failed to create directory",
			logger.String("dir", dir),
			logger.ErrorField(err))
	}
}
