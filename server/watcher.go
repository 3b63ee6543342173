package server

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"MashFM/logger"
	"MashFM/model"

	"github.com/fsnotify/fsnotify"
)

var ingestExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
	".m4a":  true,
}

// StartIngestWatcher watches the audio upload directory and ingests files
// dropped there outside the API (scp, rsync, shared folders). Files are
// processed one at a time in arrival order.
func (h *APIHandler) StartIngestWatcher(dir string, stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create == 0 {
					continue
				}
				ext := strings.ToLower(filepath.Ext(event.Name))
				if !ingestExtensions[ext] {
					continue
				}
				h.ingestFile(event.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("ingest watcher error", logger.ErrorField(err))
			case <-stop:
				return
			}
		}
	}()

	logger.Info("ingest watcher started", logger.String("dir", dir))
	return nil
}

// ingestFile decodes and analyzes one dropped file. Rows created here are
// system-owned (UserID 0, stored as NULL); failures only affect this file.
func (h *APIHandler) ingestFile(path string) {
	waitForWrite(path)

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read ingest file",
			logger.String("path", path),
			logger.ErrorField(err))
		return
	}

	asset, err := h.decoder.Decode(data)
	if err != nil {
		logger.Warn("failed to decode ingest file",
			logger.String("path", path),
			logger.ErrorField(err))
		return
	}
	h.assets.Put(asset)

	trackAnalysis := h.analyzer.Analyze(asset)
	track := &model.SourceTrack{
		UserID:   0,
		Title:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		AssetID:  asset.ID,
		Duration: trackAnalysis.DurationSeconds,
		BPM:      trackAnalysis.BPM.Value,
		KeyName:  trackAnalysis.Key.Name(),
		Status:   "completed",
	}
	if _, err := h.trackRepo.CreateSourceTrack(track); err != nil {
		logger.Warn("failed to persist ingest track", logger.ErrorField(err))
		return
	}
	logger.Info("ingested file",
		logger.String("path", path),
		logger.String("assetId", asset.ID),
		logger.Int("bpm", trackAnalysis.BPM.Value))
}

// waitForWrite polls until the file size stops changing, so partially copied
// files are not decoded mid-write.
func waitForWrite(path string) {
	var lastSize int64 = -1
	for i := 0; i < 20; i++ {
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.Size() == lastSize {
			return
		}
		lastSize = info.Size()
		time.Sleep(250 * time.Millisecond)
	}
}
