package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"MashFM/logger"
	"MashFM/model"

	"github.com/google/uuid"
	mp3 "github.com/hajimehoshi/go-mp3"
)

// Decoder turns compressed audio byte streams into PCM AudioAssets.
type Decoder interface {
	Decode(data []byte) (*model.AudioAsset, error)
	ProbeDuration(data []byte, timeout time.Duration) float64
}

// FFmpegDecoder decodes via an ffmpeg pipe to raw s16le PCM, falling back to
// the pure-Go MP3 decoder when the ffmpeg binary is not installed.
type FFmpegDecoder struct {
	ffmpegPath string
	sampleRate int
}

// NewFFmpegDecoder creates a decoder targeting the given sample rate.
func NewFFmpegDecoder(ffmpegPath string, sampleRate int) *FFmpegDecoder {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	return &FFmpegDecoder{ffmpegPath: ffmpegPath, sampleRate: sampleRate}
}

// Decode decodes a compressed stream into a stereo AudioAsset.
func (d *FFmpegDecoder) Decode(data []byte) (*model.AudioAsset, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Reason: "empty input stream"}
	}

	out, err := d.runFFmpeg(data)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			logger.Warn("ffmpeg not found, trying pure-Go MP3 decode")
			return d.decodeMP3(data)
		}
		return nil, &DecodeError{Reason: "ffmpeg decode failed", Err: err}
	}

	asset := interleavedToAsset(out, d.sampleRate)
	if asset.DurationSeconds() == 0 {
		return nil, &DecodeError{Reason: "decoded stream contains no samples"}
	}
	return asset, nil
}

func (d *FFmpegDecoder) runFFmpeg(data []byte) ([]int16, error) {
	cmd := exec.Command(d.ffmpegPath,
		"-i", "pipe:0",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(d.sampleRate),
		"-ac", "2",
		"-loglevel", "error",
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(data)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, execErr.Err
		}
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	// Ensure even byte count for int16 alignment
	if len(out)%2 != 0 {
		out = out[:len(out)-1]
	}
	samples := make([]int16, len(out)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(out[i*2 : i*2+2]))
	}
	return samples, nil
}

// decodeMP3 is the ffmpeg-less path. go-mp3 always emits 16-bit stereo at
// the file's native rate.
func (d *FFmpegDecoder) decodeMP3(data []byte) (*model.AudioAsset, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Reason: "unsupported stream (not MP3, ffmpeg unavailable)", Err: err}
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, &DecodeError{Reason: "mp3 read failed", Err: err}
	}
	if len(raw)%2 != 0 {
		raw = raw[:len(raw)-1]
	}
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
	}

	asset := interleavedToAsset(samples, dec.SampleRate())
	if asset.DurationSeconds() == 0 {
		return nil, &DecodeError{Reason: "decoded stream contains no samples"}
	}
	return asset, nil
}

// ProbeDuration returns a best-effort duration without a full decode. It
// resolves within the timeout and returns 0 on timeout or error; callers
// substitute DefaultDuration.
func (d *FFmpegDecoder) ProbeDuration(data []byte, timeout time.Duration) float64 {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ffprobePath := strings.Replace(d.ffmpegPath, "ffmpeg", "ffprobe", 1)
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		"pipe:0",
	)
	cmd.Stdin = bytes.NewReader(data)

	out, err := cmd.Output()
	if ctx.Err() != nil {
		logger.Warn("duration probe timed out",
			logger.ErrorField(&TimeoutError{Op: "duration probe", Timeout: timeout.String()}))
		return 0
	}
	if err != nil {
		logger.Debug("duration probe failed", logger.ErrorField(err))
		return 0
	}

	var probeData struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &probeData); err != nil || probeData.Format.Duration == "" {
		return 0
	}
	dur, err := strconv.ParseFloat(probeData.Format.Duration, 64)
	if err != nil || dur < 0 {
		return 0
	}
	return dur
}

// interleavedToAsset deinterleaves stereo int16 PCM into a per-channel
// float64 asset.
func interleavedToAsset(samples []int16, sampleRate int) *model.AudioAsset {
	frames := len(samples) / 2
	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := 0; i < frames; i++ {
		left[i] = float64(samples[2*i]) / 32768.0
		right[i] = float64(samples[2*i+1]) / 32768.0
	}
	return &model.AudioAsset{
		ID:          uuid.NewString(),
		SampleRate:  sampleRate,
		NumChannels: 2,
		Samples:     [][]float64{left, right},
	}
}
