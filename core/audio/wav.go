package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"MashFM/model"
)

// EncodeWAV encodes an asset as a 16-bit PCM RIFF/WAVE container.
func EncodeWAV(asset *model.AudioAsset) ([]byte, error) {
	if asset == nil || len(asset.Samples) == 0 {
		return nil, fmt.Errorf("no samples to encode")
	}

	channels := len(asset.Samples)
	frames := len(asset.Samples[0])
	sampleRate := asset.SampleRate
	byteRate := sampleRate * channels * 2
	blockAlign := channels * 2
	dataSize := frames * blockAlign

	buf := bytes.NewBuffer(make([]byte, 0, 44+dataSize))
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(16)) // bits per sample

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))

	frame := make([]byte, blockAlign)
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			binary.LittleEndian.PutUint16(frame[c*2:], uint16(clipInt16(asset.Samples[c][i])))
		}
		buf.Write(frame)
	}
	return buf.Bytes(), nil
}

// clipInt16 converts a float sample in [-1, 1] to int16 with hard clipping.
func clipInt16(v float64) int16 {
	s := v * 32767.0
	if s > 32767 {
		return 32767
	}
	if s < -32768 {
		return -32768
	}
	return int16(s)
}

// DecodeWAV parses a 16-bit PCM WAV buffer back into an asset. Used by tests
// and by the ingest watcher for uncompressed drops.
func DecodeWAV(data []byte) (*model.AudioAsset, error) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, &DecodeError{Reason: "not a RIFF/WAVE stream"}
	}

	var channels, bits int
	var sampleRate int
	var pcm []byte

	// Walk chunks; fmt and data are the only ones we care about.
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			size = len(data) - body
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, &DecodeError{Reason: "short fmt chunk"}
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+size]
		}
		if size%2 == 1 {
			size++ // chunks are word aligned
		}
		off = body + size
	}

	if channels < 1 || sampleRate <= 0 || pcm == nil {
		return nil, &DecodeError{Reason: "missing fmt or data chunk"}
	}
	if bits != 16 {
		return nil, &DecodeError{Reason: fmt.Sprintf("unsupported bit depth %d", bits)}
	}

	frames := len(pcm) / (channels * 2)
	out := make([][]float64, channels)
	for c := range out {
		out[c] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			v := int16(binary.LittleEndian.Uint16(pcm[(i*channels+c)*2:]))
			out[c][i] = float64(v) / 32768.0
		}
	}
	return &model.AudioAsset{
		SampleRate:  sampleRate,
		NumChannels: channels,
		Samples:     out,
	}, nil
}
