package audio

import (
	"math"
	"testing"

	"MashFM/model"
)

func TestWAVRoundTrip(t *testing.T) {
	frames := 2000
	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := range left {
		left[i] = 0.7 * math.Sin(2*math.Pi*440*float64(i)/8000)
		right[i] = -left[i]
	}
	in := &model.AudioAsset{
		ID:          "wav-test",
		SampleRate:  8000,
		NumChannels: 2,
		Samples:     [][]float64{left, right},
	}

	data, err := EncodeWAV(in)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	if len(data) != 44+frames*4 {
		t.Errorf("encoded size %d, want %d", len(data), 44+frames*4)
	}

	out, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if out.SampleRate != 8000 || out.NumChannels != 2 {
		t.Fatalf("header lost: %d Hz, %d ch", out.SampleRate, out.NumChannels)
	}
	if len(out.Samples[0]) != frames {
		t.Fatalf("frame count %d, want %d", len(out.Samples[0]), frames)
	}
	for i := 0; i < frames; i += 97 {
		if math.Abs(out.Samples[0][i]-left[i]) > 1.0/32000 {
			t.Fatalf("sample %d drifted: %v vs %v", i, out.Samples[0][i], left[i])
		}
	}
}

func TestEncodeWAVClipsOutOfRange(t *testing.T) {
	in := &model.AudioAsset{
		SampleRate:  8000,
		NumChannels: 1,
		Samples:     [][]float64{{2.0, -2.0, 0}},
	}
	data, err := EncodeWAV(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeWAV(data)
	if err != nil {
		t.Fatal(err)
	}
	if out.Samples[0][0] < 0.99 {
		t.Errorf("positive overdrive clipped to %v", out.Samples[0][0])
	}
	if out.Samples[0][1] > -0.99 {
		t.Errorf("negative overdrive clipped to %v", out.Samples[0][1])
	}
}

func TestDecodeWAVGarbage(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("not audio at all"),
		make([]byte, 100),
	}
	for i, data := range inputs {
		if _, err := DecodeWAV(data); err == nil {
			t.Errorf("input %d: garbage decoded without error", i)
		} else if _, ok := err.(*DecodeError); !ok {
			t.Errorf("input %d: got %T, want *DecodeError", i, err)
		}
	}
}

func TestEncodeWAVEmpty(t *testing.T) {
	if _, err := EncodeWAV(nil); err == nil {
		t.Error("nil asset encoded")
	}
	if _, err := EncodeWAV(&model.AudioAsset{}); err == nil {
		t.Error("empty asset encoded")
	}
}
