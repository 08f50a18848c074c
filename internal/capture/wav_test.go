package capture

import (
	"encoding/binary"
	"testing"
)

func TestEncodeWAV(t *testing.T) {
	samples := []int16{0, 1000, -1000, 500}
	out := encodeWAV(samples, 44100, 1)

	if len(out) != wavHeaderSize+len(samples)*2 {
		t.Fatalf("container size = %d, want %d", len(out), wavHeaderSize+len(samples)*2)
	}

	if string(out[0:4]) != "RIFF" || string(out[8:12]) != "WAVE" {
		t.Errorf("missing RIFF/WAVE markers: %q %q", out[0:4], out[8:12])
	}
	if string(out[12:16]) != "fmt " || string(out[36:40]) != "data" {
		t.Errorf("missing fmt/data chunks: %q %q", out[12:16], out[36:40])
	}

	if got := binary.LittleEndian.Uint16(out[20:22]); got != wavFormatPCM {
		t.Errorf("audio format = %d, want PCM", got)
	}
	if got := binary.LittleEndian.Uint16(out[22:24]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(out[24:28]); got != 44100 {
		t.Errorf("sample rate = %d, want 44100", got)
	}
	if got := binary.LittleEndian.Uint32(out[28:32]); got != 44100*2 {
		t.Errorf("byte rate = %d, want %d", got, 44100*2)
	}
	if got := binary.LittleEndian.Uint16(out[34:36]); got != wavBitsPerSample {
		t.Errorf("bits per sample = %d, want 16", got)
	}

	if got := binary.LittleEndian.Uint32(out[40:44]); got != uint32(len(samples)*2) {
		t.Errorf("data chunk size = %d, want %d", got, len(samples)*2)
	}
	if got := binary.LittleEndian.Uint32(out[4:8]); got != uint32(wavHeaderSize-8+len(samples)*2) {
		t.Errorf("riff chunk size = %d", got)
	}

	back := bytesToSamples(out[wavHeaderSize:])
	for i := range samples {
		if back[i] != samples[i] {
			t.Errorf("payload sample %d = %d, want %d", i, back[i], samples[i])
		}
	}
}
