package capture

import "encoding/binary"

const (
	wavHeaderSize    = 44
	wavFmtChunkSize  = 16
	wavFormatPCM     = 1
	wavBitsPerSample = 16
)

// encodeWAV wraps 16-bit PCM samples in a minimal uncompressed WAV container.
// The header is synthesized directly from sample count, channel count and
// sample rate; no external encoder is involved, which makes this the
// guaranteed fallback encoding of every capture.
func encodeWAV(samples []int16, sampleRate, channels int) []byte {
	dataSize := len(samples) * 2
	blockAlign := channels * wavBitsPerSample / 8
	byteRate := sampleRate * blockAlign

	out := make([]byte, wavHeaderSize, wavHeaderSize+dataSize)

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(wavHeaderSize-8+dataSize))
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], wavFmtChunkSize)
	binary.LittleEndian.PutUint16(out[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(out[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], wavBitsPerSample)

	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataSize))

	return append(out, samplesToBytes(samples)...)
}
