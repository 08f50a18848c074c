package capture

// Format describes one decoded PCM stream.
type Format struct {
	SampleRate int
	Channels   int
}

// appendMono down-mixes interleaved 16-bit frames to mono by averaging the
// channels of each frame and appends the result to dst. A trailing partial
// frame is dropped.
func appendMono(dst []int16, interleaved []int16, channels int) []int16 {
	if channels <= 1 {
		return append(dst, interleaved...)
	}

	frames := len(interleaved) / channels
	for i := 0; i < frames; i++ {
		sum := 0
		for ch := 0; ch < channels; ch++ {
			sum += int(interleaved[i*channels+ch])
		}
		dst = append(dst, int16(sum/channels))
	}
	return dst
}

// bytesToSamples reinterprets little-endian signed 16-bit PCM bytes as
// samples. A trailing odd byte is dropped.
func bytesToSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(uint16(data[2*i]) | uint16(data[2*i+1])<<8)
	}
	return samples
}

// samplesToBytes serializes samples as little-endian signed 16-bit PCM.
func samplesToBytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		data[2*i] = byte(uint16(s))
		data[2*i+1] = byte(uint16(s) >> 8)
	}
	return data
}
