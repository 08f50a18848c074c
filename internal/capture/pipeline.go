package capture

import "context"

// SampleSource is the decode branch of a capture session: it seeks into a
// media source and delivers interleaved signed 16-bit PCM.
type SampleSource interface {
	// Start launches the pipeline and reports the PCM stream format.
	Start(ctx context.Context) (Format, error)
	// Read fills buf with interleaved samples, returning io.EOF once the
	// requested range is exhausted.
	Read(buf []int16) (int, error)
	// Close stops the pipeline. It must be safe to call more than once and
	// must unblock a concurrent Read.
	Close() error
}

// StreamEncoder is the best-effort compressed branch. Any failure here
// degrades the capture to the raw branch instead of failing it.
type StreamEncoder interface {
	// Start opens the encoder for the given PCM format.
	Start(format Format) error
	// Write feeds interleaved samples to the encoder.
	Write(samples []int16) error
	// Finish flushes the encoder and returns the compressed payload.
	Finish() ([]byte, error)
	// Abort discards the encoder. Safe to call more than once.
	Abort()
}

// SourceFactory builds the decode branch for one session: a source location
// (always local by decode time), a start offset and a clip duration, both in
// seconds.
type SourceFactory func(location string, startSeconds, durationSeconds float64) SampleSource

// EncoderFactory builds the compressed branch for one session. Returning nil
// disables the branch entirely.
type EncoderFactory func() StreamEncoder
