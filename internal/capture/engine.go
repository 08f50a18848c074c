// Package capture isolates and re-encodes a time range of a live media
// resource into a standalone audio artifact without interrupting primary
// playback. One session runs at a time through the phases Idle, Preparing,
// Seeking, Recording and Finalizing; every exit path tears the session down
// completely and restores the primary handle before the single-flight guard
// is released.
package capture

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"arclip/internal/core"
	"arclip/internal/player"
)

// Phase is the engine's observable state-machine position.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhasePreparing
	PhaseSeeking
	PhaseRecording
	PhaseFinalizing
)

// readChunkFrames is the per-read frame count of the record loop.
const readChunkFrames = 2048

// RawFormat is the container tag of the guaranteed uncompressed fallback.
const RawFormat = "wav"

// Request asks for one clip of a live media handle. Start and End are in
// seconds and may arrive in either order.
type Request struct {
	Start float64
	End   float64
}

// Result is one captured clip: the payload, its container tag (the
// configured compressed format or "wav"), and the effective clamped range.
type Result struct {
	Data   []byte
	Format string
	Start  float64
	End    float64
}

// Engine runs capture sessions. Only one session may be in flight; a request
// arriving while busy is rejected immediately without mutating any state.
type Engine struct {
	cfg    core.CaptureConfig
	logger *zap.Logger
	clock  Clock

	newSource  SourceFactory
	newEncoder EncoderFactory

	busy  atomic.Bool
	phase atomic.Int32
}

// Option adjusts an Engine at construction time.
type Option func(*Engine)

// WithClock injects a clock, letting tests drive the bounded waits.
func WithClock(clock Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithSourceFactory replaces the ffmpeg decode branch.
func WithSourceFactory(factory SourceFactory) Option {
	return func(e *Engine) { e.newSource = factory }
}

// WithEncoderFactory replaces the ffmpeg compressed branch.
func WithEncoderFactory(factory EncoderFactory) Option {
	return func(e *Engine) { e.newEncoder = factory }
}

// NewEngine creates a capture engine. A nil logger disables logging.
func NewEngine(cfg core.CaptureConfig, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := core.DefaultConfig().Capture
	if cfg.MaxClipSeconds <= 0 {
		cfg.MaxClipSeconds = defaults.MaxClipSeconds
	}
	if cfg.SeekReadyTimeout <= 0 {
		cfg.SeekReadyTimeout = defaults.SeekReadyTimeout
	}
	if cfg.SettleMargin <= 0 {
		cfg.SettleMargin = defaults.SettleMargin
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaults.FetchTimeout
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = defaults.SampleRate
	}
	if cfg.Channels <= 0 {
		cfg.Channels = defaults.Channels
	}
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = defaults.FFmpegPath
	}
	if cfg.CompressedFormat == "" {
		cfg.CompressedFormat = defaults.CompressedFormat
	}

	engine := &Engine{
		cfg:    cfg,
		logger: logger,
		clock:  systemClock{},
	}
	engine.newSource = newFFmpegSource(cfg.FFmpegPath, Format{
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
	})
	engine.newEncoder = newFFmpegEncoder(cfg.FFmpegPath, cfg.CompressedFormat)

	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Phase reports the engine's current state-machine position.
func (e *Engine) Phase() Phase {
	return Phase(e.phase.Load())
}

func (e *Engine) setPhase(p Phase) {
	e.phase.Store(int32(p))
}

// NormalizeRange swaps an inverted pair, clamps negatives to zero, and caps
// the span by pulling the end backward. The start is never extended. Callers
// deriving clip identity (dedup keys, catalog records) must use this effective
// range, not the requested one, so it matches what Capture records.
func NormalizeRange(start, end, maxSpan float64) (float64, float64) {
	if start > end {
		start, end = end, start
	}
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	if end-start > maxSpan {
		end = start + maxSpan
	}
	return start, end
}

// Capture runs one full session against a live media handle and returns the
// captured clip. The primary handle is paused for the session's duration and
// deterministically restored: to the clip end on success, to its previous
// position otherwise, resuming playback only if it was playing before.
func (e *Engine) Capture(ctx context.Context, handle player.Handle, req Request) (*Result, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrCaptureBusy
	}

	sess := newSession(e.logger)

	// Guard released strictly after full teardown.
	defer func() {
		sess.cleanup()
		e.setPhase(PhaseIdle)
		e.busy.Store(false)
	}()

	e.setPhase(PhasePreparing)

	if handle == nil {
		return nil, &MediaPrepError{Reason: "no live media handle"}
	}
	native, ok := handle.(*player.Native)
	if !ok {
		return nil, &MediaPrepError{Reason: "handle exposes no time-accessible media source"}
	}

	start, end := NormalizeRange(req.Start, req.End, e.cfg.MaxClipSeconds)
	duration := end - start

	wasPlaying := native.Playing()
	prevPosition := native.CurrentTime()
	native.Pause()

	success := false
	defer func() {
		if success {
			native.Seek(end)
		} else {
			native.Seek(prevPosition)
		}
		if wasPlaying {
			native.Play()
		}
	}()

	location := native.Source()
	if isRemoteURL(location) {
		local, err := sess.fetchToTemp(ctx, location, e.cfg.TempDir, e.cfg.FetchTimeout)
		if err != nil {
			return nil, &MediaPrepError{Reason: "failed to localize remote source", Err: err}
		}
		location = local
	}

	e.setPhase(PhaseSeeking)

	source := e.newSource(location, start, duration)
	sess.source = source

	format, err := source.Start(ctx)
	if err != nil {
		return nil, &AudioGraphError{Err: err}
	}

	if factory := e.newEncoder; factory != nil {
		if encoder := factory(); encoder != nil {
			if err := encoder.Start(format); err != nil {
				e.logger.Warn("compressed branch unavailable, raw fallback only",
					zap.String("session", sess.id), zap.Error(err))
			} else {
				sess.encoder = encoder
			}
		}
	}

	ready := make(chan error, 1)
	done := make(chan error, 1)
	go e.recordLoop(sess, source, format, ready, done)

	select {
	case rerr := <-ready:
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			<-done
			return nil, &MediaPrepError{Reason: "decode failed before first samples", Err: rerr}
		}
	case <-e.clock.After(e.cfg.SeekReadyTimeout):
		sess.stop()
		<-done
		return nil, &MediaPrepError{Reason: "timed out waiting for seek readiness"}
	case <-ctx.Done():
		sess.stop()
		<-done
		return nil, ctx.Err()
	}

	e.setPhase(PhaseRecording)

	recordBudget := time.Duration(duration*float64(time.Second)) + e.cfg.SettleMargin
	select {
	case rerr := <-done:
		if rerr != nil && !errors.Is(rerr, io.EOF) && !sess.stopped.Load() {
			return nil, &AudioGraphError{Err: rerr}
		}
	case <-e.clock.After(recordBudget):
		sess.stop()
		<-done
	case <-ctx.Done():
		sess.stop()
		<-done
		return nil, ctx.Err()
	}

	e.setPhase(PhaseFinalizing)

	result, err := e.finalize(sess, format, start, end)
	if err != nil {
		return nil, err
	}

	success = true
	e.logger.Info("capture complete",
		zap.String("session", sess.id),
		zap.String("format", result.Format),
		zap.Int("bytes", len(result.Data)),
		zap.Float64("start", start),
		zap.Float64("end", end))
	return result, nil
}

// recordLoop drains the decode branch, feeding both encoders. The first
// delivered chunk doubles as the seek-readiness signal. The compressed branch
// is abandoned on its first write error; the raw branch is the correctness
// guarantee and always runs to the end.
func (e *Engine) recordLoop(sess *session, source SampleSource, format Format, ready, done chan<- error) {
	buf := make([]int16, readChunkFrames*format.Channels)
	first := true

	for {
		n, err := source.Read(buf)
		if n > 0 {
			sess.mono = appendMono(sess.mono, buf[:n], format.Channels)
			if sess.encoder != nil && !sess.encoderDead {
				if werr := sess.encoder.Write(buf[:n]); werr != nil {
					e.logger.Warn("compressed branch failed mid-stream, raw fallback only",
						zap.String("session", sess.id), zap.Error(werr))
					sess.encoder.Abort()
					sess.encoderDead = true
				}
			}
			if first {
				first = false
				ready <- nil
			}
		}
		if err != nil {
			if first {
				ready <- err
			}
			done <- err
			return
		}
	}
}

// finalize prefers a non-empty compressed payload and otherwise synthesizes
// the raw WAV fallback from the accumulated mono samples.
func (e *Engine) finalize(sess *session, format Format, start, end float64) (*Result, error) {
	if sess.encoder != nil && !sess.encoderDead {
		data, err := sess.encoder.Finish()
		switch {
		case err != nil:
			e.logger.Warn("compressed branch failed at finish, raw fallback only",
				zap.String("session", sess.id), zap.Error(err))
		case len(data) > 0:
			return &Result{Data: data, Format: e.cfg.CompressedFormat, Start: start, End: end}, nil
		default:
			e.logger.Warn("compressed branch yielded empty payload, raw fallback only",
				zap.String("session", sess.id))
		}
	}

	if len(sess.mono) == 0 {
		return nil, ErrEmptyCapture
	}

	data := encodeWAV(sess.mono, format.SampleRate, 1)
	return &Result{Data: data, Format: RawFormat, Start: start, End: end}, nil
}

func isRemoteURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
