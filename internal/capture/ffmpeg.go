package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// ffmpegSource decodes a time range of a local media file to interleaved
// s16le PCM over a pipe. The output rate and channel layout are forced so the
// stream format is known up front.
type ffmpegSource struct {
	ffmpegPath string
	location   string
	start      float64
	duration   float64
	format     Format

	cmd       *exec.Cmd
	stdout    io.ReadCloser
	stderr    bytes.Buffer
	pending   []byte
	closeOnce sync.Once
	closeErr  error
}

func newFFmpegSource(ffmpegPath string, format Format) SourceFactory {
	return func(location string, startSeconds, durationSeconds float64) SampleSource {
		return &ffmpegSource{
			ffmpegPath: ffmpegPath,
			location:   location,
			start:      startSeconds,
			duration:   durationSeconds,
			format:     format,
		}
	}
}

func (s *ffmpegSource) Start(ctx context.Context) (Format, error) {
	args := []string{
		"-nostats", "-hide_banner", "-loglevel", "error",
		"-ss", fmt.Sprintf("%.3f", s.start),
		"-t", fmt.Sprintf("%.3f", s.duration),
		"-i", s.location,
		"-vn",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", s.format.SampleRate),
		"-ac", fmt.Sprintf("%d", s.format.Channels),
		"pipe:1",
	}

	s.cmd = exec.CommandContext(ctx, s.ffmpegPath, args...)
	s.cmd.Stderr = &s.stderr

	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return Format{}, fmt.Errorf("failed to open decode pipe: %w", err)
	}
	s.stdout = stdout

	if err := s.cmd.Start(); err != nil {
		return Format{}, fmt.Errorf("failed to start decoder: %w", err)
	}

	return s.format, nil
}

func (s *ffmpegSource) Read(buf []int16) (int, error) {
	raw := make([]byte, len(s.pending)+len(buf)*2)
	copy(raw, s.pending)

	n, err := s.stdout.Read(raw[len(s.pending):])
	total := len(s.pending) + n
	s.pending = nil

	samples := total / 2
	for i := 0; i < samples; i++ {
		buf[i] = int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
	}
	if total%2 == 1 {
		s.pending = []byte{raw[total-1]}
	}

	if err != nil {
		if err == io.EOF {
			if werr := s.cmd.Wait(); werr != nil {
				detail := strings.TrimSpace(s.stderr.String())
				if detail != "" {
					return samples, fmt.Errorf("decoder failed: %s", detail)
				}
				return samples, fmt.Errorf("decoder failed: %w", werr)
			}
			return samples, io.EOF
		}
		return samples, err
	}
	return samples, nil
}

func (s *ffmpegSource) Close() error {
	s.closeOnce.Do(func() {
		if s.stdout != nil {
			s.closeErr = s.stdout.Close()
		}
		if s.cmd != nil && s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
			_ = s.cmd.Wait()
		}
	})
	return s.closeErr
}

// ffmpegEncoder compresses a PCM stream into an Ogg payload. It is strictly
// best-effort: the engine discards it on any error and keeps the raw branch.
type ffmpegEncoder struct {
	ffmpegPath string
	formatName string

	cmd      *exec.Cmd
	stdin    io.WriteCloser
	out      bytes.Buffer
	stderr   bytes.Buffer
	finished bool
	aborted  bool
	mu       sync.Mutex
}

func newFFmpegEncoder(ffmpegPath, formatName string) EncoderFactory {
	return func() StreamEncoder {
		return &ffmpegEncoder{ffmpegPath: ffmpegPath, formatName: formatName}
	}
}

// codecForFormat maps a container tag to the encoder ffmpeg should use.
func codecForFormat(formatName string) string {
	switch formatName {
	case "opus":
		return "libopus"
	default:
		return "libvorbis"
	}
}

func (e *ffmpegEncoder) Start(format Format) error {
	if _, err := exec.LookPath(e.ffmpegPath); err != nil {
		return fmt.Errorf("encoder binary unavailable: %w", err)
	}

	args := []string{
		"-nostats", "-hide_banner", "-loglevel", "error",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", format.SampleRate),
		"-ac", fmt.Sprintf("%d", format.Channels),
		"-i", "pipe:0",
		"-vn",
		"-c:a", codecForFormat(e.formatName),
		"-f", "ogg",
		"pipe:1",
	}

	e.cmd = exec.Command(e.ffmpegPath, args...)
	e.cmd.Stdout = &e.out
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open encode pipe: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start encoder: %w", err)
	}
	return nil
}

func (e *ffmpegEncoder) Write(samples []int16) error {
	_, err := e.stdin.Write(samplesToBytes(samples))
	return err
}

func (e *ffmpegEncoder) Finish() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.aborted {
		return nil, fmt.Errorf("encoder was aborted")
	}
	if e.finished {
		return e.out.Bytes(), nil
	}
	e.finished = true

	_ = e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		detail := strings.TrimSpace(e.stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("encoder failed: %s", detail)
		}
		return nil, fmt.Errorf("encoder failed: %w", err)
	}
	return e.out.Bytes(), nil
}

func (e *ffmpegEncoder) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finished || e.aborted {
		return
	}
	e.aborted = true

	if e.stdin != nil {
		_ = e.stdin.Close()
	}
	if e.cmd != nil && e.cmd.Process != nil {
		_ = e.cmd.Process.Kill()
		_ = e.cmd.Wait()
	}
}
