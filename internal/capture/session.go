package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// session is the ephemeral state of one in-flight capture. It is owned by
// exactly one Capture call and torn down completely before the engine's
// single-flight guard is released, on every exit path.
type session struct {
	id     string
	logger *zap.Logger

	tempFiles    []string
	tempsRemoved bool

	source  SampleSource
	encoder StreamEncoder
	// encoderDead is set by the record loop when the compressed branch
	// failed mid-stream and was abandoned.
	encoderDead bool
	// mono accumulates the down-mixed raw branch.
	mono []int16

	stopped atomic.Bool
}

func newSession(logger *zap.Logger) *session {
	id := uuid.NewString()
	return &session{
		id:     id,
		logger: logger.With(zap.String("session", id)),
	}
}

// fetchToTemp downloads a remote source to a tracked local temp file so the
// decode pipeline never touches the network. Remote decoding of cross-origin
// streams can silently yield empty output; a local copy sidesteps that.
func (s *session) fetchToTemp(ctx context.Context, rawURL, dir string, timeout time.Duration) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to build source request: %w", err)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("source fetch failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("source fetch returned status %d", resp.StatusCode)
	}

	ext := ""
	if parsed, perr := url.Parse(rawURL); perr == nil {
		ext = path.Ext(parsed.Path)
	}

	target := filepath.Join(dir, fmt.Sprintf("arclip-%s%s", s.id, ext))
	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	s.tempFiles = append(s.tempFiles, target)

	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize temp file: %w", err)
	}

	s.logger.Debug("localized remote source", zap.String("path", target))
	return target, nil
}

// stop halts the decode branch. The record loop treats read errors after a
// stop as an intended end of recording, not a failure.
func (s *session) stop() {
	s.stopped.Store(true)
	if s.source != nil {
		_ = s.source.Close()
	}
}

// cleanup tears the session down: decode branch closed, compressed branch
// aborted unless already drained, and every temp file removed exactly once.
func (s *session) cleanup() {
	if s.source != nil {
		_ = s.source.Close()
	}
	if s.encoder != nil {
		s.encoder.Abort()
	}

	if !s.tempsRemoved {
		s.tempsRemoved = true
		for _, file := range s.tempFiles {
			if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
				s.logger.Warn("failed to remove temp file",
					zap.String("path", file), zap.Error(err))
			}
		}
	}
}
