package capture

import (
	"errors"
	"fmt"
)

// ErrCaptureBusy is returned when a capture request arrives while another
// session is in flight. The request is refused without touching any state.
var ErrCaptureBusy = errors.New("capture already in progress")

// ErrEmptyCapture is returned when a capture completed but both encoder
// branches yielded zero bytes. This is a distinct outcome, never silently
// treated as success.
var ErrEmptyCapture = errors.New("capture yielded no audio data")

// MediaPrepError reports a failure setting up the capture source: a handle
// without a capturable source, a failed source fetch, or a seek that never
// became ready.
type MediaPrepError struct {
	Reason string
	Err    error
}

func (e *MediaPrepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("media preparation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("media preparation failed: %s", e.Reason)
}

func (e *MediaPrepError) Unwrap() error { return e.Err }

// AudioGraphError reports that the sample pipeline could not be constructed
// or broke mid-stream.
type AudioGraphError struct {
	Err error
}

func (e *AudioGraphError) Error() string {
	return fmt.Sprintf("audio pipeline failed: %v", e.Err)
}

func (e *AudioGraphError) Unwrap() error { return e.Err }
