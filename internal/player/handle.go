// Package player models the live media handles the capture engine operates
// on. Two concrete variants exist: a native handle backed by a directly
// playable source, and an external handle wrapping an embedded remote player
// that exposes playback control but no capturable source. Dispatch is by
// explicit kind tag, never by optional-method probing.
package player

import "sync"

// Kind tags the concrete variant behind a Handle.
type Kind int

const (
	// KindNative is a handle over a directly playable media source.
	KindNative Kind = iota
	// KindExternal is a handle over an embedded remote player.
	KindExternal
)

// Handle is the capability set shared by both variants.
type Handle interface {
	// Kind reports the concrete variant.
	Kind() Kind
	// Seek moves the playback position to the given second.
	Seek(seconds float64)
	// CurrentTime reports the playback position in seconds.
	CurrentTime() float64
	// Play starts or resumes playback.
	Play()
	// Pause suspends playback.
	Pause()
	// Playing reports whether the handle is currently playing.
	Playing() bool
}

// Native is a handle over a directly playable media source (local file or
// direct-file URL). It is the only variant the capture engine accepts.
type Native struct {
	mu       sync.Mutex
	source   string
	position float64
	playing  bool
}

// NewNative creates a native handle over a media source URL or path.
func NewNative(source string) *Native {
	return &Native{source: source}
}

// Source returns the media source URL or path backing this handle.
func (n *Native) Source() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.source
}

func (n *Native) Kind() Kind { return KindNative }

func (n *Native) Seek(seconds float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	n.position = seconds
}

func (n *Native) CurrentTime() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.position
}

func (n *Native) Play() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.playing = true
}

func (n *Native) Pause() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.playing = false
}

func (n *Native) Playing() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.playing
}

// External is a handle over an embedded remote player. It tracks position and
// playback state for UI purposes but has no time-accessible media source, so
// capture requests against it are rejected during preparation.
type External struct {
	mu       sync.Mutex
	embedURL string
	position float64
	playing  bool
}

// NewExternal creates an external handle over an embed URL.
func NewExternal(embedURL string) *External {
	return &External{embedURL: embedURL}
}

// EmbedURL returns the embedded-player URL this handle wraps.
func (e *External) EmbedURL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.embedURL
}

func (e *External) Kind() Kind { return KindExternal }

func (e *External) Seek(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	e.position = seconds
}

func (e *External) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

func (e *External) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = true
}

func (e *External) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
}

func (e *External) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}
