package player

import "testing"

func TestNativeHandle(t *testing.T) {
	h := NewNative("https://example.org/download/foo/a.mp3")

	if h.Kind() != KindNative {
		t.Errorf("kind = %v, want KindNative", h.Kind())
	}
	if h.Source() != "https://example.org/download/foo/a.mp3" {
		t.Errorf("source = %q", h.Source())
	}

	if h.Playing() {
		t.Error("new handle should not be playing")
	}

	h.Play()
	if !h.Playing() {
		t.Error("Play did not take effect")
	}

	h.Seek(42.5)
	if h.CurrentTime() != 42.5 {
		t.Errorf("position = %v, want 42.5", h.CurrentTime())
	}

	h.Seek(-3)
	if h.CurrentTime() != 0 {
		t.Errorf("negative seek should clamp to 0, got %v", h.CurrentTime())
	}

	h.Pause()
	if h.Playing() {
		t.Error("Pause did not take effect")
	}
}

func TestExternalHandle(t *testing.T) {
	h := NewExternal("https://archive.org/embed/foo")

	if h.Kind() != KindExternal {
		t.Errorf("kind = %v, want KindExternal", h.Kind())
	}
	if h.EmbedURL() != "https://archive.org/embed/foo" {
		t.Errorf("embed URL = %q", h.EmbedURL())
	}

	h.Play()
	h.Seek(10)
	if !h.Playing() || h.CurrentTime() != 10 {
		t.Errorf("state = playing=%v position=%v", h.Playing(), h.CurrentTime())
	}
}

// Both variants must satisfy the shared capability set.
var (
	_ Handle = (*Native)(nil)
	_ Handle = (*External)(nil)
)
