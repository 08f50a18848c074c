package archive

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		file     FileDescriptor
		expected MediaKind
	}{
		{
			name:     "mp3 extension",
			file:     FileDescriptor{Name: "track01.mp3"},
			expected: KindAudio,
		},
		{
			name:     "uppercase FLAC extension",
			file:     FileDescriptor{Name: "track01.FLAC"},
			expected: KindAudio,
		},
		{
			name:     "mp4 extension",
			file:     FileDescriptor{Name: "show.mp4"},
			expected: KindVideo,
		},
		{
			name:     "mkv extension",
			file:     FileDescriptor{Name: "show.mkv"},
			expected: KindVideo,
		},
		{
			name:     "pdf extension",
			file:     FileDescriptor{Name: "booklet.pdf"},
			expected: KindText,
		},
		{
			name:     "extension wins over format string",
			file:     FileDescriptor{Name: "clip.webm", Format: "PDF"},
			expected: KindVideo,
		},
		{
			name:     "format fallback vorbis",
			file:     FileDescriptor{Name: "track01", Format: "Ogg Vorbis"},
			expected: KindAudio,
		},
		{
			name:     "format fallback h.264",
			file:     FileDescriptor{Name: "show.bin", Format: "h.264 stream"},
			expected: KindVideo,
		},
		{
			name:     "format fallback epub",
			file:     FileDescriptor{Name: "book", Format: "EPUB"},
			expected: KindText,
		},
		{
			name:     "unclassifiable",
			file:     FileDescriptor{Name: "checksums.sha1", Format: "Metadata"},
			expected: KindOther,
		},
		{
			name:     "empty descriptor",
			file:     FileDescriptor{},
			expected: KindOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.file); got != tt.expected {
				t.Errorf("Classify(%+v) = %q, want %q", tt.file, got, tt.expected)
			}
		})
	}
}

// Classify must be total: every descriptor yields one of the four kinds.
func TestClassifyTotal(t *testing.T) {
	files := []FileDescriptor{
		{},
		{Name: "x"},
		{Name: "a.mp3"},
		{Name: "weird.name.with.dots.xyz", Format: "???"},
		{Format: "text"},
	}

	valid := map[MediaKind]bool{KindAudio: true, KindVideo: true, KindText: true, KindOther: true}
	for _, file := range files {
		if kind := Classify(file); !valid[kind] {
			t.Errorf("Classify(%+v) yielded unknown kind %q", file, kind)
		}
	}
}
