package archive

import "testing"

func TestScoreKindOrdering(t *testing.T) {
	// All other factors equal, kind alone must order video > audio > text > other.
	video := Score(FileDescriptor{Name: "a.mkv"})
	audio := Score(FileDescriptor{Name: "a.aac"})
	text := Score(FileDescriptor{Name: "a.pdf"})
	other := Score(FileDescriptor{Name: "a.sha1"})

	if !(video > audio && audio > text && text > other) {
		t.Errorf("kind ordering violated: video=%d audio=%d text=%d other=%d", video, audio, text, other)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		file     FileDescriptor
		expected int
	}{
		{
			name:     "audio with playable extension",
			file:     FileDescriptor{Name: "a.mp3"},
			expected: 20 + 5,
		},
		{
			name:     "original video with size and playable extension",
			file:     FileDescriptor{Name: "b.mp4", Source: "original", Size: 2 * 1024 * 1024},
			expected: 30 + 5 + 2 + 5,
		},
		{
			name:     "provenance is case-insensitive",
			file:     FileDescriptor{Name: "b.mp4", Source: "Original"},
			expected: 30 + 5 + 5,
		},
		{
			name:     "size bonus capped at 15",
			file:     FileDescriptor{Name: "big.wav", Size: 400 * 1024 * 1024},
			expected: 20 + 15 + 5,
		},
		{
			name:     "non-playable container gets no extension bonus",
			file:     FileDescriptor{Name: "show.mkv"},
			expected: 30,
		},
		{
			name:     "other kind penalized",
			file:     FileDescriptor{Name: "index.json"},
			expected: -20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.file); got != tt.expected {
				t.Errorf("Score(%+v) = %d, want %d", tt.file, got, tt.expected)
			}
		})
	}
}

func TestPickBestPlayableFile(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		if got := PickBestPlayableFile(nil); got != nil {
			t.Errorf("expected nil pick, got %+v", got)
		}
	})

	t.Run("no playable files", func(t *testing.T) {
		files := []FileDescriptor{
			{Name: "booklet.pdf"},
			{Name: "checksums.sha1"},
		}
		if got := PickBestPlayableFile(files); got != nil {
			t.Errorf("expected nil pick, got %+v", got)
		}
	})

	t.Run("video outranks audio", func(t *testing.T) {
		files := []FileDescriptor{
			{Name: "a.mp3", Size: 1000000},
			{Name: "b.mp4", Size: 2000000, Source: "original"},
		}
		got := PickBestPlayableFile(files)
		if got == nil || got.Name != "b.mp4" {
			t.Fatalf("expected b.mp4, got %+v", got)
		}
	})

	t.Run("tie keeps first in input order", func(t *testing.T) {
		files := []FileDescriptor{
			{Name: "first.mp3"},
			{Name: "second.mp3"},
		}
		got := PickBestPlayableFile(files)
		if got == nil || got.Name != "first.mp3" {
			t.Fatalf("expected first.mp3, got %+v", got)
		}
	})

	t.Run("pick is a member of the input", func(t *testing.T) {
		files := []FileDescriptor{
			{Name: "x.flac", Size: 90 * 1024 * 1024},
			{Name: "y.ogv"},
			{Name: "notes.txt"},
		}
		got := PickBestPlayableFile(files)
		if got == nil {
			t.Fatal("expected a pick")
		}
		found := false
		for _, f := range files {
			if f.Name == got.Name {
				found = true
			}
		}
		if !found {
			t.Errorf("pick %q is not a member of the input", got.Name)
		}
	})
}

func TestSplitByKind(t *testing.T) {
	files := []FileDescriptor{
		{Name: "01.mp3"},
		{Name: "show.mp4"},
		{Name: "02.flac"},
		{Name: "booklet.pdf"},
		{Name: "checksums.sha1"},
		{Name: "03.ogg"},
	}

	parts := SplitByKind(files)

	total := len(parts.Audio) + len(parts.Video) + len(parts.Text) + len(parts.Other)
	if total != len(files) {
		t.Fatalf("partition lost or duplicated files: got %d entries, want %d", total, len(files))
	}

	wantAudio := []string{"01.mp3", "02.flac", "03.ogg"}
	if len(parts.Audio) != len(wantAudio) {
		t.Fatalf("audio partition = %d files, want %d", len(parts.Audio), len(wantAudio))
	}
	for i, name := range wantAudio {
		if parts.Audio[i].Name != name {
			t.Errorf("audio[%d] = %q, want %q (order must be preserved)", i, parts.Audio[i].Name, name)
		}
	}

	if len(parts.Video) != 1 || parts.Video[0].Name != "show.mp4" {
		t.Errorf("unexpected video partition: %+v", parts.Video)
	}
	if len(parts.Text) != 1 || parts.Text[0].Name != "booklet.pdf" {
		t.Errorf("unexpected text partition: %+v", parts.Text)
	}
	if len(parts.Other) != 1 || parts.Other[0].Name != "checksums.sha1" {
		t.Errorf("unexpected other partition: %+v", parts.Other)
	}
}
