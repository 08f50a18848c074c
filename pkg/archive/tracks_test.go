package archive

import "testing"

func TestParseHMS(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "hours minutes seconds", input: "1:02:03", expected: 3723},
		{name: "minutes seconds", input: "02:03", expected: 123},
		{name: "bare seconds", input: "45", expected: 45},
		{name: "decimal seconds", input: "175.23", expected: 175},
		{name: "non-numeric component", input: "bad", expected: 0},
		{name: "mixed non-numeric component", input: "1:xx:03", expected: 0},
		{name: "empty", input: "", expected: 0},
		{name: "too many components", input: "1:2:3:4", expected: 0},
		{name: "negative component", input: "-1:30", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseHMS(tt.input); got != tt.expected {
				t.Errorf("ParseHMS(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatHMS(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int
		expected string
	}{
		{name: "with hours", seconds: 3723, expected: "1:02:03"},
		{name: "without hours", seconds: 123, expected: "2:03"},
		{name: "zero", seconds: 0, expected: "0:00"},
		{name: "sub-minute", seconds: 7, expected: "0:07"},
		{name: "negative clamps to zero", seconds: -5, expected: "0:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatHMS(tt.seconds); got != tt.expected {
				t.Errorf("FormatHMS(%d) = %q, want %q", tt.seconds, got, tt.expected)
			}
		})
	}
}

func TestBuildTrackList(t *testing.T) {
	audio := []FileDescriptor{
		{Name: "01 First Song.mp3", Length: "2:03"},
		{Name: "02.mp3", Length: "175.23"},
		{Name: "03.mp3"},
		{Name: "04.mp3", Length: "garbled"},
	}

	tracks, total := BuildTrackList("https://archive.org/download", "my item", audio)

	if len(tracks) != len(audio) {
		t.Fatalf("got %d tracks, want %d", len(tracks), len(audio))
	}

	for i, track := range tracks {
		if track.Index != i+1 {
			t.Errorf("track %d has ordinal %d, want contiguous 1-based ordinals", i, track.Index)
		}
	}

	if tracks[0].Seconds != 123 || tracks[0].Duration != "2:03" {
		t.Errorf("track 1 = %+v, want 123s / %q", tracks[0], "2:03")
	}
	if tracks[1].Seconds != 175 {
		t.Errorf("track 2 seconds = %d, want 175", tracks[1].Seconds)
	}
	if tracks[2].Seconds != 0 || tracks[2].Duration != "" {
		t.Errorf("track 3 without length should have 0s and empty display, got %+v", tracks[2])
	}
	if tracks[3].Seconds != 0 {
		t.Errorf("unparseable length should yield 0 seconds, got %d", tracks[3].Seconds)
	}

	if total != 123+175 {
		t.Errorf("total seconds = %d, want %d", total, 123+175)
	}

	want := "https://archive.org/download/my%20item/01%20First%20Song.mp3"
	if tracks[0].DownloadURL != want {
		t.Errorf("download URL = %q, want %q", tracks[0].DownloadURL, want)
	}
}
