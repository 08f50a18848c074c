package notes

import (
	"strings"
	"testing"
	"time"

	"arclip/pkg/archive"
)

func testResolution() *archive.MediaResolution {
	return &archive.MediaResolution{
		Provider:    archive.Provider,
		Identifier:  "gd1977-05-08",
		BestFileURL: "https://archive.org/download/gd1977-05-08/gd1977-05-08d1t01.mp3",
		EmbedURL:    "https://archive.org/embed/gd1977-05-08",
		Info: archive.ItemInfo{
			Title:         "Barton Hall 1977-05-08",
			Creator:       "Grateful Dead",
			Date:          "1977-05-08",
			LicenseURL:    "https://creativecommons.org/licenses/by-nc-sa/4.0/",
			TrackCount:    2,
			TotalDuration: "12:34",
			Tracks: []archive.TrackRecord{
				{Index: 1, Name: "Minglewood Blues", Duration: "5:02", Seconds: 302, DownloadURL: "https://archive.org/download/gd1977-05-08/t01.mp3"},
				{Index: 2, Name: "Loser", DownloadURL: "https://archive.org/download/gd1977-05-08/t02.mp3"},
			},
		},
	}
}

func TestFrontMatter(t *testing.T) {
	got := FrontMatter(testResolution())

	if !strings.HasPrefix(got, "---\n") || !strings.HasSuffix(got, "---\n") {
		t.Fatalf("front matter not fenced: %q", got)
	}
	for _, want := range []string{
		"title: Barton Hall 1977-05-08\n",
		"creator: Grateful Dead\n",
		"identifier: gd1977-05-08\n",
		"provider: archive.org\n",
		"tracks: 2\n",
		"duration: \"12:34\"\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("front matter missing %q:\n%s", want, got)
		}
	}
	// URLs contain colons and must render quoted.
	if !strings.Contains(got, `embed: "https://archive.org/embed/gd1977-05-08"`) {
		t.Errorf("embed URL not quoted:\n%s", got)
	}
}

func TestFrontMatterCollapsesWhitespace(t *testing.T) {
	res := testResolution()
	res.Info.Title = "  Barton   Hall\t1977-05-08 "
	res.Info.Creator = "Grateful\n\nDead"

	got := FrontMatter(res)

	if !strings.Contains(got, "title: Barton Hall 1977-05-08\n") {
		t.Errorf("title not collapsed:\n%s", got)
	}
	if !strings.Contains(got, "creator: Grateful Dead\n") {
		t.Errorf("creator not collapsed:\n%s", got)
	}
}

func TestFrontMatterOmitsEmptyFields(t *testing.T) {
	res := &archive.MediaResolution{
		Provider:   archive.Provider,
		Identifier: "bare",
		EmbedURL:   "https://archive.org/embed/bare",
	}
	got := FrontMatter(res)

	for _, absent := range []string{"title:", "creator:", "license:", "tracks:", "duration:"} {
		if strings.Contains(got, absent) {
			t.Errorf("front matter contains %q for empty field:\n%s", absent, got)
		}
	}
}

func TestNoteFileName(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		identifier string
		want       string
	}{
		{"from title", "Barton Hall 1977-05-08", "gd1977-05-08", "Barton-Hall-1977-05-08.md"},
		{"unsafe characters stripped", `Live: 5/8/77 "Cornell"`, "gd1977-05-08", "Live-5877-Cornell.md"},
		{"identifier fallback", "???", "gd1977-05-08", "gd1977-05-08.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NoteFileName(tt.title, tt.identifier); got != tt.want {
				t.Errorf("NoteFileName(%q, %q) = %q, want %q", tt.title, tt.identifier, got, tt.want)
			}
		})
	}
}

func TestClipFileName(t *testing.T) {
	at := time.Date(2026, 8, 29, 14, 30, 5, 0, time.UTC)

	got := ClipFileName(at, 90, 120, "ogg")
	want := "clip-20260829-143005-90s-120s.ogg"
	if got != want {
		t.Errorf("ClipFileName = %q, want %q", got, want)
	}

	got = ClipFileName(at, 0, 42, "wav")
	want = "clip-20260829-143005-0s-42s.wav"
	if got != want {
		t.Errorf("ClipFileName = %q, want %q", got, want)
	}
}

func TestClipEmbedLink(t *testing.T) {
	got := ClipEmbedLink("clip-20260829-143005-90s-120s.ogg", 90, 120)
	want := "![1:30–2:00](clips/clip-20260829-143005-90s-120s.ogg)"
	if got != want {
		t.Errorf("ClipEmbedLink = %q, want %q", got, want)
	}
}

func TestTrackListSection(t *testing.T) {
	got := TrackListSection(testResolution().Info.Tracks)

	if !strings.HasPrefix(got, "## Tracks\n") {
		t.Fatalf("missing heading:\n%s", got)
	}
	if !strings.Contains(got, "1. [Minglewood Blues](https://archive.org/download/gd1977-05-08/t01.mp3) (5:02)\n") {
		t.Errorf("missing timed track line:\n%s", got)
	}
	if !strings.Contains(got, "2. [Loser](https://archive.org/download/gd1977-05-08/t02.mp3)\n") {
		t.Errorf("missing untimed track line:\n%s", got)
	}

	if TrackListSection(nil) != "" {
		t.Error("TrackListSection(nil) should be empty")
	}
}

func TestDocument(t *testing.T) {
	got := Document(testResolution())

	fence := strings.Index(got[3:], "---")
	if fence < 0 {
		t.Fatalf("document missing closing fence:\n%s", got)
	}
	if !strings.Contains(got, "## Tracks") {
		t.Errorf("document missing track section:\n%s", got)
	}
	if !strings.HasPrefix(got, "---\n") {
		t.Errorf("document does not open with front matter:\n%s", got)
	}
}
