package archive

import (
	"path"
	"strings"
)

// Extension groups checked in order: audio wins over video wins over text.
var (
	audioExtensions = []string{"mp3", "ogg", "oga", "flac", "wav", "m4a", "aac", "aiff"}
	videoExtensions = []string{"mp4", "m4v", "webm", "ogv", "mpeg", "mpg", "mov", "mkv"}
	textExtensions  = []string{"pdf", "epub", "txt"}
)

// Format-string keywords used only when the filename extension is not
// recognized. Archival format strings are free text and unreliable alone,
// while filenames are reliable when present.
var formatKeywords = []struct {
	keyword string
	kind    MediaKind
}{
	{"vorbis", KindAudio},
	{"flac", KindAudio},
	{"mp3", KindAudio},
	{"wave", KindAudio},
	{"aiff", KindAudio},
	{"audio", KindAudio},
	{"mpeg4", KindVideo},
	{"h.264", KindVideo},
	{"xvid", KindVideo},
	{"matroska", KindVideo},
	{"video", KindVideo},
	{"pdf", KindText},
	{"epub", KindText},
	{"text", KindText},
}

// Classify maps a file descriptor to a media kind. The filename extension is
// authoritative when it matches a known group; otherwise the free-text format
// string is scanned for codec and container keywords. Files matching neither
// tier are KindOther. The function is pure and total.
func Classify(file FileDescriptor) MediaKind {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(file.Name), "."))
	if ext != "" {
		switch {
		case containsString(audioExtensions, ext):
			return KindAudio
		case containsString(videoExtensions, ext):
			return KindVideo
		case containsString(textExtensions, ext):
			return KindText
		}
	}

	format := strings.ToLower(file.Format)
	if format != "" {
		for _, entry := range formatKeywords {
			if strings.Contains(format, entry.keyword) {
				return entry.kind
			}
		}
	}

	return KindOther
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
