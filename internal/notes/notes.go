// Package notes generates the document artifacts surrounding resolutions and
// captured clips: front matter, clip filenames and embed links. Content is
// written exactly as resolved; no further validation happens here.
package notes

import (
	"fmt"
	"strings"
	"time"

	"arclip/internal/textutil"
	"arclip/pkg/archive"
)

const clipTimestampLayout = "20060102-150405"

// FrontMatter renders the note front-matter block for one resolution.
func FrontMatter(res *archive.MediaResolution) string {
	var b strings.Builder

	b.WriteString("---\n")
	writeField(&b, "title", textutil.CollapseWhitespace(res.Info.Title))
	writeField(&b, "creator", textutil.CollapseWhitespace(res.Info.Creator))
	writeField(&b, "date", res.Info.Date)
	writeField(&b, "provider", res.Provider)
	writeField(&b, "identifier", res.Identifier)
	writeField(&b, "url", res.BestFileURL)
	writeField(&b, "embed", res.EmbedURL)
	writeField(&b, "license", res.Info.LicenseURL)
	if res.Info.TrackCount > 0 {
		b.WriteString(fmt.Sprintf("tracks: %d\n", res.Info.TrackCount))
		writeField(&b, "duration", res.Info.TotalDuration)
	}
	b.WriteString("---\n")

	return b.String()
}

func writeField(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	if strings.ContainsAny(value, ":#") {
		value = fmt.Sprintf("%q", value)
	}
	b.WriteString(fmt.Sprintf("%s: %s\n", key, value))
}

// NoteFileName derives the note document name from an item title, falling
// back to the identifier when the title sanitizes away entirely.
func NoteFileName(title, identifier string) string {
	stem := textutil.SanitizeFileName(title)
	if stem == "" {
		stem = textutil.SanitizeFileName(identifier)
	}
	return stem + ".md"
}

// ClipFileName encodes the capture moment and the integer start/end seconds
// into the persisted clip's name.
func ClipFileName(capturedAt time.Time, startSeconds, endSeconds int, format string) string {
	return fmt.Sprintf("clip-%s-%ds-%ds.%s",
		capturedAt.Format(clipTimestampLayout), startSeconds, endSeconds, format)
}

// ClipEmbedLink renders the markdown embed handed back to the editing
// collaborator after a capture.
func ClipEmbedLink(fileName string, startSeconds, endSeconds int) string {
	return fmt.Sprintf("![%s–%s](clips/%s)",
		archive.FormatHMS(startSeconds), archive.FormatHMS(endSeconds), fileName)
}

// TrackListSection renders the ordered track list as a markdown section.
func TrackListSection(tracks []archive.TrackRecord) string {
	if len(tracks) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Tracks\n\n")
	for _, track := range tracks {
		if track.Duration != "" {
			b.WriteString(fmt.Sprintf("%d. [%s](%s) (%s)\n",
				track.Index, track.Name, track.DownloadURL, track.Duration))
		} else {
			b.WriteString(fmt.Sprintf("%d. [%s](%s)\n",
				track.Index, track.Name, track.DownloadURL))
		}
	}
	return b.String()
}

// Document assembles the full note for one resolution.
func Document(res *archive.MediaResolution) string {
	var b strings.Builder
	b.WriteString(FrontMatter(res))
	b.WriteString("\n")
	if section := TrackListSection(res.Info.Tracks); section != "" {
		b.WriteString(section)
	}
	return b.String()
}
