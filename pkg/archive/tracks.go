package archive

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	maxHMSComponents = 3
)

// ParseHMS parses a colon-delimited duration ("1:02:03", "2:03", "45", plain
// decimal seconds) into whole seconds. Any non-numeric component makes the
// whole parse yield zero; this never errors because archival length fields
// are free text.
func ParseHMS(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	parts := strings.Split(raw, ":")
	if len(parts) > maxHMSComponents {
		return 0
	}

	total := 0.0
	for _, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || value < 0 {
			return 0
		}
		total = total*secondsPerMinute + value
	}

	return int(total)
}

// FormatHMS renders whole seconds with zero-padded minutes and seconds,
// including the hours segment only when nonzero: 3723 -> "1:02:03",
// 123 -> "2:03".
func FormatHMS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	hours := seconds / secondsPerHour
	minutes := (seconds % secondsPerHour) / secondsPerMinute
	secs := seconds % secondsPerMinute

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// BuildTrackList converts the audio partition of an item into ordered track
// records with 1-based contiguous ordinals and absolute download URLs. It
// returns the list together with the aggregate duration in seconds.
func BuildTrackList(downloadBase, identifier string, audioFiles []FileDescriptor) ([]TrackRecord, int) {
	tracks := make([]TrackRecord, 0, len(audioFiles))
	totalSeconds := 0

	for i, file := range audioFiles {
		seconds := ParseHMS(file.Length)

		display := file.Length
		if display == "" {
			if seconds > 0 {
				display = FormatHMS(seconds)
			}
		}

		tracks = append(tracks, TrackRecord{
			Index:       i + 1,
			Name:        file.Name,
			Duration:    display,
			Seconds:     seconds,
			DownloadURL: DownloadURL(downloadBase, identifier, file.Name),
		})
		totalSeconds += seconds
	}

	return tracks, totalSeconds
}

// DownloadURL builds the absolute download URL for one file of an item.
func DownloadURL(downloadBase, identifier, fileName string) string {
	return fmt.Sprintf("%s/%s/%s",
		strings.TrimRight(downloadBase, "/"),
		url.PathEscape(identifier),
		url.PathEscape(fileName))
}
