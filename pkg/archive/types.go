// Package archive resolves remote archival-media items into ranked, classified
// sets of playable files and ordered track lists.
package archive

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// MediaKind classifies a remote file for playback routing.
type MediaKind string

const (
	// KindAudio marks playable audio files.
	KindAudio MediaKind = "audio"
	// KindVideo marks playable video files.
	KindVideo MediaKind = "video"
	// KindText marks readable documents (PDF, EPUB, plain text).
	KindText MediaKind = "text"
	// KindOther marks everything the classifier could not place.
	KindOther MediaKind = "other"
)

// FileDescriptor is one remote file entry of an archival item.
type FileDescriptor struct {
	Name   string `json:"name"`
	Format string `json:"format,omitempty"`
	Size   int64  `json:"size,omitempty"`
	Source string `json:"source,omitempty"`
	Length string `json:"length,omitempty"`
}

// fileDescriptorWire mirrors FileDescriptor but tolerates the remote API's
// inconsistent serialization: size and length arrive both as JSON numbers and
// as numeric strings.
type fileDescriptorWire struct {
	Name   string          `json:"name"`
	Format string          `json:"format"`
	Size   json.RawMessage `json:"size"`
	Source string          `json:"source"`
	Length json.RawMessage `json:"length"`
}

// UnmarshalJSON decodes a file entry, coercing numeric-as-string sizes in
// place. A size that is neither a number nor a numeric string is left at zero.
func (f *FileDescriptor) UnmarshalJSON(data []byte) error {
	var wire fileDescriptorWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	f.Name = wire.Name
	f.Format = wire.Format
	f.Source = wire.Source
	f.Size = coerceInt64(wire.Size)
	f.Length = coerceString(wire.Length)

	return nil
}

// coerceInt64 reads a raw JSON value as an integer, accepting both numbers
// and numeric strings.
func coerceInt64(raw json.RawMessage) int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}

	text := string(raw)
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = unquoted
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n
	}
	if fl, err := strconv.ParseFloat(text, 64); err == nil {
		return int64(fl)
	}
	return 0
}

// coerceString reads a raw JSON value as a string, accepting bare numbers.
func coerceString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	text := string(raw)
	if unquoted, err := strconv.Unquote(text); err == nil {
		return unquoted
	}
	return text
}

// ItemMetadata is the validated result of one metadata fetch.
type ItemMetadata struct {
	Files    []FileDescriptor
	Dir      string
	Metadata map[string]any
}

// TrackRecord is one audio file's position within an item's ordered track list.
type TrackRecord struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Duration    string `json:"duration"`
	Seconds     int    `json:"seconds"`
	DownloadURL string `json:"download_url"`
}

// ItemInfo carries the item-level descriptive metadata of a resolution.
type ItemInfo struct {
	Title         string        `json:"title"`
	Creator       string        `json:"creator"`
	Date          string        `json:"date"`
	Language      string        `json:"language"`
	Topics        []string      `json:"topics"`
	Collections   []string      `json:"collections"`
	LicenseURL    string        `json:"license_url"`
	TrackCount    int           `json:"track_count"`
	TotalDuration string        `json:"total_duration"`
	Tracks        []TrackRecord `json:"tracks"`
}

// MediaResolution is the assembled output of one resolve call. It is built
// once per call, never cached, and never mutated afterwards.
type MediaResolution struct {
	Provider     string           `json:"provider"`
	Identifier   string           `json:"identifier"`
	BestFileURL  string           `json:"best_file_url,omitempty"`
	BestFileKind MediaKind        `json:"best_file_kind,omitempty"`
	EmbedURL     string           `json:"embed_url"`
	AudioFiles   []FileDescriptor `json:"audio_files"`
	VideoFiles   []FileDescriptor `json:"video_files"`
	TextFiles    []FileDescriptor `json:"text_files"`
	OtherFiles   []FileDescriptor `json:"other_files"`
	Info         ItemInfo         `json:"info"`
}
