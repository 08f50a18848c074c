package archive

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

// Provider is the tag stamped on every resolution produced by this package.
const Provider = "archive.org"

// ResolveOptions adjusts a single resolve call.
type ResolveOptions struct {
	// StartSeconds, when positive, is floored into the embed URL's start
	// query parameter.
	StartSeconds float64
}

// Resolve is the sole entry point of the resolver stack. It extracts the
// identifier, fetches current remote metadata, classifies and scores the file
// set, and assembles an immutable resolution. Every call re-fetches; nothing
// is cached.
func (c *Client) Resolve(ctx context.Context, input string, opts ResolveOptions) (*MediaResolution, error) {
	identifier := ExtractIdentifier(input)

	meta, err := c.FetchMetadata(ctx, identifier)
	if err != nil {
		return nil, err
	}

	parts := SplitByKind(meta.Files)
	tracks, totalSeconds := BuildTrackList(c.config.DownloadBaseURL, identifier, parts.Audio)

	resolution := &MediaResolution{
		Provider:   Provider,
		Identifier: identifier,
		EmbedURL:   c.embedURL(identifier, opts.StartSeconds),
		AudioFiles: parts.Audio,
		VideoFiles: parts.Video,
		TextFiles:  parts.Text,
		OtherFiles: parts.Other,
		Info: ItemInfo{
			Title:         metaString(meta.Metadata, "title"),
			Creator:       metaString(meta.Metadata, "creator"),
			Date:          metaString(meta.Metadata, "date"),
			Language:      metaString(meta.Metadata, "language"),
			Topics:        metaStrings(meta.Metadata, "subject"),
			Collections:   metaStrings(meta.Metadata, "collection"),
			LicenseURL:    metaString(meta.Metadata, "licenseurl"),
			TrackCount:    len(tracks),
			TotalDuration: FormatHMS(totalSeconds),
			Tracks:        tracks,
		},
	}

	if best := PickBestPlayableFile(meta.Files); best != nil {
		resolution.BestFileURL = DownloadURL(c.config.DownloadBaseURL, identifier, best.Name)
		resolution.BestFileKind = bestFileKind(best.Name)
	}

	c.logger.Info("resolved item",
		zap.String("identifier", identifier),
		zap.String("best_kind", string(resolution.BestFileKind)),
		zap.Int("tracks", len(tracks)))

	return resolution, nil
}

// embedURL builds the always-present embedded-player fallback URL.
func (c *Client) embedURL(identifier string, startSeconds float64) string {
	base := fmt.Sprintf("%s/%s", strings.TrimRight(c.config.EmbedBaseURL, "/"), identifier)
	if startSeconds > 0 {
		return fmt.Sprintf("%s?start=%d", base, int(math.Floor(startSeconds)))
	}
	return base
}

// bestFileKind is a deliberately coarser check than Classify: only audio and
// video files reach the best-file stage, so a video container extension means
// video and anything else means audio.
func bestFileKind(fileName string) MediaKind {
	name := strings.ToLower(fileName)
	for _, ext := range videoExtensions {
		if strings.HasSuffix(name, "."+ext) {
			return KindVideo
		}
	}
	return KindAudio
}

// metaString reads one free-form metadata value as a string. Multi-valued
// fields collapse to their first entry.
func metaString(metadata map[string]any, key string) string {
	switch value := metadata[key].(type) {
	case string:
		return value
	case []any:
		if len(value) > 0 {
			if s, ok := value[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// metaStrings reads one free-form metadata value as a string list.
func metaStrings(metadata map[string]any, key string) []string {
	switch value := metadata[key].(type) {
	case string:
		if value == "" {
			return nil
		}
		return []string{value}
	case []any:
		var out []string
		for _, item := range value {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
