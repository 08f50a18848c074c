// Package core holds the shared configuration tree of the arclip service.
package core

import (
	"time"
)

type Config struct {
	Archive ArchiveConfig
	Capture CaptureConfig
	Vault   VaultConfig
	Library LibraryConfig
	Server  ServerConfig
	Log     LogConfig
}

type ArchiveConfig struct {
	MetadataBaseURL string
	DownloadBaseURL string
	EmbedBaseURL    string
	RequestTimeout  time.Duration
}

type CaptureConfig struct {
	// MaxClipSeconds caps the span of one clip; longer requests are clamped
	// by pulling the end time backward.
	MaxClipSeconds float64
	// SeekReadyTimeout bounds how long the engine waits for the decode
	// pipeline to deliver its first samples after seeking.
	SeekReadyTimeout time.Duration
	// SettleMargin is added on top of the clip duration before recording is
	// stopped.
	SettleMargin time.Duration
	// FetchTimeout bounds downloading a remote source to a local temp file.
	FetchTimeout time.Duration
	SampleRate   int
	Channels     int
	FFmpegPath   string
	// CompressedFormat is the container tag of the best-effort compressed
	// branch; the raw fallback is always WAV.
	CompressedFormat string
	TempDir          string
}

type VaultConfig struct {
	// Root is the directory clips and notes are persisted under.
	Root string
}

type LibraryConfig struct {
	// Path is the sqlite clip catalog location.
	Path string
}

type ServerConfig struct {
	Host        string
	Port        int
	ReadTimeout time.Duration
	// WriteTimeout must exceed the capture worst case (remote fetch up to
	// CaptureConfig.FetchTimeout, plus MaxClipSeconds of recording and the
	// settle margin), or net/http cuts the clip response mid-capture while
	// the engine finishes and persists a clip the client never sees.
	WriteTimeout time.Duration
	// APIRequestsPerMinute rate-limits the /api endpoints per client; zero
	// disables limiting.
	APIRequestsPerMinute int
}

type LogConfig struct {
	Level  string
	Format string
}

func DefaultConfig() *Config {
	return &Config{
		Archive: ArchiveConfig{
			MetadataBaseURL: "https://archive.org/metadata",
			DownloadBaseURL: "https://archive.org/download",
			EmbedBaseURL:    "https://archive.org/embed",
			RequestTimeout:  15 * time.Second,
		},
		Capture: CaptureConfig{
			MaxClipSeconds:   60,
			SeekReadyTimeout: 8 * time.Second,
			SettleMargin:     300 * time.Millisecond,
			FetchTimeout:     2 * time.Minute,
			SampleRate:       44100,
			Channels:         2,
			FFmpegPath:       "ffmpeg",
			CompressedFormat: "ogg",
		},
		Vault: VaultConfig{
			Root: "./vault",
		},
		Library: LibraryConfig{
			Path: "./clips.db",
		},
		Server: ServerConfig{
			Host:                 "0.0.0.0",
			Port:                 8080,
			ReadTimeout:          10 * time.Second,
			WriteTimeout:         5 * time.Minute,
			APIRequestsPerMinute: 60,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
