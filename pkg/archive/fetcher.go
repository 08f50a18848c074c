package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultMetadataBaseURL is the metadata endpoint of the public archive.
	DefaultMetadataBaseURL = "https://archive.org/metadata"
	// DefaultDownloadBaseURL is the file download endpoint.
	DefaultDownloadBaseURL = "https://archive.org/download"
	// DefaultEmbedBaseURL is the embedded-player endpoint.
	DefaultEmbedBaseURL = "https://archive.org/embed"
	// DefaultRequestTimeout bounds one metadata request.
	DefaultRequestTimeout = 15 * time.Second
)

// Config holds the remote endpoints and timeouts of a Client.
type Config struct {
	MetadataBaseURL string
	DownloadBaseURL string
	EmbedBaseURL    string
	RequestTimeout  time.Duration
}

// DefaultConfig returns a Config pointed at the public archive endpoints.
func DefaultConfig() Config {
	return Config{
		MetadataBaseURL: DefaultMetadataBaseURL,
		DownloadBaseURL: DefaultDownloadBaseURL,
		EmbedBaseURL:    DefaultEmbedBaseURL,
		RequestTimeout:  DefaultRequestTimeout,
	}
}

// Client resolves archival items against a remote metadata service.
type Client struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

// NewClient creates a resolver client. Zero-valued config fields fall back to
// the public archive defaults; a nil logger disables logging.
func NewClient(config Config, logger *zap.Logger) *Client {
	defaults := DefaultConfig()
	if config.MetadataBaseURL == "" {
		config.MetadataBaseURL = defaults.MetadataBaseURL
	}
	if config.DownloadBaseURL == "" {
		config.DownloadBaseURL = defaults.DownloadBaseURL
	}
	if config.EmbedBaseURL == "" {
		config.EmbedBaseURL = defaults.EmbedBaseURL
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = defaults.RequestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		client: &http.Client{Timeout: config.RequestTimeout},
		logger: logger,
	}
}

// metadataWire is the raw shape of the metadata endpoint response. Files is
// kept raw so a present-but-wrong type can be reported as a format violation
// rather than a decode error.
type metadataWire struct {
	Files    json.RawMessage `json:"files"`
	Dir      string          `json:"dir"`
	Metadata map[string]any  `json:"metadata"`
}

// FetchMetadata retrieves and validates the remote descriptor of one item.
// It is referentially transparent given the remote state: no retries, no
// caching, no side effects beyond the network call.
func (c *Client) FetchMetadata(ctx context.Context, identifier string) (*ItemMetadata, error) {
	endpoint := fmt.Sprintf("%s/%s", c.config.MetadataBaseURL, url.PathEscape(identifier))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Identifier: identifier}
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return nil, &RemoteError{Status: resp.StatusCode}
	}

	var wire metadataWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, &FormatError{Reason: fmt.Sprintf("body is not a metadata object: %v", err)}
	}
	if len(wire.Files) == 0 || string(wire.Files) == "null" {
		return nil, &FormatError{Reason: "missing files array"}
	}

	var files []FileDescriptor
	if err := json.Unmarshal(wire.Files, &files); err != nil {
		return nil, &FormatError{Reason: fmt.Sprintf("files is not an array of file entries: %v", err)}
	}

	metadata := wire.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	c.logger.Debug("fetched item metadata",
		zap.String("identifier", identifier),
		zap.Int("files", len(files)))

	return &ItemMetadata{
		Files:    files,
		Dir:      wire.Dir,
		Metadata: metadata,
	}, nil
}
