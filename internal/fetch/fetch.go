package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "tutorbill/internal/errors"
	appLog "tutorbill/internal/log"
	"tutorbill/internal/metrics"
)

// cacheEntry holds HTTP cache metadata for a single document URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Client fetches external documents (calendar feed, roster) with
// conditional-GET caching (ETag / Last-Modified) backed by disk.
//
// A network failure or non-OK status is always surfaced as a
// NETWORK_ERROR, never silently served from cache: a billing run must
// abort rather than compute from possibly-stale data.
type Client struct {
	client   *http.Client
	cacheDir string
}

// NewClient creates a document fetch client. cacheDir is the base
// directory for per-URL cache subdirectories.
func NewClient(cacheDir string) *Client {
	if cacheDir == "" {
		// Fallback for development runs without explicit configuration.
		cacheDir = "./var/feed-cache"
	}
	return &Client{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		cacheDir: cacheDir,
	}
}

// Get fetches the document at url, honoring ETag and Last-Modified from
// the on-disk cache. One fetch per call; the result is the full body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, apperrors.NewInvalidArgumentError("document URL is empty")
	}

	cachePath := c.cachePathForURL(url)
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return nil, apperrors.NewInternalError("creating cache directory", err)
	}

	meta, _ := c.loadCacheMeta(cachePath)
	cachedBody, _ := c.loadCacheBody(cachePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewNetworkError("building request for "+RedactURL(url), err)
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	appLog.Debug("fetch start", "url", RedactURL(url))

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.FetchesTotal.WithLabelValues("error").Inc()
		return nil, apperrors.NewNetworkError("fetching "+RedactURL(url), err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			metrics.FetchesTotal.WithLabelValues("error").Inc()
			return nil, apperrors.NewNetworkError("reading "+RedactURL(url), readErr)
		}

		newMeta := cacheEntry{
			URL:          url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := c.saveCache(cachePath, newMeta, body); err != nil {
			// Cache persistence is best-effort; the fresh body is valid.
			appLog.Error("cache save failed", err, "url", RedactURL(url))
		}

		metrics.FetchesTotal.WithLabelValues("ok").Inc()
		appLog.Debug("fetch success", "url", RedactURL(url), "bytes", len(body))
		return body, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			metrics.FetchesTotal.WithLabelValues("error").Inc()
			return nil, apperrors.NewNetworkError("fetching "+RedactURL(url),
				errors.New("304 Not Modified but no cached body available"))
		}
		metrics.FetchesTotal.WithLabelValues("not_modified").Inc()
		appLog.Debug("fetch not modified; using cache", "url", RedactURL(url))
		return cachedBody, nil

	default:
		metrics.FetchesTotal.WithLabelValues("error").Inc()
		return nil, apperrors.NewNetworkError("fetching "+RedactURL(url),
			fmt.Errorf("unexpected status %s", resp.Status))
	}
}

func (c *Client) cachePathForURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.cacheDir, hex.EncodeToString(sum[:8]))
}

func (c *Client) loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (c *Client) loadCacheBody(cachePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(cachePath, "body"))
}

func (c *Client) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Write body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body"), body, 0o600); err != nil {
		return err
	}

	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}

// RedactURL hides the path and query of a document URL for logging.
// Feed and roster URLs routinely embed access tokens.
func RedactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := strings.Index(u, "://")
	if i < 0 {
		return "...(redacted)"
	}
	rest := u[i+3:]
	j := strings.IndexByte(rest, '/')
	if j < 0 {
		return u + redactedSuffix
	}
	return u[:i+3+j] + redactedSuffix
}
