package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Source describes a fetched recording sitting in scratch storage.
type Source struct {
	Path        string
	ContentType string
	Size        int64
}

// Fetcher retrieves a remote audio resource into the given scratch directory.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, dir string) (Source, error)
}

const defaultContentType = "audio/mpeg"

// HTTPFetcher streams an audio resource over HTTP GET into a scratch file.
type HTTPFetcher struct {
	client *http.Client
	logger *slog.Logger
}

func NewHTTPFetcher(timeout time.Duration, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL, dir string) (Source, error) {
	f.logger.Info("downloading audio", "url", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Source{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Source{}, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Source{}, fmt.Errorf("download %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}

	out, err := os.Create(scratchName(dir, rawURL))
	if err != nil {
		return Source{}, fmt.Errorf("create scratch file: %w", err)
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		os.Remove(out.Name())
		return Source{}, fmt.Errorf("write scratch file: %w", err)
	}

	f.logger.Info("download complete", "path", out.Name(), "bytes", n, "content_type", contentType)
	return Source{Path: out.Name(), ContentType: contentType, Size: n}, nil
}

// scratchName derives a scratch filename from the URL path, keeping the
// original extension so downstream tools can sniff the container format.
func scratchName(dir, rawURL string) string {
	suffix := ".mp3"
	if u, err := url.Parse(rawURL); err == nil {
		if ext := path.Ext(path.Base(u.Path)); ext != "" {
			suffix = ext
		}
	}
	return filepath.Join(dir, "asr_"+uuid.NewString()+suffix)
}
