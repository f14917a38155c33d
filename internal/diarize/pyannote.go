package diarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultPyannoteURL     = "http://pyannote:8388"
	defaultPyannoteTimeout = 10 * time.Minute
)

// Config holds settings for the pyannote diarization client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to a pyannote HTTP sidecar: one POST with the whole
// recording, one ordered list of speaker turns back.
type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultPyannoteURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultPyannoteTimeout
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// IsAvailable probes the sidecar's health endpoint.
func (c *Client) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type sidecarResponse struct {
	Segments []struct {
		Speaker string  `json:"speaker"`
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
	} `json:"segments"`
	NumSpeakers int    `json:"num_speakers"`
	Error       string `json:"error,omitempty"`
}

func (c *Client) Diarize(ctx context.Context, audioPath string) ([]Turn, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("copy recording bytes: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/diarize", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("diarization request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("diarization error %d: %s", resp.StatusCode, string(b))
	}

	var sr sidecarResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode diarization response: %w", err)
	}
	if sr.Error != "" {
		return nil, fmt.Errorf("diarization error: %s", sr.Error)
	}

	turns := make([]Turn, len(sr.Segments))
	for i, s := range sr.Segments {
		turns[i] = Turn{Speaker: s.Speaker, Start: s.Start, End: s.End}
	}
	return turns, nil
}
