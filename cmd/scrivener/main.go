package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/scrivener/internal/api"
	"github.com/MikeSquared-Agency/scrivener/internal/config"
	"github.com/MikeSquared-Agency/scrivener/internal/diarize"
	"github.com/MikeSquared-Agency/scrivener/internal/fetch"
	"github.com/MikeSquared-Agency/scrivener/internal/hermes"
	"github.com/MikeSquared-Agency/scrivener/internal/pipeline"
	"github.com/MikeSquared-Agency/scrivener/internal/segment"
	"github.com/MikeSquared-Agency/scrivener/internal/transcribe"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("scrivener starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pipeline wiring
	fetcher := fetch.NewHTTPFetcher(time.Duration(cfg.FetchTimeoutSec)*time.Second, slog.Default())
	splitter := segment.NewFFmpegSplitter(cfg.FFmpegPath)
	segmenter := segment.New(splitter, segment.Config{
		ChunkDuration: cfg.ChunkDurationSec,
		NumChunks:     cfg.NumChunks,
	}, slog.Default())

	whisper := transcribe.NewClient(transcribe.Config{
		BaseURL: cfg.WhisperURL,
		Model:   cfg.WhisperModel,
		APIKey:  cfg.WhisperAPIKey,
	})
	slog.Info("whisper client ready", "url", cfg.WhisperURL, "model", cfg.WhisperModel)

	pyannote := diarize.NewClient(diarize.Config{BaseURL: cfg.PyannoteURL})
	if !pyannote.IsAvailable(ctx) {
		slog.Warn("pyannote sidecar not reachable at startup", "url", cfg.PyannoteURL)
	}

	pipe := pipeline.New(fetcher, segmenter, whisper, pyannote,
		cfg.TranscribeWorkers, pipeline.FirstMatch, slog.Default())

	// Hermes (optional — scrivener works HTTP-only without the bus)
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		var err error
		hermesClient, err = hermes.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)

		if err := hermesClient.Subscribe(hermes.SubjectRecordingUploaded, handleRecordingUploaded(ctx, pipe, hermesClient)); err != nil {
			slog.Error("failed to subscribe to recording events", "error", err)
			os.Exit(1)
		}

		if err := hermesClient.Publish(hermes.SubjectRegistered, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	} else {
		slog.Warn("NATS not configured — running HTTP-only")
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, pipe)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("scrivener ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("scrivener stopped")
}

// handleRecordingUploaded runs the pipeline for recording events arriving
// over the bus and publishes the resulting transcript (or failure).
func handleRecordingUploaded(ctx context.Context, pipe *pipeline.Pipeline, hc *hermes.Client) func(subject string, data []byte) {
	return func(subject string, data []byte) {
		var evt hermes.RecordingUploaded
		if err := json.Unmarshal(data, &evt); err != nil {
			slog.Error("failed to parse recording event", "error", err)
			return
		}
		if evt.URL == "" {
			slog.Error("recording event missing url", "meeting_ref", evt.MeetingRef)
			return
		}

		slog.Info("processing recording event", "meeting_ref", evt.MeetingRef, "url", evt.URL)

		ready := hermes.TranscriptReady{MeetingRef: evt.MeetingRef}
		result, err := pipe.Process(ctx, evt.URL)
		if err != nil {
			slog.Error("processing failed", "meeting_ref", evt.MeetingRef, "error", err)
			ready.Error = err.Error()
		} else {
			ready.Transcript = result
		}

		if err := hc.Publish(hermes.SubjectTranscriptReady, ready); err != nil {
			slog.Warn("failed to publish transcript", "meeting_ref", evt.MeetingRef, "error", err)
		}
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
