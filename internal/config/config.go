package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      int
	NatsURL   string
	NatsToken string
	LogLevel  string

	WhisperURL    string
	WhisperModel  string
	WhisperAPIKey string
	PyannoteURL   string

	ChunkDurationSec  float64
	NumChunks         int
	TranscribeWorkers int
	FetchTimeoutSec   int
	FFmpegPath        string
}

func Load() Config {
	// Missing .env is fine; real env always wins because godotenv
	// does not override variables that are already set.
	_ = godotenv.Load()

	return Config{
		Port:      envInt("SCRIVENER_PORT", 8760),
		NatsURL:   envStr("NATS_URL", ""),
		NatsToken: envStr("NATS_TOKEN", ""),
		LogLevel:  envStr("LOG_LEVEL", "info"),

		WhisperURL:    envStr("WHISPER_URL", "http://whisper:9000"),
		WhisperModel:  envStr("WHISPER_MODEL", "whisper-1"),
		WhisperAPIKey: envStr("WHISPER_API_KEY", ""),
		PyannoteURL:   envStr("PYANNOTE_URL", "http://pyannote:8388"),

		ChunkDurationSec:  envFloat("CHUNK_DURATION_SEC", 20),
		NumChunks:         envInt("NUM_CHUNKS", 100),
		TranscribeWorkers: envInt("TRANSCRIBE_WORKERS", 4),
		FetchTimeoutSec:   envInt("FETCH_TIMEOUT_SEC", 600),
		FFmpegPath:        envStr("FFMPEG_PATH", "ffmpeg"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
