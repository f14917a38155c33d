package segment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/youpy/go-wav"
)

// Chunk is one fixed-duration, globally time-offset slice of the recording.
type Chunk struct {
	Index  int
	Offset float64 // seconds from the start of the recording
	Path   string
}

type Config struct {
	// ChunkDuration is the nominal length of each chunk in seconds.
	ChunkDuration float64
	// NumChunks is the chunk count used when the source duration cannot
	// be measured. When the source is a readable WAV the count is derived
	// from the measured duration instead.
	NumChunks int
}

type Segmenter struct {
	splitter Splitter
	cfg      Config
	logger   *slog.Logger
}

func New(splitter Splitter, cfg Config, logger *slog.Logger) *Segmenter {
	if cfg.ChunkDuration <= 0 {
		cfg.ChunkDuration = 20
	}
	if cfg.NumChunks <= 0 {
		cfg.NumChunks = 100
	}
	return &Segmenter{splitter: splitter, cfg: cfg, logger: logger}
}

// ChunkDuration reports the configured per-chunk duration in seconds.
func (s *Segmenter) ChunkDuration() float64 {
	return s.cfg.ChunkDuration
}

// Segment splits the source into ordered chunks, each carrying its
// deterministic global offset (index times chunk duration).
func (s *Segmenter) Segment(ctx context.Context, srcPath, dir string) ([]Chunk, error) {
	count := s.cfg.NumChunks
	if d, err := ProbeWAVDuration(srcPath); err == nil && d > 0 {
		count = int(math.Ceil(d / s.cfg.ChunkDuration))
		s.logger.Info("derived chunk count from source duration",
			"duration_sec", d, "chunk_duration_sec", s.cfg.ChunkDuration, "chunks", count)
	} else {
		s.logger.Info("source duration not measurable, using configured chunk count",
			"chunks", count)
	}

	paths, err := s.splitter.Split(ctx, srcPath, dir, s.cfg.ChunkDuration, count)
	if err != nil {
		return nil, fmt.Errorf("split source: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("split source: no chunks produced")
	}

	chunks := make([]Chunk, len(paths))
	for i, p := range paths {
		chunks[i] = Chunk{Index: i, Offset: float64(i) * s.cfg.ChunkDuration, Path: p}
	}
	s.logger.Info("source split", "chunks", len(chunks))
	return chunks, nil
}

// ProbeWAVDuration reads the source's WAV header and returns its duration
// in seconds. Non-WAV or malformed sources return an error; callers fall
// back to a configured chunk count in that case.
func ProbeWAVDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	d, err := wav.NewReader(f).Duration()
	if err != nil {
		return 0, fmt.Errorf("read wav header: %w", err)
	}
	return d.Seconds(), nil
}
