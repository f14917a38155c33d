package segment

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Splitter cuts a source file into at most count chunk files of
// chunkDuration seconds each, written under dir. Chunk files are returned
// in playback order; the caller owns their cleanup.
type Splitter interface {
	Split(ctx context.Context, srcPath, dir string, chunkDuration float64, count int) ([]string, error)
}

// FFmpegSplitter shells out to ffmpeg's segment muxer. Stream copy keeps
// splitting fast and format-agnostic; chunk boundaries land on the nearest
// keyframe, which is close enough for fixed-duration bookkeeping.
type FFmpegSplitter struct {
	ffmpegPath string
}

func NewFFmpegSplitter(ffmpegPath string) *FFmpegSplitter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegSplitter{ffmpegPath: ffmpegPath}
}

func (s *FFmpegSplitter) Split(ctx context.Context, srcPath, dir string, chunkDuration float64, count int) ([]string, error) {
	ext := filepath.Ext(srcPath)
	if ext == "" {
		ext = ".mp3"
	}
	pattern := filepath.Join(dir, "chunk_%03d"+ext)

	cmd := exec.CommandContext(ctx, s.ffmpegPath,
		"-hide_banner", "-nostdin",
		"-i", srcPath,
		"-f", "segment",
		"-segment_time", strconv.FormatFloat(chunkDuration, 'f', -1, 64),
		"-c", "copy",
		pattern,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg segment: %w: %s", err, strings.TrimSpace(string(out)))
	}

	paths, err := filepath.Glob(filepath.Join(dir, "chunk_*"+ext))
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	sort.Strings(paths)
	if count > 0 && len(paths) > count {
		paths = paths[:count]
	}
	return paths, nil
}
