// Package pipeline turns a remote meeting recording into a
// speaker-attributed transcript: fetch, segment, transcribe per chunk,
// diarize the whole recording, rebase chunk-local timestamps onto the
// global timeline, and align transcript segments with speaker turns.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/scrivener/internal/diarize"
	"github.com/MikeSquared-Agency/scrivener/internal/fetch"
	"github.com/MikeSquared-Agency/scrivener/internal/segment"
	"github.com/MikeSquared-Agency/scrivener/internal/transcribe"
)

// Pipeline orchestrates one end-to-end processing run per call. It holds
// no per-request state; concurrent Process calls are independent.
type Pipeline struct {
	fetcher     fetch.Fetcher
	segmenter   *segment.Segmenter
	transcriber transcribe.Transcriber
	diarizer    diarize.Diarizer
	workers     int
	strategy    AlignStrategy
	logger      *slog.Logger
}

func New(f fetch.Fetcher, seg *segment.Segmenter, tr transcribe.Transcriber, d diarize.Diarizer, workers int, strategy AlignStrategy, logger *slog.Logger) *Pipeline {
	if workers <= 0 {
		workers = 4
	}
	return &Pipeline{
		fetcher:     f,
		segmenter:   seg,
		transcriber: tr,
		diarizer:    d,
		workers:     workers,
		strategy:    strategy,
		logger:      logger,
	}
}

// Process runs the full pipeline for one recording URL. All scratch
// storage for the request lives in one temp dir removed on every exit
// path; chunk files are additionally removed as soon as their
// transcription attempt finishes.
func (p *Pipeline) Process(ctx context.Context, url string) (*MeetingTranscript, error) {
	scratch, err := os.MkdirTemp("", "scrivener_")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	src, err := p.fetcher.Fetch(ctx, url, scratch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreachable, err)
	}

	chunks, err := p.segmenter.Segment(ctx, src.Path, scratch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	// Diarization covers the whole recording in one call and runs
	// alongside the per-chunk transcription fan-out. Its failure is
	// fatal and cancels in-flight transcription.
	var turns []diarize.Turn
	g.Go(func() error {
		t, err := p.diarizer.Diarize(gctx, src.Path)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDiarizationUnavailable, err)
		}
		p.logger.Info("diarization complete", "turns", len(t))
		turns = t
		return nil
	})

	// Per-chunk transcription with bounded concurrency. Results land in
	// a slice indexed by chunk, so completion order never matters. A
	// failed chunk contributes zero segments and is logged, not fatal.
	locals := make([][]transcribe.Segment, len(chunks))
	g.Go(func() error {
		tg, tctx := errgroup.WithContext(gctx)
		tg.SetLimit(p.workers)
		for _, c := range chunks {
			c := c
			tg.Go(func() error {
				defer os.Remove(c.Path)
				segs, err := p.transcriber.Transcribe(tctx, c.Path, src.ContentType)
				if err != nil {
					if tctx.Err() != nil {
						return nil
					}
					p.logger.Warn("chunk transcription failed, dropping chunk",
						"chunk", c.Index, "offset_sec", c.Offset, "error", err)
					return nil
				}
				locals[c.Index] = segs
				return nil
			})
		}
		return tg.Wait()
	})

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	global := Normalize(chunks, locals)
	aligned := Align(global, turns, p.strategy)
	p.logger.Info("alignment complete",
		"transcript_segments", len(global),
		"speaker_turns", len(turns),
		"aligned", len(aligned),
	)

	result := Assemble(aligned)
	p.logger.Info("meeting processed",
		"meeting_id", result.MeetingID,
		"speakers", len(result.Speakers),
		"segments", len(result.Segments),
		"duration_sec", result.Duration,
	)
	return result, nil
}
