package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/MikeSquared-Agency/scrivener/internal/diarize"
	"github.com/MikeSquared-Agency/scrivener/internal/fetch"
	"github.com/MikeSquared-Agency/scrivener/internal/segment"
	"github.com/MikeSquared-Agency/scrivener/internal/transcribe"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeFetcher drops a stub source file into the scratch dir and remembers
// where, so tests can assert the scratch dir is cleaned up.
type fakeFetcher struct {
	err      error
	lastDir  string
	lastPath string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url, dir string) (fetch.Source, error) {
	if f.err != nil {
		return fetch.Source{}, f.err
	}
	f.lastDir = dir
	f.lastPath = filepath.Join(dir, "asr_source.mp3")
	if err := os.WriteFile(f.lastPath, []byte("stub"), 0o644); err != nil {
		return fetch.Source{}, err
	}
	return fetch.Source{Path: f.lastPath, ContentType: "audio/mpeg", Size: 4}, nil
}

// countSplitter fabricates the requested number of chunk files.
type countSplitter struct {
	err error
}

func (s countSplitter) Split(ctx context.Context, srcPath, dir string, chunkDuration float64, count int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	paths := make([]string, count)
	for i := range paths {
		p := filepath.Join(dir, fmt.Sprintf("chunk_%03d.mp3", i))
		if err := os.WriteFile(p, []byte{}, 0o644); err != nil {
			return nil, err
		}
		paths[i] = p
	}
	return paths, nil
}

// fakeTranscriber serves canned segments keyed by chunk filename.
type fakeTranscriber struct {
	mu      sync.Mutex
	results map[string][]transcribe.Segment
	fails   map[string]bool
	calls   []string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath, contentType string) ([]transcribe.Segment, error) {
	name := filepath.Base(audioPath)
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if f.fails[name] {
		return nil, fmt.Errorf("whisper error 500: overloaded")
	}
	return f.results[name], nil
}

type fakeDiarizer struct {
	turns []diarize.Turn
	err   error
	block bool
}

func (f *fakeDiarizer) Diarize(ctx context.Context, audioPath string) ([]diarize.Turn, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.turns, nil
}

func newTestPipeline(f fetch.Fetcher, sp segment.Splitter, tr transcribe.Transcriber, d diarize.Diarizer, numChunks int) *Pipeline {
	seg := segment.New(sp, segment.Config{ChunkDuration: 20, NumChunks: numChunks}, discardLogger())
	return New(f, seg, tr, d, 2, FirstMatch, discardLogger())
}

func TestProcess_TwoChunksOneSpeaker(t *testing.T) {
	fetcher := &fakeFetcher{}
	tr := &fakeTranscriber{
		results: map[string][]transcribe.Segment{
			"chunk_000.mp3": {{Start: 0, End: 5, Text: "hello"}},
			"chunk_001.mp3": {{Start: 2, End: 6, Text: "world"}},
		},
	}
	d := &fakeDiarizer{turns: []diarize.Turn{
		{Speaker: "s1", Start: 0, End: 25},
		{Speaker: "s2", Start: 25, End: 40},
	}}

	p := newTestPipeline(fetcher, countSplitter{}, tr, d, 2)

	result, err := p.Process(context.Background(), "http://example.com/meeting.mp3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Segments) != 2 {
		t.Fatalf("expected 2 aligned segments, got %d", len(result.Segments))
	}
	for i, s := range result.Segments {
		if s.Speaker != "s1" {
			t.Errorf("segment %d: expected speaker s1, got %q", i, s.Speaker)
		}
	}
	if result.Segments[0].Start != 0 || result.Segments[0].End != 5 {
		t.Errorf("unexpected segment 0 bounds: %+v", result.Segments[0])
	}
	if result.Segments[1].Start != 22 || result.Segments[1].End != 26 {
		t.Errorf("unexpected segment 1 bounds: %+v", result.Segments[1])
	}
	if len(result.Speakers) != 1 || result.Speakers[0] != "s1" {
		t.Errorf("expected speakers [s1], got %v", result.Speakers)
	}
	if result.FullTranscript != "hello world" {
		t.Errorf("expected full transcript, got %q", result.FullTranscript)
	}
	if result.Duration != 26 {
		t.Errorf("expected duration 26, got %g", result.Duration)
	}

	if _, err := os.Stat(fetcher.lastDir); !os.IsNotExist(err) {
		t.Errorf("expected scratch dir %s to be removed", fetcher.lastDir)
	}
}

func TestProcess_NoOverlapYieldsEmptyResult(t *testing.T) {
	tr := &fakeTranscriber{
		results: map[string][]transcribe.Segment{
			"chunk_000.mp3": {{Start: 0, End: 5, Text: "hello"}},
		},
	}
	d := &fakeDiarizer{turns: []diarize.Turn{
		{Speaker: "s1", Start: 500, End: 600},
	}}

	p := newTestPipeline(&fakeFetcher{}, countSplitter{}, tr, d, 1)

	result, err := p.Process(context.Background(), "http://example.com/meeting.mp3")
	if err != nil {
		t.Fatalf("empty alignment must not be an error, got %v", err)
	}
	if len(result.Segments) != 0 || len(result.Speakers) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if result.FullTranscript != "" || result.Duration != 0 {
		t.Errorf("expected empty transcript and zero duration, got %+v", result)
	}
}

func TestProcess_FailedChunkIsDropped(t *testing.T) {
	tr := &fakeTranscriber{
		results: map[string][]transcribe.Segment{
			"chunk_001.mp3": {{Start: 2, End: 6, Text: "world"}},
		},
		fails: map[string]bool{"chunk_000.mp3": true},
	}
	d := &fakeDiarizer{turns: []diarize.Turn{
		{Speaker: "s1", Start: 0, End: 100},
	}}

	p := newTestPipeline(&fakeFetcher{}, countSplitter{}, tr, d, 2)

	result, err := p.Process(context.Background(), "http://example.com/meeting.mp3")
	if err != nil {
		t.Fatalf("per-chunk failure must not abort the pipeline, got %v", err)
	}
	if len(result.Segments) != 1 {
		t.Fatalf("expected only the surviving chunk's segment, got %d", len(result.Segments))
	}
	if result.Segments[0].Text != "world" || result.Segments[0].Start != 22 {
		t.Errorf("unexpected surviving segment: %+v", result.Segments[0])
	}
	if len(tr.calls) != 2 {
		t.Errorf("expected both chunks attempted, got calls %v", tr.calls)
	}
}

func TestProcess_FetchFailureIsSourceUnreachable(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("connection refused")}
	p := newTestPipeline(fetcher, countSplitter{}, &fakeTranscriber{}, &fakeDiarizer{}, 1)

	_, err := p.Process(context.Background(), "http://example.com/meeting.mp3")
	if !errors.Is(err, ErrSourceUnreachable) {
		t.Fatalf("expected ErrSourceUnreachable, got %v", err)
	}
}

func TestProcess_SplitFailureIsSourceUnreadable(t *testing.T) {
	p := newTestPipeline(&fakeFetcher{}, countSplitter{err: fmt.Errorf("bad container")}, &fakeTranscriber{}, &fakeDiarizer{}, 1)

	_, err := p.Process(context.Background(), "http://example.com/meeting.mp3")
	if !errors.Is(err, ErrSourceUnreadable) {
		t.Fatalf("expected ErrSourceUnreadable, got %v", err)
	}
}

func TestProcess_DiarizationFailureIsFatal(t *testing.T) {
	fetcher := &fakeFetcher{}
	tr := &fakeTranscriber{
		results: map[string][]transcribe.Segment{
			"chunk_000.mp3": {{Start: 0, End: 5, Text: "hello"}},
		},
	}
	d := &fakeDiarizer{err: fmt.Errorf("sidecar down")}

	p := newTestPipeline(fetcher, countSplitter{}, tr, d, 1)

	_, err := p.Process(context.Background(), "http://example.com/meeting.mp3")
	if !errors.Is(err, ErrDiarizationUnavailable) {
		t.Fatalf("expected ErrDiarizationUnavailable, got %v", err)
	}

	if _, statErr := os.Stat(fetcher.lastDir); !os.IsNotExist(statErr) {
		t.Errorf("expected scratch dir removed after fatal error")
	}
}

func TestProcess_CancellationWins(t *testing.T) {
	tr := &fakeTranscriber{
		results: map[string][]transcribe.Segment{
			"chunk_000.mp3": {{Start: 0, End: 5, Text: "hello"}},
		},
	}
	d := &fakeDiarizer{block: true}

	p := newTestPipeline(&fakeFetcher{}, countSplitter{}, tr, d, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var err error
	go func() {
		_, err = p.Process(ctx, "http://example.com/meeting.mp3")
		close(done)
	}()
	cancel()
	<-done

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
