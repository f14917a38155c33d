package pipeline

import "errors"

// Fatal pipeline errors. Per-chunk transcription failures are not part of
// this taxonomy: they are absorbed by the transcription stage as
// zero-segment results.
var (
	// ErrSourceUnreachable means the recording could not be downloaded.
	ErrSourceUnreachable = errors.New("source unreachable")
	// ErrSourceUnreadable means the recording could not be split into chunks.
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrDiarizationUnavailable means the diarization call failed; without
	// speaker turns there is nothing to align against.
	ErrDiarizationUnavailable = errors.New("diarization unavailable")
)
