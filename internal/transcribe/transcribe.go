// Package transcribe defines the speech-to-text collaborator boundary and
// an HTTP client for whisper-compatible transcription servers.
package transcribe

import "context"

// Segment is one utterance span in chunk-local time.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcriber produces ordered, timed text segments for one audio chunk.
// Segment times are local to the chunk; the pipeline rebases them onto the
// recording's global timeline.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, contentType string) ([]Segment, error)
}
