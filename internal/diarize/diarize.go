// Package diarize defines the speaker-diarization collaborator boundary
// and an HTTP client for a pyannote-style sidecar.
package diarize

import "context"

// Turn is one contiguous speaker turn in recording-global time.
type Turn struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Diarizer partitions a full recording into ordered speaker turns.
type Diarizer interface {
	Diarize(ctx context.Context, audioPath string) ([]Turn, error)
}
