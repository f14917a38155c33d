package pipeline

import (
	"github.com/MikeSquared-Agency/scrivener/internal/diarize"
	"github.com/MikeSquared-Agency/scrivener/internal/transcribe"
)

// AlignedSegment is one speaker-attributed span of the final transcript.
// Times are inherited from the transcript segment; diarization supplies
// only the label.
type AlignedSegment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

// AlignStrategy selects how a transcript segment picks among multiple
// overlapping speaker turns.
type AlignStrategy int

const (
	// FirstMatch assigns the first overlapping turn in diarization order.
	// A segment that barely touches an early turn can be mislabeled;
	// acceptable for short segments against coarse turns.
	FirstMatch AlignStrategy = iota
	// MaxOverlap assigns the turn with the largest temporal overlap,
	// breaking ties in diarization order.
	MaxOverlap
)

// Align labels each transcript segment with a speaker by temporal overlap
// against the diarization turns. Overlap is boundary-inclusive: segments
// that merely touch count. Transcript segments overlapping no turn are
// dropped. Output preserves transcript order.
func Align(asr []transcribe.Segment, turns []diarize.Turn, strategy AlignStrategy) []AlignedSegment {
	aligned := make([]AlignedSegment, 0, len(asr))
	for _, a := range asr {
		speaker, ok := pickSpeaker(a, turns, strategy)
		if !ok {
			continue
		}
		aligned = append(aligned, AlignedSegment{
			Speaker: speaker,
			Start:   a.Start,
			End:     a.End,
			Text:    a.Text,
		})
	}
	return aligned
}

func pickSpeaker(a transcribe.Segment, turns []diarize.Turn, strategy AlignStrategy) (string, bool) {
	switch strategy {
	case MaxOverlap:
		best := -1
		bestOverlap := -1.0
		for i, d := range turns {
			if !overlaps(a, d) {
				continue
			}
			o := min(a.End, d.End) - max(a.Start, d.Start)
			if o > bestOverlap {
				best, bestOverlap = i, o
			}
		}
		if best < 0 {
			return "", false
		}
		return turns[best].Speaker, true
	default: // FirstMatch
		for _, d := range turns {
			if overlaps(a, d) {
				return d.Speaker, true
			}
		}
		return "", false
	}
}

// overlaps is the boundary-inclusive interval test: touching counts.
func overlaps(a transcribe.Segment, d diarize.Turn) bool {
	return a.Start <= d.End && a.End >= d.Start
}
