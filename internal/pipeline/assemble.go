package pipeline

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// MeetingTranscript is the final artifact for one processed recording.
type MeetingTranscript struct {
	MeetingID      string           `json:"meeting_id"`
	Speakers       []string         `json:"speakers"`
	Segments       []AlignedSegment `json:"segments"`
	FullTranscript string           `json:"full_transcript"`
	Duration       float64          `json:"duration"`
}

// Assemble derives the aggregate response fields from the aligned sequence
// and stamps a fresh meeting id. An empty sequence is a legitimate result:
// empty speakers and transcript, duration 0.
func Assemble(aligned []AlignedSegment) *MeetingTranscript {
	speakerSet := make(map[string]struct{})
	texts := make([]string, 0, len(aligned))
	duration := 0.0

	for _, s := range aligned {
		speakerSet[s.Speaker] = struct{}{}
		if t := strings.TrimSpace(s.Text); t != "" {
			texts = append(texts, t)
		}
		if s.End > duration {
			duration = s.End
		}
	}

	speakers := make([]string, 0, len(speakerSet))
	for spk := range speakerSet {
		speakers = append(speakers, spk)
	}
	sort.Strings(speakers)

	return &MeetingTranscript{
		MeetingID:      uuid.NewString(),
		Speakers:       speakers,
		Segments:       aligned,
		FullTranscript: strings.Join(texts, " "),
		Duration:       duration,
	}
}
