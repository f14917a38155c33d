package pipeline

import (
	"github.com/MikeSquared-Agency/scrivener/internal/segment"
	"github.com/MikeSquared-Agency/scrivener/internal/transcribe"
)

// Normalize rebases each chunk's locally-timed segments onto the recording's
// global timeline by adding the owning chunk's offset, then concatenates in
// chunk-index order. Chunks are contiguous and disjoint, so chunk order alone
// yields global time order; no re-sort is performed.
//
// locals is indexed by chunk index. A nil entry (failed or silent chunk)
// contributes nothing.
func Normalize(chunks []segment.Chunk, locals [][]transcribe.Segment) []transcribe.Segment {
	var global []transcribe.Segment
	for _, c := range chunks {
		if c.Index >= len(locals) {
			continue
		}
		for _, s := range locals[c.Index] {
			global = append(global, transcribe.Segment{
				Start: s.Start + c.Offset,
				End:   s.End + c.Offset,
				Text:  s.Text,
			})
		}
	}
	return global
}
