package processors

import (
	"fmt"
	"sort"
	"strings"

	"videoChat/core"
)

// SegmentSpan is one segment's character range inside the space-joined
// transcript. The range is inclusive on both ends: TextEnd is the offset of
// the joining space, so the separator between two segments belongs to the
// segment on its left.
type SegmentSpan struct {
	TextStart int
	TextEnd   int
	Ref       core.TimestampRef
}

// SegmentSpans walks the segments in order and assigns each character offset
// of the concatenated transcript to its segment. The cursor advances by
// len(text)+1 to account for the joining space.
func SegmentSpans(segments []core.Segment) []SegmentSpan {
	spans := make([]SegmentSpan, 0, len(segments))
	pos := 0
	for _, seg := range segments {
		end := pos + len(seg.Text)
		spans = append(spans, SegmentSpan{
			TextStart: pos,
			TextEnd:   end,
			Ref: core.TimestampRef{
				Start:       seg.Start,
				End:         seg.End(),
				TextSegment: seg.Text,
			},
		})
		pos = end + 1
	}
	return spans
}

// SegmentAt resolves a character offset to its constructing segment.
func SegmentAt(spans []SegmentSpan, pos int) (core.TimestampRef, bool) {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].TextEnd >= pos })
	if i < len(spans) && spans[i].TextStart <= pos && pos <= spans[i].TextEnd {
		return spans[i].Ref, true
	}
	return core.TimestampRef{}, false
}

// Chunker splits a transcript into overlapping chunks and attaches timestamp
// provenance by positional correlation.
type Chunker struct {
	ChunkSize    int
	ChunkOverlap int
}

func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}
}

// ChunkTranscript splits transcript and annotates each chunk with the
// segments it overlaps. A chunk is located by the first occurrence of its
// text in transcript; if the same text recurs, timestamps come from the first
// occurrence. Translation can shift text away from the original segment
// positions entirely, in which case a chunk gets empty timestamps and zero
// start/end times. Both are deliberate best-effort behavior, not defects.
func (c *Chunker) ChunkTranscript(transcript string, segments []core.Segment) []core.Chunk {
	fmt.Println("Splitting transcript into chunks with timestamps...")

	spans := SegmentSpans(segments)
	pieces := SplitText(transcript, c.ChunkSize, c.ChunkOverlap)

	chunks := make([]core.Chunk, 0, len(pieces))
	for _, text := range pieces {
		chunk := core.Chunk{Text: text}

		if start := strings.Index(transcript, text); start != -1 {
			end := start + len(text)
			refs := overlappingRefs(spans, start, end)
			chunk.Timestamps = refs
			if len(refs) > 0 {
				chunk.StartTime = refs[0].Start
				chunk.EndTime = refs[len(refs)-1].End
			}
		}
		chunks = append(chunks, chunk)
	}

	fmt.Printf("Created %d chunks with timestamp metadata\n", len(chunks))
	return chunks
}

// overlappingRefs collects the segments whose span intersects the half-open
// chunk range [start, end), deduplicated by (start, end) time interval and
// sorted ascending by start time.
func overlappingRefs(spans []SegmentSpan, start, end int) []core.TimestampRef {
	type key struct{ start, end float64 }
	seen := make(map[key]struct{})
	var refs []core.TimestampRef
	for _, sp := range spans {
		if sp.TextEnd < start || sp.TextStart >= end {
			continue
		}
		k := key{sp.Ref.Start, sp.Ref.End}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		refs = append(refs, sp.Ref)
	}
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Start < refs[j].Start })
	return refs
}
