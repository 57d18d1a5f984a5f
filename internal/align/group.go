package align

import "sort"

// Range is a half-open index range [From, To) into a segment list.
type Range struct {
	From int
	To   int
}

// Len returns the number of segments in the range.
func (r Range) Len() int { return r.To - r.From }

// GroupSegments partitions segment start times into one range per
// chapter. A chapter owns [chapterStart, nextChapterStart); a segment
// starting exactly on the boundary belongs to the later chapter. The
// last chapter's range extends to the end of the list, and segments
// that precede the first chapter fall into the first chapter.
//
// chapterStarts is re-sorted ascending before grouping, so callers may
// pass chapters in file order.
func GroupSegments(segmentStarts, chapterStarts []float64) []Range {
	if len(chapterStarts) == 0 {
		return nil
	}

	sorted := make([]float64, len(chapterStarts))
	copy(sorted, chapterStarts)
	sort.Float64s(sorted)

	ranges := make([]Range, len(sorted))
	seg := 0
	for ch := range sorted {
		from := seg
		if ch+1 < len(sorted) {
			next := sorted[ch+1]
			for seg < len(segmentStarts) && segmentStarts[seg] < next {
				seg++
			}
		} else {
			seg = len(segmentStarts)
		}
		ranges[ch] = Range{From: from, To: seg}
	}
	return ranges
}
