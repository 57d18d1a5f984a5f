package align

import "testing"

func TestActiveIndexFloorLookup(t *testing.T) {
	starts := []float64{0, 10, 20, 30}

	cases := []struct {
		t    float64
		want int
	}{
		{0, 0},
		{5, 0},
		{10, 1},
		{10.5, 1},
		{19.999, 1},
		{20, 2},
		{30, 3},
		{1000, 3},
	}
	for _, c := range cases {
		if got := ActiveIndex(starts, c.t); got != c.want {
			t.Errorf("ActiveIndex(%v) = %d, want %d", c.t, got, c.want)
		}
	}
}

// The property from the floor-lookup contract: entry i is active for
// all T in [t_i, t_{i+1}), and entry n for all T >= t_n.
func TestActiveIndexIntervalProperty(t *testing.T) {
	starts := []float64{3.5, 7.25, 11, 42.5}
	for i := range starts {
		lo := starts[i]
		hi := lo + 1e9
		if i+1 < len(starts) {
			hi = starts[i+1]
		}
		for _, tt := range []float64{lo, lo + (hi-lo)/2, hi - 1e-6} {
			if got := ActiveIndex(starts, tt); got != i {
				t.Errorf("ActiveIndex(%v) = %d, want %d", tt, got, i)
			}
		}
	}
}

func TestActiveIndexBeforeFirstEntry(t *testing.T) {
	// Unified policy: before the first start time the first entry is
	// active, not "no selection".
	if got := ActiveIndex([]float64{10, 20}, 3); got != 0 {
		t.Errorf("ActiveIndex before first start = %d, want 0", got)
	}
}

func TestActiveIndexEmpty(t *testing.T) {
	if got := ActiveIndex(nil, 5); got != -1 {
		t.Errorf("ActiveIndex(empty) = %d, want -1", got)
	}
}

func TestActiveIndexSingleEntry(t *testing.T) {
	starts := []float64{12}
	if got := ActiveIndex(starts, 0); got != 0 {
		t.Errorf("before single entry: got %d, want 0", got)
	}
	if got := ActiveIndex(starts, 500); got != 0 {
		t.Errorf("after single entry: got %d, want 0", got)
	}
}

func TestActiveIndexFunc(t *testing.T) {
	type chapter struct {
		title string
		start float64
	}
	chapters := []chapter{{"intro", 0}, {"the farm", 120}, {"the war", 900}}

	got := ActiveIndexFunc(chapters, 450, func(c chapter) float64 { return c.start })
	if got != 1 {
		t.Errorf("ActiveIndexFunc = %d, want 1", got)
	}
}

func TestGroupSegmentsBoundaries(t *testing.T) {
	segments := []float64{0, 5, 10, 15, 20, 25}
	chapters := []float64{0, 10, 20}

	ranges := GroupSegments(segments, chapters)
	if len(ranges) != 3 {
		t.Fatalf("expected 3 ranges, got %d", len(ranges))
	}

	want := []Range{{0, 2}, {2, 4}, {4, 6}}
	for i, r := range ranges {
		if r != want[i] {
			t.Errorf("range %d = %+v, want %+v", i, r, want[i])
		}
	}
}

// A segment starting exactly at the next chapter's start belongs to
// the later chapter (half-open interval, left-inclusive).
func TestGroupSegmentsBoundarySegmentGoesToLaterChapter(t *testing.T) {
	segments := []float64{0, 100}
	chapters := []float64{0, 100}

	ranges := GroupSegments(segments, chapters)
	if ranges[0].Len() != 1 || ranges[1].Len() != 1 {
		t.Fatalf("ranges = %+v, want boundary segment in chapter 1", ranges)
	}
	if ranges[1].From != 1 {
		t.Errorf("chapter 1 starts at segment %d, want 1", ranges[1].From)
	}
}

func TestGroupSegmentsUnsortedChapters(t *testing.T) {
	segments := []float64{0, 50, 150}
	ranges := GroupSegments(segments, []float64{100, 0})
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(ranges))
	}
	if ranges[0] != (Range{0, 2}) || ranges[1] != (Range{2, 3}) {
		t.Errorf("ranges = %+v", ranges)
	}
}

func TestGroupSegmentsBeforeFirstChapter(t *testing.T) {
	// Segments preceding the first chapter still land in it.
	segments := []float64{1, 2, 50}
	ranges := GroupSegments(segments, []float64{10, 40})
	if ranges[0] != (Range{0, 2}) {
		t.Errorf("range 0 = %+v, want {0 2}", ranges[0])
	}
}

func TestGroupSegmentsLastChapterExtends(t *testing.T) {
	segments := []float64{0, 10, 1e6}
	ranges := GroupSegments(segments, []float64{0})
	if len(ranges) != 1 || ranges[0].To != 3 {
		t.Errorf("ranges = %+v, want single range covering all segments", ranges)
	}
}

func TestGroupSegmentsNoChapters(t *testing.T) {
	if got := GroupSegments([]float64{1, 2}, nil); got != nil {
		t.Errorf("GroupSegments with no chapters = %+v, want nil", got)
	}
}
