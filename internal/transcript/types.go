package transcript

// Segment is a single timed span of transcribed speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript holds the ordered segments of one recording.
// Segments are sorted ascending by start time; they are contiguous
// but may have small gaps.
type Transcript struct {
	Segments []Segment `json:"segments"`
}

// StartTimes returns the start time of every segment, in order.
func (t *Transcript) StartTimes() []float64 {
	starts := make([]float64, len(t.Segments))
	for i, s := range t.Segments {
		starts[i] = s.Start
	}
	return starts
}

// Duration returns the end time of the last segment, or 0 for an
// empty transcript.
func (t *Transcript) Duration() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End
}
