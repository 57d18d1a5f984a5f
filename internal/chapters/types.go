package chapters

// Chapter is a named, timestamped section of a recording. Minor
// chapters (stories) sit inline in the same array, flagged and sorted
// by start time along with the major ones.
type Chapter struct {
	Title       string  `json:"title"`
	StartTime   float64 `json:"startTime"`
	Description string  `json:"description,omitempty"`
	Minor       bool    `json:"minor,omitempty"`
}

// File is the on-disk shape of chapters.json.
type File struct {
	Chapters []Chapter `json:"chapters"`
	Summary  string    `json:"summary,omitempty"`
}

// Majors returns only the major chapters, in order.
func (f *File) Majors() []Chapter {
	var out []Chapter
	for _, c := range f.Chapters {
		if !c.Minor {
			out = append(out, c)
		}
	}
	return out
}

// StartTimes returns the start time of every chapter, in order.
func StartTimes(chapters []Chapter) []float64 {
	starts := make([]float64, len(chapters))
	for i, c := range chapters {
		starts[i] = c.StartTime
	}
	return starts
}
