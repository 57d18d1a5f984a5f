package timeline

// Excerpt is a transcript span that mentions a specific year.
type Excerpt struct {
	RecordingID    string  `json:"recording_id"`
	RecordingTitle string  `json:"recording_title"`
	AudioURL       string  `json:"audio_url"`
	PlayerLink     string  `json:"player_link"`
	Text           string  `json:"text"`
	StartTime      float64 `json:"start_time"`
	EndTime        float64 `json:"end_time"`
	YearMentioned  int     `json:"year_mentioned"`
}

// Entry is a biographical year range with its supporting excerpts. It
// spans the whole biography and is independent of any one recording.
type Entry struct {
	YearStart   int       `json:"year_start"`
	YearEnd     int       `json:"year_end"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AgeStart    int       `json:"age_start,omitempty"`
	AgeEnd      int       `json:"age_end,omitempty"`
	Excerpts    []Excerpt `json:"excerpts"`
}

// File is the on-disk shape of timeline.json.
type File struct {
	Entries []Entry `json:"entries"`
}

// Contains reports whether the entry's year range includes year.
func (e Entry) Contains(year int) bool {
	return year >= e.YearStart && year <= e.YearEnd
}
