package chapters

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/achen-archive/memoirsite/internal/align"
	"github.com/achen-archive/memoirsite/internal/transcript"
)

// Load reads chapters.json from a recording directory. Chapters are
// re-sorted by start time so hand-edited files stay safe.
func Load(dir string) (*File, error) {
	data, err := os.ReadFile(filepath.Join(dir, "chapters.json"))
	if err != nil {
		return nil, fmt.Errorf("reading chapters: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding chapters: %w", err)
	}

	sort.SliceStable(f.Chapters, func(i, j int) bool {
		return f.Chapters[i].StartTime < f.Chapters[j].StartTime
	})
	return &f, nil
}

// OutlineChapter is a chapter with its owned segment range and any
// minor chapters that fall inside it.
type OutlineChapter struct {
	Chapter
	Segments []transcript.Segment `json:"segments"`
	Stories  []Chapter            `json:"stories,omitempty"`
}

// Outline groups a transcript's segments under the major chapters.
// Each major chapter owns [startTime, nextMajorStart); minor chapters
// are attached to the major chapter active at their start time.
func Outline(f *File, tr *transcript.Transcript) []OutlineChapter {
	majors := f.Majors()
	if len(majors) == 0 {
		return nil
	}

	ranges := align.GroupSegments(tr.StartTimes(), StartTimes(majors))
	out := make([]OutlineChapter, len(majors))
	for i, ch := range majors {
		out[i] = OutlineChapter{
			Chapter:  ch,
			Segments: tr.Segments[ranges[i].From:ranges[i].To],
		}
	}

	majorStarts := StartTimes(majors)
	for _, c := range f.Chapters {
		if !c.Minor {
			continue
		}
		idx := align.ActiveIndex(majorStarts, c.StartTime)
		if idx >= 0 {
			out[idx].Stories = append(out[idx].Stories, c)
		}
	}
	return out
}
