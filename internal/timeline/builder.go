package timeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/achen-archive/memoirsite/internal/catalog"
	"github.com/achen-archive/memoirsite/internal/llm"
)

// Period grouping knobs, tuned against the memoir corpus: a year with
// enough excerpts stands alone, sparse years merge into ranges.
const (
	minExcerptsForSoloYear = 7
	maxGapYears            = 2
	maxExcerptsPerPeriod   = 15
)

// Builder assembles timeline.json from the transcripts.
type Builder struct {
	Catalog   *catalog.Catalog
	Provider  llm.Provider
	Model     string
	SpanStart int
	SpanEnd   int
	BirthYear int
}

// ExtractExcerpts pulls every in-span year mention out of every
// transcript in the catalog.
func (b *Builder) ExtractExcerpts() ([]Excerpt, error) {
	var excerpts []Excerpt
	for _, rec := range b.Catalog.Recordings() {
		tr, err := b.Catalog.Transcript(rec.Path)
		if err != nil {
			return nil, fmt.Errorf("transcript %s: %w", rec.Path, err)
		}
		for _, seg := range tr.Segments {
			for _, m := range ExtractYears(seg.Text, b.SpanStart, b.SpanEnd) {
				if m.Year < b.SpanStart || m.Year > b.SpanEnd {
					continue
				}
				excerpts = append(excerpts, Excerpt{
					RecordingID:    rec.Path,
					RecordingTitle: rec.Title,
					AudioURL:       rec.AudioPath,
					PlayerLink:     catalog.PlayerLink(rec.Path, seg.Start),
					Text:           strings.TrimSpace(seg.Text),
					StartTime:      seg.Start,
					EndTime:        seg.End,
					YearMentioned:  m.Year,
				})
			}
		}
	}
	return excerpts, nil
}

// period is a contiguous year range with its excerpts.
type period struct {
	start, end int
	excerpts   []Excerpt
}

// groupPeriods merges year mentions into timeline periods: a year with
// minExcerptsForSoloYear or more excerpts gets its own entry; sparse
// years accumulate into a range until the gap to the next year exceeds
// maxGapYears or the range holds maxExcerptsPerPeriod excerpts.
func groupPeriods(excerpts []Excerpt) []period {
	byYear := map[int][]Excerpt{}
	for _, e := range excerpts {
		byYear[e.YearMentioned] = append(byYear[e.YearMentioned], e)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	if len(years) == 0 {
		return nil
	}

	var (
		periods      []period
		current      []Excerpt
		currentStart = years[0]
	)

	for i, year := range years {
		yearExcerpts := byYear[year]

		if len(yearExcerpts) >= minExcerptsForSoloYear {
			if len(current) > 0 {
				prev := currentStart
				if i > 0 {
					periods = append(periods, period{prev, years[i-1], current})
				} else {
					periods = append(periods, period{prev, prev, current})
				}
				current = nil
			}
			periods = append(periods, period{year, year, yearExcerpts})
			currentStart = year + 1
			continue
		}

		if len(current) == 0 {
			currentStart = year
		}
		current = append(current, yearExcerpts...)

		if i < len(years)-1 {
			next := years[i+1]
			if next-year > maxGapYears || len(current) >= maxExcerptsPerPeriod {
				periods = append(periods, period{currentStart, year, current})
				current = nil
				currentStart = next
			}
		}
	}
	if len(current) > 0 {
		periods = append(periods, period{currentStart, years[len(years)-1], current})
	}
	return periods
}

// Build extracts, groups, and describes the timeline. When Provider is
// nil the entries get placeholder titles and empty descriptions (the
// dry-run path).
func (b *Builder) Build(ctx context.Context) (*File, error) {
	excerpts, err := b.ExtractExcerpts()
	if err != nil {
		return nil, err
	}

	periods := groupPeriods(excerpts)
	f := &File{}
	for _, p := range periods {
		entry := Entry{
			YearStart: p.start,
			YearEnd:   p.end,
			Title:     yearLabel(p.start, p.end),
			Excerpts:  p.excerpts,
		}
		if b.BirthYear > 0 {
			entry.AgeStart = p.start - b.BirthYear
			entry.AgeEnd = p.end - b.BirthYear
		}
		if b.Provider != nil {
			title, desc, err := b.describePeriod(ctx, p)
			if err != nil {
				log.Printf("timeline: describing %s: %v", entry.Title, err)
			} else {
				if title != "" {
					entry.Title = title
				}
				entry.Description = desc
			}
		}
		f.Entries = append(f.Entries, entry)
	}
	return f, nil
}

// describePeriod asks the LLM for a short title and description of a
// period based on its excerpts.
func (b *Builder) describePeriod(ctx context.Context, p period) (title, description string, err error) {
	var sb strings.Builder
	for i, exc := range p.excerpts {
		if i >= 15 {
			// Keep the prompt inside a sane context window.
			break
		}
		fmt.Fprintf(&sb, "- [%s] %s\n", exc.RecordingTitle, exc.Text)
	}

	prompt := fmt.Sprintf(`These are excerpts from voice memoirs that mention the year(s) %s:

%s
Based on these excerpts, reply with JSON only:
{"title": "3-6 word period title", "description": "2-3 sentence summary of what happened in this period of the narrator's life"}`,
		yearLabel(p.start, p.end), sb.String())

	resp, err := b.Provider.Complete(ctx, llm.CompletionRequest{
		Model: b.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You summarize periods of a life from memoir excerpts. Reply with JSON only."},
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		return "", "", err
	}

	var out struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(resp.Content), &out); err != nil {
		return "", "", fmt.Errorf("parsing period description: %w", err)
	}
	return out.Title, out.Description, nil
}

func yearLabel(start, end int) string {
	if start == end {
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d-%d", start, end)
}

// WriteFile saves the timeline compactly to path.
func WriteFile(path string, f *File) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding timeline: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing timeline: %w", err)
	}
	return nil
}

// LoadFile reads timeline.json from path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading timeline: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding timeline: %w", err)
	}
	return &f, nil
}
