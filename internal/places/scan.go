package places

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/achen-archive/memoirsite/internal/catalog"
)

// contextWindow is roughly how much surrounding text a mention keeps.
const contextWindow = 200

// namePattern compiles a case-insensitive word-boundary match for a
// place name or alias.
func namePattern(name string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
}

// contextAround trims text to the window surrounding a match, adding
// ellipses for anything cut off.
func contextAround(text string, start, end int) string {
	if len(text) <= contextWindow {
		return strings.TrimSpace(text)
	}

	pad := (contextWindow - (end - start)) / 2
	from := start - pad
	to := end + pad
	if from < 0 {
		to -= from
		from = 0
	}
	if to > len(text) {
		from -= to - len(text)
		to = len(text)
	}
	if from < 0 {
		from = 0
	}

	out := strings.TrimSpace(text[from:to])
	if from > 0 {
		out = "..." + out
	}
	if to < len(text) {
		out += "..."
	}
	return out
}

// ScanResult summarizes one scan run.
type ScanResult struct {
	NewMentions int
	Recordings  int
}

// Scan walks every transcript in the catalog looking for mentions of
// the places already in the file. New mentions are added in place;
// existing ones (same transcript and start time) are left alone.
func Scan(c *catalog.Catalog, f *File, onRecording func(path string, found int)) (*ScanResult, error) {
	type target struct {
		place   *Place
		pattern *regexp.Regexp
	}

	var targets []target
	for i := range f.Places {
		p := &f.Places[i]
		for _, name := range append([]string{p.Name}, p.Aliases...) {
			re, err := namePattern(name)
			if err != nil {
				return nil, fmt.Errorf("place %q: %w", p.Name, err)
			}
			targets = append(targets, target{place: p, pattern: re})
		}
	}

	result := &ScanResult{}
	for _, rec := range c.Recordings() {
		tr, err := c.Transcript(rec.Path)
		if err != nil {
			return nil, fmt.Errorf("transcript %s: %w", rec.Path, err)
		}

		found := 0
		for _, seg := range tr.Segments {
			for _, tgt := range targets {
				loc := tgt.pattern.FindStringIndex(seg.Text)
				if loc == nil {
					continue
				}
				added := tgt.place.AddMention(Mention{
					Transcript: rec.Path,
					Context:    contextAround(seg.Text, loc[0], loc[1]),
					StartSecs:  seg.Start,
					EndSecs:    seg.End,
					PlayerLink: catalog.PlayerLink(rec.Path, seg.Start),
				})
				if added {
					found++
				}
			}
		}

		result.Recordings++
		result.NewMentions += found
		if onRecording != nil {
			onRecording(rec.Path, found)
		}
	}
	return result, nil
}
