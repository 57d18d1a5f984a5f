// Package search provides the flat full-text index over every
// transcript segment. The on-disk shape uses one-letter keys to keep
// the file small enough to ship to browsers.
package search

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/achen-archive/memoirsite/internal/catalog"
)

// IndexEntry is one indexed transcript segment.
//
//	r = recording path, t = recording title, s/e = start/end seconds,
//	x = original text, n = normalized text, i = segment index
type IndexEntry struct {
	RecordingPath  string  `json:"r"`
	RecordingTitle string  `json:"t"`
	Start          float64 `json:"s"`
	End            float64 `json:"e"`
	Text           string  `json:"x"`
	Normalized     string  `json:"n"`
	SegmentIndex   int     `json:"i"`
}

// Index is the searchable segment list.
type Index struct {
	Entries []IndexEntry `json:"index"`
}

// Normalize lowercases and trims text for case-insensitive matching.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Build indexes every non-empty segment of every recording in the
// catalog. onRecording, when non-nil, is notified once per recording
// for progress reporting.
func Build(c *catalog.Catalog, onRecording func(path string, segments int)) (*Index, error) {
	idx := &Index{}
	for _, rec := range c.Recordings() {
		tr, err := c.Transcript(rec.Path)
		if err != nil {
			return nil, fmt.Errorf("transcript %s: %w", rec.Path, err)
		}

		added := 0
		for i, seg := range tr.Segments {
			text := strings.TrimSpace(seg.Text)
			if text == "" {
				continue
			}
			idx.Entries = append(idx.Entries, IndexEntry{
				RecordingPath:  rec.Path,
				RecordingTitle: rec.Title,
				Start:          seg.Start,
				End:            seg.End,
				Text:           text,
				Normalized:     Normalize(text),
				SegmentIndex:   i,
			})
			added++
		}
		if onRecording != nil {
			onRecording(rec.Path, added)
		}
	}
	return idx, nil
}

// WriteFile saves the index compactly.
func WriteFile(path string, idx *Index) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encoding search index: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing search index: %w", err)
	}
	return nil
}

// LoadFile reads a previously built index.
func LoadFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading search index: %w", err)
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("decoding search index: %w", err)
	}
	return &idx, nil
}

// Query returns up to limit entries whose normalized text contains the
// normalized query as a substring.
func (idx *Index) Query(q string, limit int) []IndexEntry {
	q = Normalize(q)
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = 50
	}

	var out []IndexEntry
	for _, e := range idx.Entries {
		if strings.Contains(e.Normalized, q) {
			out = append(out, e)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}
