// Package places maintains places.json: a hand-curated set of
// geocoded locations plus machine-scanned transcript mentions. The
// scanner only ever adds mentions; the place list itself is curated by
// hand and preserved verbatim.
package places

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// Mention is one spot in a transcript where a place comes up.
type Mention struct {
	Transcript string  `json:"transcript"`
	Context    string  `json:"context"`
	StartSecs  float64 `json:"start_secs"`
	EndSecs    float64 `json:"end_secs"`
	// PlayerLink lets a map pin jump straight to the mention.
	PlayerLink string `json:"player_link,omitempty"`
}

// Place is a geocoded location with its transcript mentions. Aliases
// cover spellings the transcriber used for the same spot.
type Place struct {
	Name     string    `json:"name"`
	Lat      float64   `json:"latitude"`
	Lng      float64   `json:"longitude"`
	Aliases  []string  `json:"aliases,omitempty"`
	Mentions []Mention `json:"mentions"`
}

// AddMention records a mention unless one already exists for the same
// transcript and start time.
func (p *Place) AddMention(m Mention) bool {
	for _, existing := range p.Mentions {
		if existing.Transcript == m.Transcript && existing.StartSecs == m.StartSecs {
			return false
		}
	}
	p.Mentions = append(p.Mentions, m)
	return true
}

// Metadata describes the file as a whole.
type Metadata struct {
	TotalPlaces int    `json:"total_places"`
	LastUpdated string `json:"last_updated"`
}

// File is the places.json document.
type File struct {
	Metadata Metadata `json:"metadata"`
	Places   []Place  `json:"places"`
}

// Get returns the place with the given name.
func (f *File) Get(name string) (*Place, bool) {
	for i := range f.Places {
		if f.Places[i].Name == name {
			return &f.Places[i], true
		}
	}
	return nil, false
}

// LoadFile reads places.json. A missing file yields an empty document
// so a first scan starts from nothing.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading places file: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding places file: %w", err)
	}
	return &f, nil
}

// WriteFile saves places.json with refreshed metadata, places sorted
// by mention count so the most-discussed come first.
func WriteFile(path string, f *File) error {
	sort.SliceStable(f.Places, func(i, j int) bool {
		return len(f.Places[i].Mentions) > len(f.Places[j].Mentions)
	})
	f.Metadata.TotalPlaces = len(f.Places)
	f.Metadata.LastUpdated = time.Now().UTC().Format(time.DateTime)

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding places file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing places file: %w", err)
	}
	return nil
}
