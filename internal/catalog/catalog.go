// Package catalog knows which recordings exist, where their transcript
// and audio files live under the assets directory, and how to link
// into the player at a given time offset.
package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/achen-archive/memoirsite/internal/transcript"
)

// Recording is one narrated audio recording in the archive.
type Recording struct {
	// Path is the recording's directory relative to the recordings
	// root, e.g. "memoirs/Norm_red". It doubles as the recording id
	// in URLs and citations.
	Path  string `json:"path"`
	Title string `json:"title"`
	// AudioPath is the public URL of the original-quality audio.
	AudioPath string `json:"audioPath"`
	// HasLowQuality reports whether a smaller companion encode exists
	// alongside the original.
	HasLowQuality bool `json:"hasLowQuality"`
	// DurationSecs is probed from the mp3 frames; 0 when unknown.
	DurationSecs float64 `json:"durationSecs,omitempty"`
}

// Known display titles for recording paths. Anything not listed gets a
// title derived from its directory name.
var titleMap = map[string]string{
	"christmas1986":                        "Christmas 1986",
	"glynn_interview":                      "Glynn Interview",
	"LHA_Sr.Hilary":                        "Sister Hilary Recording",
	"tibbits_cd":                           "Tibbits CD",
	"memoirs/Norm_red":                     "Memoirs",
	"memoirs/TDK_D60_edited_through_air":   "Memoirs - Draft Telling",
}

// TitleFor returns the display title for a recording path.
func TitleFor(path string) string {
	if t, ok := titleMap[path]; ok {
		return t
	}
	name := path[strings.LastIndex(path, "/")+1:]
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Catalog is the set of discovered recordings, rooted at the
// recordings directory inside the assets tree.
type Catalog struct {
	root       string
	recordings []Recording
}

// Root returns the recordings directory the catalog was scanned from.
func (c *Catalog) Root() string { return c.root }

// Recordings returns all discovered recordings, sorted by path.
func (c *Catalog) Recordings() []Recording { return c.recordings }

// Get returns the recording with the given path.
func (c *Catalog) Get(path string) (Recording, bool) {
	for _, r := range c.recordings {
		if r.Path == path {
			return r, true
		}
	}
	return Recording{}, false
}

// Dir returns the on-disk directory for a recording path.
func (c *Catalog) Dir(path string) string {
	return filepath.Join(c.root, filepath.FromSlash(path))
}

// Transcript loads the recording's transcript (CSV preferred).
func (c *Catalog) Transcript(path string) (*transcript.Transcript, error) {
	return transcript.Load(c.Dir(path))
}

// ScanOptions controls recording discovery.
type ScanOptions struct {
	// Include/Exclude are doublestar patterns matched against the
	// recording path. Empty Include means everything.
	Include []string
	Exclude []string
	// ProbeDurations decodes each recording's mp3 to measure length.
	ProbeDurations bool
}

// Scan walks root for directories containing a transcript file and
// builds the catalog.
func Scan(root string, opts ScanOptions) (*Catalog, error) {
	c := &Catalog{root: root}

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if name != "transcript.csv" && name != "transcript.json" {
			return nil
		}

		rel, err := filepath.Rel(root, filepath.Dir(p))
		if err != nil {
			return err
		}
		recPath := filepath.ToSlash(rel)
		if !matches(recPath, opts.Include, opts.Exclude) {
			return nil
		}
		if _, ok := c.Get(recPath); ok {
			// CSV and JSON in the same directory count once.
			return nil
		}

		rec := Recording{
			Path:      recPath,
			Title:     TitleFor(recPath),
			AudioPath: audioURL(recPath, "audio_original.mp3"),
		}
		if _, err := os.Stat(filepath.Join(filepath.Dir(p), "audio_low.mp3")); err == nil {
			rec.HasLowQuality = true
		}
		if opts.ProbeDurations {
			if dur, err := AudioDuration(filepath.Join(filepath.Dir(p), "audio_original.mp3")); err == nil {
				rec.DurationSecs = dur.Seconds()
			}
		}

		c.recordings = append(c.recordings, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning recordings in %s: %w", root, err)
	}

	sort.Slice(c.recordings, func(i, j int) bool {
		return c.recordings[i].Path < c.recordings[j].Path
	})
	return c, nil
}

func matches(path string, include, exclude []string) bool {
	for _, pat := range exclude {
		if ok, _ := doublestar.Match(pat, path); ok {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, pat := range include {
		if ok, _ := doublestar.Match(pat, path); ok {
			return true
		}
	}
	return false
}

func audioURL(recPath, file string) string {
	return "/static_assets/recordings/" + recPath + "/" + file
}
