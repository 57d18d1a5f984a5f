package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// The CSV variant is pipe-delimited to avoid quoting commas in speech:
//
//	start|end|text
//	6.45|10.61|I go right back, and it starts in where I taped it.
//
// Lines beginning with # are comments. A literal | inside text is
// escaped as ||.
const delimiter = "|"

// ParseCSV reads a pipe-delimited transcript. Malformed rows are
// skipped rather than failing the whole file.
func ParseCSV(r io.Reader) (*Transcript, error) {
	t := &Transcript{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "start") {
			// Header row.
			continue
		}

		parts := strings.SplitN(line, delimiter, 3)
		if len(parts) < 3 {
			continue
		}
		start, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			continue
		}
		end, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			continue
		}
		t.Segments = append(t.Segments, Segment{
			Start: start,
			End:   end,
			Text:  strings.ReplaceAll(parts[2], delimiter+delimiter, delimiter),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading transcript csv: %w", err)
	}

	sortSegments(t.Segments)
	return t, nil
}

// ParseJSON reads the {"segments": [...]} transcript variant.
func ParseJSON(r io.Reader) (*Transcript, error) {
	var t Transcript
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding transcript json: %w", err)
	}
	sortSegments(t.Segments)
	return &t, nil
}

// Load reads the transcript for a recording directory, preferring the
// CSV variant over JSON when both exist.
func Load(dir string) (*Transcript, error) {
	path := FilePath(dir)
	if path == "" {
		return nil, fmt.Errorf("no transcript in %s", dir)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()

	if filepath.Ext(path) == ".csv" {
		return ParseCSV(f)
	}
	return ParseJSON(f)
}

// FilePath returns the transcript file for a recording directory, or
// "" if the directory has none. CSV wins over JSON.
func FilePath(dir string) string {
	csvPath := filepath.Join(dir, "transcript.csv")
	if _, err := os.Stat(csvPath); err == nil {
		return csvPath
	}
	jsonPath := filepath.Join(dir, "transcript.json")
	if _, err := os.Stat(jsonPath); err == nil {
		return jsonPath
	}
	return ""
}

// WriteCSV writes a transcript in the pipe-delimited format, escaping
// any literal pipes in segment text.
func WriteCSV(w io.Writer, t *Transcript) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "start%send%stext\n", delimiter, delimiter); err != nil {
		return err
	}
	for _, seg := range t.Segments {
		text := strings.ReplaceAll(seg.Text, delimiter, delimiter+delimiter)
		if _, err := fmt.Fprintf(bw, "%g%s%g%s%s\n", seg.Start, delimiter, seg.End, delimiter, text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func sortSegments(segs []Segment) {
	if sort.SliceIsSorted(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start }) {
		return
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })
}
