package chat

import (
	"regexp"
	"strings"

	"github.com/achen-archive/memoirsite/internal/catalog"
	"github.com/achen-archive/memoirsite/internal/vectordb"
)

// Citation points an answer back into the audio.
type Citation struct {
	RecordingID string `json:"recording_id"`
	// Timestamp is the chunk start in seconds.
	Timestamp    float64 `json:"timestamp"`
	QuoteSnippet string  `json:"quote_snippet"`
	// PlayerLink jumps the frontend into the player at the cited moment.
	PlayerLink string `json:"player_link"`
}

// sourceRefPattern matches the [Source: id, Time: M:SS] labels the
// system prompt instructs the model to emit.
var sourceRefPattern = regexp.MustCompile(`\[Source:\s*([^,\]]+),\s*Time:\s*([^\]]+)\]`)

const snippetLen = 100

// ExtractCitations returns one citation per retrieved chunk the answer
// actually referenced, deduplicated by recording and timestamp label.
func ExtractCitations(answer string, chunks []vectordb.Chunk) []Citation {
	refs := make(map[string]bool)
	for _, m := range sourceRefPattern.FindAllStringSubmatch(answer, -1) {
		recID := strings.TrimSpace(m[1])
		ts := strings.TrimSpace(m[2])
		refs[recID+"_"+ts] = true
	}

	var citations []Citation
	seen := make(map[string]bool)
	for _, c := range chunks {
		key := c.Metadata.Key()
		if !refs[key] || seen[key] {
			continue
		}
		seen[key] = true

		snippet := c.Content
		if len(snippet) > snippetLen {
			snippet = snippet[:snippetLen] + "..."
		}
		citations = append(citations, Citation{
			RecordingID:  c.Metadata.RecordingID,
			Timestamp:    c.Metadata.StartSeconds,
			QuoteSnippet: snippet,
			PlayerLink:   catalog.PlayerLink(c.Metadata.RecordingID, c.Metadata.StartSeconds),
		})
	}
	return citations
}
