// Package chat answers questions about the recordings by retrieving
// transcript chunks (hybrid vector + keyword search) and asking an LLM
// to answer strictly from them, with timestamped citations back into
// the audio.
package chat

import (
	"fmt"
	"strings"

	"github.com/achen-archive/memoirsite/internal/catalog"
	"github.com/achen-archive/memoirsite/internal/transcript"
	"github.com/achen-archive/memoirsite/internal/vectordb"
)

// Chunking: two-minute windows with one minute of overlap. Generous
// redundancy so a story is never split across a boundary without at
// least one chunk containing it whole.
const (
	ChunkDurationSeconds = 120.0
	ChunkOverlapSeconds  = 60.0
)

// ChunkTranscript slices a transcript into overlapping chunks of raw
// text. The content carries no prefixes or labels; recording and time
// information live only in the metadata.
func ChunkTranscript(tr *transcript.Transcript, recordingID string) []vectordb.Chunk {
	segments := tr.Segments
	if len(segments) == 0 {
		return nil
	}

	var chunks []vectordb.Chunk
	startIdx := 0

	for startIdx < len(segments) {
		chunkStart := segments[startIdx].Start
		chunkEnd := chunkStart
		var texts []string

		endIdx := startIdx
		for endIdx < len(segments) {
			seg := segments[endIdx]
			segEnd := seg.End
			if segEnd < seg.Start {
				segEnd = seg.Start
			}
			if text := strings.TrimSpace(seg.Text); text != "" {
				texts = append(texts, text)
			}
			if segEnd > chunkEnd {
				chunkEnd = segEnd
			}
			if segEnd-chunkStart >= ChunkDurationSeconds {
				break
			}
			endIdx++
		}

		if len(texts) > 0 {
			chunks = append(chunks, vectordb.Chunk{
				ID:      fmt.Sprintf("%s_%d", recordingID, len(chunks)),
				Content: strings.Join(texts, " "),
				Metadata: vectordb.ChunkMetadata{
					RecordingID:  recordingID,
					StartSeconds: chunkStart,
					EndSeconds:   chunkEnd,
					Timestamp:    catalog.FormatTimestamp(chunkStart),
				},
			})
		}

		// Advance to the first segment past the overlap point.
		targetTime := chunkStart + (ChunkDurationSeconds - ChunkOverlapSeconds)
		nextIdx := startIdx + 1
		for i := startIdx + 1; i < len(segments); i++ {
			if segments[i].Start >= targetTime {
				nextIdx = i
				break
			}
		}
		if nextIdx == startIdx {
			nextIdx = startIdx + 1
		}

		if endIdx >= len(segments)-1 {
			break
		}
		startIdx = nextIdx
	}

	return chunks
}

// ChunkCatalog chunks every recording in the catalog. onRecording, when
// non-nil, is notified once per recording.
func ChunkCatalog(c *catalog.Catalog, onRecording func(path string, chunks int)) ([]vectordb.Chunk, error) {
	var all []vectordb.Chunk
	for _, rec := range c.Recordings() {
		tr, err := c.Transcript(rec.Path)
		if err != nil {
			return nil, fmt.Errorf("transcript %s: %w", rec.Path, err)
		}
		chunks := ChunkTranscript(tr, rec.Path)
		all = append(all, chunks...)
		if onRecording != nil {
			onRecording(rec.Path, len(chunks))
		}
	}
	return all, nil
}
