package chat

import (
	"fmt"
	"strings"

	"github.com/achen-archive/memoirsite/internal/vectordb"
)

const systemPrompt = `You are a family historian assistant with access to audio transcripts from Linden Hilary Achen (1902-1994). These are voice memoirs recorded in the 1980s.

RULES:
1. Answer ONLY from the provided context. If info isn't there, say so.
2. When citing, use format: [Source: recording_id, Time: MM:SS]
3. Be thorough - look through ALL provided context before answering.
4. Include specific details like names, places, dates, vehicle models when mentioned.`

// noResultsAnswer is returned without consulting the LLM when
// retrieval comes back empty.
const noResultsAnswer = "No relevant transcripts found."

// buildUserMessage assembles the retrieved chunks and the question into
// a single prompt. Each chunk is introduced by its source label so the
// model can cite it back.
func buildUserMessage(query string, chunks []vectordb.Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = fmt.Sprintf("[Source: %s, Time: %s]\n%s",
			c.Metadata.RecordingID, c.Metadata.Timestamp, c.Content)
	}
	context := strings.Join(parts, "\n\n---\n\n")

	return fmt.Sprintf(`Context from transcripts:

%s

---

Question: %s

Look through ALL the context above and provide a complete answer.`, context, query)
}
