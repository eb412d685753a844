// Package knowledge defines knowledge chunks and the deterministic splitter
// that produces them from raw document text.
package knowledge

import (
	"fmt"
	"strings"
)

// DefaultChunkSize is the maximum chunk length in bytes.
const DefaultChunkSize = 512

// Chunk is a bounded, non-overlapping segment of an ingested document,
// partitioned by agent namespace.
type Chunk struct {
	AgentID       string    `json:"agent_id"`
	Text          string    `json:"text"`
	Embedding     []float32 `json:"-"`
	SequenceLabel string    `json:"sequence_label"`
}

// ID returns the stable chunk identity within its agent namespace.
// Re-ingesting a document overwrites chunks at the same position rather
// than duplicating them.
func (c *Chunk) ID(seq int) string {
	return fmt.Sprintf("%s:%d", c.AgentID, seq)
}

// Split cuts content into chunks of at most maxSize bytes, accumulating
// whole lines until the next line would overflow. A single line longer than
// maxSize is hard-split at the byte bound so no chunk ever exceeds it.
// Boundaries are deterministic and chunks never overlap.
func Split(content string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = DefaultChunkSize
	}
	if strings.TrimSpace(content) == "" {
		return nil
	}

	var chunks []string
	var cur strings.Builder

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		// Hard-split oversized lines so the bound always holds.
		for len(line) > maxSize {
			flush()
			chunks = append(chunks, line[:maxSize])
			line = line[maxSize:]
		}
		if cur.Len() > 0 && cur.Len()+1+len(line) > maxSize {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	flush()

	return chunks
}

// SequenceLabel returns the human-readable position tag for a chunk.
func SequenceLabel(i, n int) string {
	return fmt.Sprintf("chunk %d of %d", i+1, n)
}
