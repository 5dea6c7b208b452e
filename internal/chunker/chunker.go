// Package chunker splits document text into overlapping fixed-budget
// segments with position metadata, the unit of embedding and retrieval.
package chunker

import (
	"strings"

	"github.com/doclens-ai/doclens/internal/domain"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 500

	// DefaultOverlap is the nominal overlap between consecutive chunks in
	// characters. The overlap is approximate: it is translated into a word
	// count (see overlapDivisor), not an exact character guarantee.
	DefaultOverlap = 50

	// overlapDivisor converts the character overlap parameter into a number
	// of trailing words carried over from the previous chunk. Tunable; the
	// ratio is a product decision, not a contract.
	overlapDivisor = 10

	// charsPerToken is the rough token estimate divisor (~4 chars per token
	// for English).
	charsPerToken = 4
)

// Split breaks text into chunks of at most chunkSize characters, accumulating
// whitespace-delimited words greedily. When a chunk closes, the next one is
// seeded with the trailing overlap/10 words of the closed chunk. A single
// word longer than chunkSize is never split; the chunk simply exceeds the
// nominal size. Empty or whitespace-only input yields no chunks. Offsets are
// cumulative and monotonically non-decreasing, and every chunk's content
// occupies exactly [StartOffset, EndOffset) of the reassembled stream.
func Split(text string, chunkSize, overlap int) []domain.Chunk {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	var current string
	index := 0
	start := 0

	for _, word := range words {
		test := current
		if test != "" {
			test += " "
		}
		test += word

		if len(test) <= chunkSize || current == "" {
			current = test
			continue
		}

		end := start + len(current)
		chunks = append(chunks, newChunk(current, index, start, end))
		index++

		// Seed the next chunk with the tail of the one just closed.
		seed := ""
		if overlap > 0 {
			tail := strings.Fields(current)
			n := overlap / overlapDivisor
			if n > len(tail) {
				n = len(tail)
			}
			seed = strings.Join(tail[len(tail)-n:], " ")
		}
		current = seed
		start = end - len(current)

		if current != "" {
			current += " "
		}
		current += word
	}

	if current != "" {
		end := start + len(current)
		chunks = append(chunks, newChunk(current, index, start, end))
	}

	return chunks
}

func newChunk(content string, index, start, end int) domain.Chunk {
	return domain.Chunk{
		Content:       content,
		Index:         index,
		StartOffset:   start,
		EndOffset:     end,
		CharCount:     len(content),
		WordCount:     len(strings.Fields(content)),
		TokenEstimate: EstimateTokens(content),
	}
}

// EstimateTokens approximates the token count of text.
func EstimateTokens(text string) int {
	return len(text) / charsPerToken
}
