package service

import (
	"fmt"
	"strings"

	"github.com/doclens-ai/doclens/internal/domain"
)

// NoContextSentinel is returned by AssembleContext when there are no results.
// The prompt instructs the model to treat it as "not answerable from the
// documents", so it must never be an empty string.
const NoContextSentinel = "No relevant context found."

// contextSeparator joins chunk blocks in the assembled context.
const contextSeparator = "\n---\n"

// AssembleContext packs search results into a single bounded string. Results
// are walked in rank order; a chunk whose block would push the running total
// past maxContextLength is dropped along with everything after it; chunks
// are never truncated mid-content. With includeMetadata set, each block is
// prefixed with its document title and similarity score.
func AssembleContext(results []domain.SearchResult, maxContextLength int, includeMetadata bool) string {
	if len(results) == 0 {
		return NoContextSentinel
	}

	var parts []string
	currentLength := 0

	for _, r := range results {
		var block string
		if includeMetadata {
			block = fmt.Sprintf("[Document: %s] [Similarity: %.3f]\n%s\n",
				r.DocumentTitle, r.SimilarityScore, r.Chunk.Content)
		} else {
			block = r.Chunk.Content + "\n"
		}

		if currentLength+len(block) > maxContextLength {
			break
		}
		parts = append(parts, block)
		currentLength += len(block)
	}

	if len(parts) == 0 {
		return NoContextSentinel
	}
	return strings.Join(parts, contextSeparator)
}

// BuildPrompt formats the assembled context and query into the instruction
// text sent to the LLM. Pure template substitution: behavior is uniform
// regardless of how much context survived assembly.
func BuildPrompt(query, context string) string {
	return fmt.Sprintf(`You are a helpful AI assistant that answers questions based on the provided context. Follow these guidelines:

1. Answer the question using ONLY the information provided in the context
2. If the context doesn't contain enough information to answer the question, say so clearly
3. Cite specific parts of the context when possible
4. Be concise but comprehensive
5. If multiple documents are referenced, mention which document provides each piece of information

Context:
%s

Question: %s

Answer:`, context, query)
}
