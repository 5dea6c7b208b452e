package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/doclens-ai/doclens/internal/domain"
)

func makeResult(title, content string, score float64, rank int) domain.SearchResult {
	return domain.SearchResult{
		Chunk:           domain.Chunk{Content: content},
		DocumentTitle:   title,
		SimilarityScore: score,
		Rank:            rank,
	}
}

func TestAssembleContext_EmptyResults(t *testing.T) {
	got := AssembleContext(nil, 4000, true)
	if got != NoContextSentinel {
		t.Errorf("expected sentinel for empty results, got %q", got)
	}
}

func TestAssembleContext_MetadataPrefix(t *testing.T) {
	results := []domain.SearchResult{
		makeResult("Q3 Report", "Revenue grew 12%.", 0.912, 1),
	}

	got := AssembleContext(results, 4000, true)
	if !strings.Contains(got, "[Document: Q3 Report]") {
		t.Errorf("missing document title prefix: %q", got)
	}
	if !strings.Contains(got, "[Similarity: 0.912]") {
		t.Errorf("missing similarity prefix: %q", got)
	}
	if !strings.Contains(got, "Revenue grew 12%.") {
		t.Errorf("missing chunk content: %q", got)
	}

	plain := AssembleContext(results, 4000, false)
	if strings.Contains(plain, "[Document:") || strings.Contains(plain, "[Similarity:") {
		t.Errorf("metadata leaked with includeMetadata=false: %q", plain)
	}
}

func TestAssembleContext_BudgetNeverExceeded(t *testing.T) {
	var results []domain.SearchResult
	for i := 0; i < 10; i++ {
		results = append(results, makeResult(
			fmt.Sprintf("Doc %d", i),
			strings.Repeat("x", 200),
			0.9-float64(i)*0.01,
			i+1,
		))
	}

	for _, budget := range []int{100, 300, 700, 1500, 5000} {
		got := AssembleContext(results, budget, false)
		if got == NoContextSentinel {
			continue
		}
		if len(got) > budget+len(contextSeparator)*len(results) {
			t.Errorf("budget %d: assembled context way over budget (%d chars)", budget, len(got))
		}
		// Each kept chunk must be intact, never cut mid-content.
		for _, part := range strings.Split(got, contextSeparator) {
			if strings.TrimSuffix(part, "\n") != strings.Repeat("x", 200) {
				t.Errorf("budget %d: chunk truncated or mangled: %q", budget, part)
			}
		}
	}
}

func TestAssembleContext_DropsOverflowingChunkEntirely(t *testing.T) {
	results := []domain.SearchResult{
		makeResult("A", strings.Repeat("a", 50), 0.9, 1),
		makeResult("B", strings.Repeat("b", 500), 0.8, 2),
		makeResult("C", strings.Repeat("c", 20), 0.7, 3),
	}

	got := AssembleContext(results, 100, false)
	if !strings.Contains(got, strings.Repeat("a", 50)) {
		t.Errorf("first chunk should fit: %q", got)
	}
	if strings.Contains(got, "b") {
		t.Errorf("overflowing chunk must be dropped entirely: %q", got)
	}
	if strings.Contains(got, "c") {
		t.Errorf("chunks after the overflow must also be dropped: %q", got)
	}
}

func TestAssembleContext_FirstChunkTooLarge(t *testing.T) {
	results := []domain.SearchResult{
		makeResult("Huge", strings.Repeat("z", 1000), 0.95, 1),
	}
	got := AssembleContext(results, 100, false)
	if got != NoContextSentinel {
		t.Errorf("expected sentinel when nothing fits, got %d chars", len(got))
	}
}

func TestBuildPrompt_Template(t *testing.T) {
	prompt := BuildPrompt("What is the revenue?", "some context here")

	if !strings.Contains(prompt, "Context:\nsome context here") {
		t.Errorf("context not substituted:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Question: What is the revenue?") {
		t.Errorf("question not substituted:\n%s", prompt)
	}
	if !strings.HasSuffix(prompt, "Answer:") {
		t.Errorf("prompt must end with the answer cue:\n%s", prompt)
	}
	if !strings.Contains(prompt, "ONLY the information provided in the context") {
		t.Errorf("grounding instruction missing:\n%s", prompt)
	}
}

func TestBuildPrompt_SentinelContext(t *testing.T) {
	prompt := BuildPrompt("anything", NoContextSentinel)
	if !strings.Contains(prompt, NoContextSentinel) {
		t.Errorf("sentinel must pass through unchanged:\n%s", prompt)
	}
}
