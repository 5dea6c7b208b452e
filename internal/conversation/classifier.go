// Package conversation routes queries that can be answered without document
// retrieval: greetings, capability questions and system questions get a
// canned reply, everything else falls through to the retrieval pipeline.
package conversation

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
)

// Category is the intent bucket a query classifies into.
type Category string

const (
	CategoryGreeting   Category = "greeting"
	CategoryHearMe     Category = "hear_me"
	CategoryCapability Category = "capability"
	CategoryModels     Category = "models"
	CategoryFormats    Category = "formats"
	CategoryUpload     Category = "upload"

	// CategoryDocument means no conversational pattern matched and the
	// orchestrator should run retrieval.
	CategoryDocument Category = "document"
)

var greetingPatterns = compile(
	`\b(hello|hi|hey|greetings|good\s+(morning|afternoon|evening))\b`,
	`\b(what's\s+up|how\s+are\s+you|how\s+do\s+you\s+do)\b`,
)

var hearMePatterns = compile(
	`\b(can\s+you\s+hear\s+me|are\s+you\s+there|are\s+you\s+listening)\b`,
	`\b(hello\s+there|anybody\s+home|respond\s+if\s+you\s+can)\b`,
)

var capabilityPatterns = compile(
	`\b(what\s+can\s+you\s+do|what\s+are\s+your\s+capabilities|help\s+me)\b`,
	`\b(how\s+does\s+this\s+work|what\s+is\s+this|explain\s+the\s+system)\b`,
	`\b(what\s+are\s+you|who\s+are\s+you|tell\s+me\s+about\s+yourself)\b`,
)

var modelPatterns = compile(
	`\b(what\s+models|which\s+ai|available\s+models|list\s+models)\b`,
	`\b(ai\s+options|model\s+selection|choose\s+model)\b`,
)

var formatPatterns = compile(
	`\b(what\s+formats|file\s+types|supported\s+files|upload\s+types)\b`,
	`\b(can\s+i\s+upload|file\s+support|document\s+types)\b`,
)

var uploadPatterns = compile(
	`\b(how\s+to\s+upload|upload\s+documents|add\s+files|how\s+do\s+i\s+upload)\b`,
	`\b(upload\s+process|add\s+document|insert\s+file)\b`,
)

func compile(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile("(?i)" + p)
	}
	return res
}

// Classify assigns a query to an intent category. Matching is case
// insensitive and evaluated in a fixed priority order; the first matching
// bucket wins. A query matching nothing is a document query. Classify is a
// pure function: identical input always yields identical output.
func Classify(query string) Category {
	q := strings.ToLower(strings.TrimSpace(query))

	ordered := []struct {
		category Category
		patterns []*regexp.Regexp
	}{
		{CategoryGreeting, greetingPatterns},
		{CategoryHearMe, hearMePatterns},
		{CategoryCapability, capabilityPatterns},
		{CategoryModels, modelPatterns},
		{CategoryFormats, formatPatterns},
		{CategoryUpload, uploadPatterns},
	}

	for _, bucket := range ordered {
		for _, re := range bucket.patterns {
			if re.MatchString(q) {
				return bucket.category
			}
		}
	}
	return CategoryDocument
}

var greetingResponses = []string{
	"Hello! I'm your AI document assistant. I can help you find information in your uploaded documents or answer questions about the system. What would you like to know?",
	"Hi there! Welcome to your document search system. Upload some documents and I'll help you find answers within them. How can I assist you today?",
	"Hey! I'm here to help you search through your documents intelligently. Feel free to ask me anything about your uploaded files or how the system works.",
	"Hello! Ready to explore your documents together? I can search through your files and provide AI-powered answers. What's your question?",
}

var hearMeResponses = []string{
	"Yes, I can hear you! I'm here and ready to help. You can ask me questions about any documents you've uploaded, or I can help you understand how the system works.",
	"Loud and clear! I'm your AI assistant for document search and analysis. Upload some documents and start asking questions and I'll find the relevant information for you.",
	"I hear you perfectly! Ready to help you search through documents and find answers. Have you uploaded any documents yet?",
	"Yes, I'm listening! I specialize in helping you find information within your document library. What can I help you discover today?",
}

var capabilityResponses = []string{
	"I can help you with several things:\n\n" +
		"- Document processing: upload PDF, text, Markdown, JSON and CSV files\n" +
		"- Smart search: find relevant information using semantic search\n" +
		"- AI answers: responses generated by large language models\n" +
		"- Analytics: track your queries and system performance\n\n" +
		"Try uploading a document and asking me questions about it!",
	"Here's what I can do for you:\n\n" +
		"- Upload and process multiple document formats automatically\n" +
		"- Search within specific documents you select\n" +
		"- Generate comprehensive answers with source citations\n" +
		"- Track search accuracy and response times\n\n" +
		"What would you like to start with?",
	"I'm designed to be your intelligent document assistant:\n\n" +
		"- Drag and drop documents for instant processing\n" +
		"- Understand context and provide relevant answers\n" +
		"- Find information in seconds across all your files\n" +
		"- See how your queries perform over time\n\n" +
		"Ready to get started?",
}

var systemInfo = map[Category]string{
	CategoryModels:  "I have access to many AI models through OpenRouter, including Claude, GPT-4o, Gemini and Llama. The active model is configurable per query.",
	CategoryFormats: "I support PDF, Markdown (.md), text files (.txt), JSON data, and CSV spreadsheets. Just upload your files and I'll process them automatically.",
	CategoryUpload:  "To upload documents, send them to the documents endpoint or use the upload area on the home page. I'll process them automatically and make them searchable.",
}

// Respond produces a canned reply for conversational queries, optionally
// personalized with the caller-supplied document count (pass a negative
// count when unknown). It returns ok=false for document queries, signaling
// the caller to fall through to retrieval. Template selection is random;
// the category decision never is.
func Respond(query string, docCount int) (string, bool) {
	category := Classify(query)
	switch category {
	case CategoryGreeting:
		response := greetingResponses[rand.Intn(len(greetingResponses))]
		if docCount > 0 {
			response += fmt.Sprintf("\n\nI see you have %d %s in your library. Feel free to ask me questions about them!",
				docCount, pluralize("document", docCount))
		}
		return response, true
	case CategoryHearMe:
		response := hearMeResponses[rand.Intn(len(hearMeResponses))]
		if docCount == 0 {
			response += "\n\nTip: upload some documents first, then I can help you search through them!"
		}
		return response, true
	case CategoryCapability:
		return capabilityResponses[rand.Intn(len(capabilityResponses))], true
	case CategoryModels, CategoryFormats, CategoryUpload:
		return systemInfo[category], true
	default:
		return "", false
	}
}

func pluralize(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
