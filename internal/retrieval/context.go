package retrieval

import (
	"fmt"
	"strings"
)

// Chunk is one retrieved piece of knowledge base text.
type Chunk struct {
	DocID  string
	Title  string
	Source string
	Text   string
	Score  float64
	Rank   int
}

// PromptContext is the ordered set of chunks selected for one chat turn,
// ready to be rendered into the system prompt.
type PromptContext struct {
	Chunks []Chunk
}

// Empty reports whether no chunks were selected.
func (pc PromptContext) Empty() bool {
	return len(pc.Chunks) == 0
}

// Sources returns the unique source document identifiers, in rank order.
func (pc PromptContext) Sources() []string {
	seen := make(map[string]bool, len(pc.Chunks))
	var out []string
	for _, c := range pc.Chunks {
		if !seen[c.DocID] {
			seen[c.DocID] = true
			out = append(out, c.DocID)
		}
	}
	return out
}

// Render produces the context block handed to the model: numbered documents
// with title, source and relevance score.
func (pc PromptContext) Render() string {
	if pc.Empty() {
		return ""
	}

	var sb strings.Builder
	for i, c := range pc.Chunks {
		fmt.Fprintf(&sb, "Document %d: %s\n", i+1, c.Title)
		fmt.Fprintf(&sb, "Source: %s\n", c.Source)
		fmt.Fprintf(&sb, "Relevance Score: %.3f\n", c.Score)
		fmt.Fprintf(&sb, "Content: %s\n", c.Text)
		sb.WriteString("---\n")
	}
	return sb.String()
}

// renderedSize is the number of characters the chunk contributes to the
// rendered context, used for budget accounting.
func renderedSize(c Chunk) int {
	// Header lines are small and roughly constant; count them so the budget
	// reflects what actually reaches the model.
	return len(c.Title) + len(c.Source) + len(c.Text) + 64
}
