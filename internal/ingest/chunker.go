package ingest

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is how many trailing characters of one chunk are
	// repeated at the start of the next.
	DefaultChunkOverlap = 200

	// Sentence fragments shorter than this are merged away as noise.
	minSentenceLen = 10
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Chunker splits document text into overlapping chunks sized for embedding.
// Boundaries follow sentences where possible so chunks stay coherent.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
	}
	return &Chunker{size: size, overlap: overlap}
}

// Chunk splits text into chunks of roughly the target size. Empty or
// whitespace-only input yields no chunks.
func (c *Chunker) Chunk(text string) []string {
	cleaned := cleanText(text)
	if cleaned == "" {
		return nil
	}

	sentences := splitSentences(cleaned)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+len(sentence) > c.size {
			chunk := strings.TrimSpace(current.String())
			chunks = append(chunks, chunk)

			current.Reset()
			if c.overlap > 0 && len(chunk) > c.overlap {
				current.WriteString(strings.TrimSpace(chunk[len(chunk)-c.overlap:]))
			}
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}

	if tail := strings.TrimSpace(current.String()); tail != "" {
		chunks = append(chunks, tail)
	}
	return chunks
}

// cleanText collapses runs of whitespace so chunk sizing is stable across
// formatting variants of the same document.
func cleanText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// splitSentences breaks text at sentence terminators followed by whitespace
// and an uppercase letter. Fragments below the minimum length are glued to
// the following sentence so abbreviations do not produce noise chunks.
func splitSentences(text string) []string {
	var raw []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes)-1; i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		if !unicode.IsSpace(runes[i+1]) {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j < len(runes) && unicode.IsUpper(runes[j]) {
			raw = append(raw, string(runes[start:i+1]))
			start = j
			i = j - 1
		}
	}
	if start < len(runes) {
		raw = append(raw, string(runes[start:]))
	}

	var out []string
	carry := ""
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if carry != "" {
			s = carry + " " + s
			carry = ""
		}
		if len(s) <= minSentenceLen {
			carry = s
			continue
		}
		out = append(out, s)
	}
	if carry != "" {
		if len(out) > 0 {
			out[len(out)-1] += " " + carry
		} else {
			out = append(out, carry)
		}
	}
	return out
}
