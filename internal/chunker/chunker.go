// Package chunker provides overlapping word-window text chunking.
package chunker

import "strings"

// DefaultMaxWords is the default window size in words.
const DefaultMaxWords = 220

// DefaultOverlapWords is the default overlap between adjacent windows.
const DefaultOverlapWords = 40

// Chunker splits raw text into overlapping word windows suitable for
// embedding and citation. Overlap keeps sentence boundaries from vanishing
// entirely between adjacent chunks.
type Chunker struct {
	maxWords     int
	overlapWords int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxWords sets the window size in words.
func WithMaxWords(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxWords = n
		}
	}
}

// WithOverlapWords sets the overlap between adjacent windows in words.
func WithOverlapWords(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlapWords = n
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxWords:     DefaultMaxWords,
		overlapWords: DefaultOverlapWords,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxWords returns the configured window size.
func (c *Chunker) MaxWords() int { return c.maxWords }

// OverlapWords returns the configured overlap.
func (c *Chunker) OverlapWords() int { return c.overlapWords }

// Chunk slides a window of maxWords over the whitespace-split words of text,
// advancing maxWords-overlapWords per step. The final window may be shorter.
// Empty or whitespace-only input yields no chunks.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	n := len(words)
	if n == 0 {
		return nil
	}

	chunks := make([]string, 0, n/max(1, c.maxWords-c.overlapWords)+1)
	i := 0
	for i < n {
		j := min(i+c.maxWords, n)
		chunks = append(chunks, strings.Join(words[i:j], " "))
		if j == n {
			break
		}
		next := j - c.overlapWords
		// The window must always advance, even when overlap >= maxWords.
		if next <= i {
			next = i + 1
		}
		i = next
	}
	return chunks
}
