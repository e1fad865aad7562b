package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/citeline-ai/citeline/internal/core/domain"
	"github.com/citeline-ai/citeline/internal/core/ports/driven"
)

// citationPattern matches bracket citations like [1] or [12].
var citationPattern = regexp.MustCompile(`\[(\d+)\]`)

// Fallback prompt fragments, used when no prompt store is configured or a
// template is missing.
const (
	defaultAnswerSystem = "Answer ONLY using [CONTEXT]. If not present, reply exactly: not found.\n" +
		"Every sentence MUST end with [n] citations from [CONTEXT]. Do not invent sources. Be concise."

	defaultAnswerInstructions = "- Each sentence ends with citation(s) like [1] or [1][2]\n" +
		"- If unsupported, reply: not found"
)

// PromptBuilder assembles numbered, citation-instructing prompts from ranked
// passages and validates the citation discipline of generated answers.
type PromptBuilder struct {
	prompts driven.PromptStore // nil = built-in templates
}

// NewPromptBuilder creates a builder. prompts may be nil, in which case the
// built-in templates are used.
func NewPromptBuilder(prompts driven.PromptStore) *PromptBuilder {
	return &PromptBuilder{prompts: prompts}
}

// Build numbers the top-k ranked passages [1]..[k], appends a source trailer
// to each, and assembles the full prompt. The returned context map mirrors
// the numbering: entry i has index i+1 and identifies the cited passage.
func (b *PromptBuilder) Build(query string, ranked []domain.Passage, k int) (string, []domain.ContextMapEntry) {
	if k > len(ranked) {
		k = len(ranked)
	}

	numbered := make([]string, 0, k)
	cmap := make([]domain.ContextMapEntry, 0, k)
	for i, p := range ranked[:k] {
		numbered = append(numbered, fmt.Sprintf("[%d] %s (file: %s, chunk #%s)",
			i+1, strings.TrimSpace(p.Text), p.DocumentID, p.ID))
		cmap = append(cmap, domain.ContextMapEntry{
			Index:      i + 1,
			DocumentID: p.DocumentID,
			ChunkID:    p.ID,
			Score:      p.Score,
		})
	}

	prompt := fmt.Sprintf(`[SYSTEM]
%s

[CONTEXT]
%s

[QUESTION]
%s

[INSTRUCTIONS]
%s
`,
		b.template(driven.PromptAnswerSystem, defaultAnswerSystem),
		strings.Join(numbered, "\n\n"),
		query,
		b.template(driven.PromptAnswerInstructions, defaultAnswerInstructions))

	return prompt, cmap
}

// HasValidCitations reports whether every bracket citation in the answer
// references a context index in [1, k], and at least one citation exists.
// This is a syntactic acceptance gate: it rejects answers unsupported by
// construction of the citation contract, not answers that misquote a
// legitimately cited passage.
func (b *PromptBuilder) HasValidCitations(answer string, k int) bool {
	matches := citationPattern.FindAllStringSubmatch(answer, -1)
	if len(matches) == 0 {
		return false
	}
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > k {
			return false
		}
	}
	return true
}

func (b *PromptBuilder) template(name, fallback string) string {
	if b.prompts == nil {
		return fallback
	}
	tmpl, err := b.prompts.Load(name)
	if err != nil || strings.TrimSpace(tmpl) == "" {
		return fallback
	}
	return tmpl
}
