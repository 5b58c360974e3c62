package services

import (
	"fmt"
	"strings"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
)

// PromptComposer merges the user message, retrieved evidence and session
// history into one bounded generation request.
type PromptComposer struct {
	personaName    string
	yearsAhead     int
	maxContextSize int
}

// NewPromptComposer creates a PromptComposer. maxContextSize bounds the
// composed prompt in characters.
func NewPromptComposer(personaName string, yearsAhead, maxContextSize int) *PromptComposer {
	if personaName == "" {
		personaName = "me"
	}
	if yearsAhead <= 0 {
		yearsAhead = 1
	}
	return &PromptComposer{
		personaName:    personaName,
		yearsAhead:     yearsAhead,
		maxContextSize: maxContextSize,
	}
}

// Compose assembles the prompt sections in deterministic order: evidence in
// retrieval rank order, history chronological, the user message last. When
// the result exceeds the configured maximum, oldest history turns are dropped
// first, then lowest-ranked evidence. The user message is never dropped.
func (c *PromptComposer) Compose(userMessage string, docs []domain.Document, history []domain.Turn) (*domain.Prompt, error) {
	if userMessage == "" {
		return nil, fmt.Errorf("compose: empty message: %w", domain.ErrInvalidInput)
	}

	prompt := &domain.Prompt{
		Persona:  c.personaPrompt(),
		Evidence: formatEvidence(docs),
		History:  append([]domain.Turn(nil), history...),
		Question: userMessage,
	}

	if c.maxContextSize <= 0 {
		return prompt, nil
	}

	// Oldest history first
	for prompt.Size() > c.maxContextSize && len(prompt.History) > 0 {
		prompt.History = prompt.History[1:]
	}
	// Then lowest-ranked evidence
	for prompt.Size() > c.maxContextSize && len(prompt.Evidence) > 0 {
		prompt.Evidence = prompt.Evidence[:len(prompt.Evidence)-1]
	}
	// The persona framing goes before the question ever would
	if prompt.Size() > c.maxContextSize {
		prompt.Persona = ""
	}

	return prompt, nil
}

// personaPrompt frames the model as a future version of the persona
func (c *PromptComposer) personaPrompt() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a simulated FUTURE VERSION of %s, exactly %d year(s) from now.\n\n", c.personaName, c.yearsAhead)
	sb.WriteString("You only know what is in the provided context, built from their past activity history:\n")
	sb.WriteString("- summaries of work\n- collections\n- dates\n- authorship patterns\n\n")
	sb.WriteString("Your job is to:\n")
	fmt.Fprintf(&sb, "- Infer realistic future work, skills, and habits of %s based on this history.\n", c.personaName)
	fmt.Fprintf(&sb, "- Speak in the first person (\"I\") as if you are %s in the future.\n", c.personaName)
	sb.WriteString("- Be realistically optimistic, not sci-fi. Do not claim superhuman abilities.\n")
	sb.WriteString("- Use specific references from the context when helpful.\n")
	sb.WriteString("- Maintain continuity with the ongoing conversation when that helps.\n\n")
	fmt.Fprintf(&sb, "ALWAYS preface your answer with: \"Future-%s:\".", c.personaName)
	return sb.String()
}

// formatEvidence renders retrieved documents as readable snippets, keeping
// retrieval rank order.
func formatEvidence(docs []domain.Document) []string {
	if len(docs) == 0 {
		return nil
	}
	out := make([]string, len(docs))
	for i, d := range docs {
		header := fmt.Sprintf("[%s @ %s]", d.Metadata["collection"], d.Metadata["date"])
		out[i] = header + "\n" + d.Text
	}
	return out
}
