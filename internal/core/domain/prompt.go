package domain

import "strings"

// PromptMessage is one chat-style message in a serialized generation request.
type PromptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Prompt is a composed generation request assembled from named sections.
// Sections are kept structured until serialization so that truncation can
// operate on whole sections instead of string surgery.
type Prompt struct {
	// Persona is the system framing (who the model speaks as)
	Persona string

	// Evidence holds formatted retrieved snippets in retrieval rank order
	Evidence []string

	// History holds prior turns in chronological order
	History []Turn

	// Question is the current user message, always present verbatim
	Question string
}

// Size returns the total character count of all sections. This is the value
// bounded by the configured maximum context size.
func (p *Prompt) Size() int {
	n := len(p.Persona) + len(p.Question)
	for _, e := range p.Evidence {
		n += len(e)
	}
	for _, t := range p.History {
		n += len(t.Text)
	}
	return n
}

// Messages serializes the prompt into chat messages with deterministic
// ordering: persona, evidence, history, question last.
func (p *Prompt) Messages() []PromptMessage {
	msgs := make([]PromptMessage, 0, len(p.History)+3)
	if p.Persona != "" {
		msgs = append(msgs, PromptMessage{Role: "system", Content: p.Persona})
	}
	if len(p.Evidence) > 0 {
		msgs = append(msgs, PromptMessage{
			Role:    "system",
			Content: "Here are some relevant snippets from my past activity:\n\n" + strings.Join(p.Evidence, "\n\n"),
		})
	}
	for _, t := range p.History {
		msgs = append(msgs, PromptMessage{Role: string(t.Role), Content: t.Text})
	}
	msgs = append(msgs, PromptMessage{Role: "user", Content: p.Question})
	return msgs
}
