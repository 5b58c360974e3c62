package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrompt_Size(t *testing.T) {
	p := &Prompt{
		Persona:  "abcd",
		Evidence: []string{"12345", "678"},
		History: []Turn{
			{Role: RoleUser, Text: "hi"},
			{Role: RoleAssistant, Text: "hello"},
		},
		Question: "q",
	}

	assert.Equal(t, 4+5+3+2+5+1, p.Size())
}

func TestPrompt_Messages_Ordering(t *testing.T) {
	p := &Prompt{
		Persona:  "persona",
		Evidence: []string{"snippet-1", "snippet-2"},
		History: []Turn{
			{Role: RoleUser, Text: "first question"},
			{Role: RoleAssistant, Text: "first answer"},
		},
		Question: "second question",
	}

	msgs := p.Messages()

	assert.Len(t, msgs, 5)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "persona", msgs[0].Content)
	assert.Equal(t, "system", msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "snippet-1")
	assert.Contains(t, msgs[1].Content, "snippet-2")
	assert.Equal(t, "user", msgs[2].Role)
	assert.Equal(t, "assistant", msgs[3].Role)
	assert.Equal(t, PromptMessage{Role: "user", Content: "second question"}, msgs[4])
}

func TestPrompt_Messages_EmptySections(t *testing.T) {
	p := &Prompt{Question: "only question"}

	msgs := p.Messages()

	assert.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)
}

func TestIndexState_Queryable(t *testing.T) {
	assert.False(t, IndexNotStarted.Queryable())
	assert.False(t, IndexRunning.Queryable())
	assert.True(t, IndexReady.Queryable())
	assert.True(t, IndexReadyWithErrors.Queryable())
}
