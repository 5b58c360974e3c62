package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
)

func TestNewGroqLLM_RequiresAPIKey(t *testing.T) {
	_, err := NewGroqLLM("", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewGroqLLM_Defaults(t *testing.T) {
	svc, err := NewGroqLLM("key", "", "")
	require.NoError(t, err)
	assert.Equal(t, "llama-3.3-70b-versatile", svc.Model())
}

func TestGroqLLM_Generate(t *testing.T) {
	var captured chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "chatcmpl-1",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": "Future-me says hi"},
					"finish_reason": "stop",
				},
			},
		})
	}))
	defer server.Close()

	svc, err := NewGroqLLM("key", "test-model", server.URL)
	require.NoError(t, err)

	prompt := &domain.Prompt{
		Persona:  "You are a future version of dev.",
		Evidence: []string{"[github @ 2024-03-01]\nfix retry loop"},
		History: []domain.Turn{
			{Role: domain.RoleUser, Text: "hello"},
			{Role: domain.RoleAssistant, Text: "hi"},
		},
		Question: "what did I work on?",
	}

	reply, err := svc.Generate(context.Background(), prompt)
	require.NoError(t, err)
	assert.Equal(t, "Future-me says hi", reply)

	assert.Equal(t, "test-model", captured.Model)
	require.Len(t, captured.Messages, 5)
	assert.Equal(t, "system", captured.Messages[0].Role)
	last := captured.Messages[len(captured.Messages)-1]
	assert.Equal(t, "user", last.Role)
	assert.Equal(t, "what did I work on?", last.Content)
}

func TestGroqLLM_Generate_NilPrompt(t *testing.T) {
	svc, err := NewGroqLLM("key", "", "")
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGroqLLM_Generate_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "chatcmpl-1", "choices": []interface{}{}})
	}))
	defer server.Close()

	svc, err := NewGroqLLM("key", "", server.URL)
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), &domain.Prompt{Question: "q"})
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestGroqLLM_Generate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "model overloaded", "type": "server_error"},
		})
	}))
	defer server.Close()

	svc, err := NewGroqLLM("key", "", server.URL)
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), &domain.Prompt{Question: "q"})
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
	assert.Contains(t, err.Error(), "model overloaded")
}
