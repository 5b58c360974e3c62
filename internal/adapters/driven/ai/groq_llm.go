package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
	"github.com/futureme-labs/futureme-core/internal/core/ports/driven"
)

// Ensure GroqLLM implements GenerationService
var _ driven.GenerationService = (*GroqLLM)(nil)

// GroqLLM implements GenerationService against Groq's
// OpenAI-compatible chat completions API.
type GroqLLM struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	client      *http.Client
}

// NewGroqLLM creates a new Groq generation service
func NewGroqLLM(apiKey, model, baseURL string) (*GroqLLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: Groq API key is required", domain.ErrInvalidInput)
	}

	if model == "" {
		model = "llama-3.3-70b-versatile"
	}

	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}

	return &GroqLLM{
		apiKey:      apiKey,
		model:       model,
		baseURL:     baseURL,
		temperature: 0.8,
		maxTokens:   1024,
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
	}, nil
}

// chatCompletionRequest is the request body for the chat completions API
type chatCompletionRequest struct {
	Model       string                 `json:"model"`
	Messages    []domain.PromptMessage `json:"messages"`
	Temperature float64                `json:"temperature,omitempty"`
	MaxTokens   int                    `json:"max_tokens,omitempty"`
}

// chatCompletionResponse is the response from the chat completions API
type chatCompletionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Generate sends the composed prompt to the model and returns its reply.
func (g *GroqLLM) Generate(ctx context.Context, prompt *domain.Prompt) (string, error) {
	if prompt == nil {
		return "", fmt.Errorf("%w: prompt is required", domain.ErrInvalidInput)
	}

	reqBody := chatCompletionRequest{
		Model:       g.model,
		Messages:    prompt.Messages(),
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	resp, err := g.doRequest(ctx, reqBody)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", domain.ErrGenerationUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

// Model returns the model name being used
func (g *GroqLLM) Model() string {
	return g.model
}

// Ping verifies the generation service is reachable
func (g *GroqLLM) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", g.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", domain.ErrGenerationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: models endpoint returned status %d", domain.ErrGenerationUnavailable, resp.StatusCode)
	}
	return nil
}

// Close releases resources held by the generation service
func (g *GroqLLM) Close() error {
	g.client.CloseIdleConnections()
	return nil
}

// doRequest makes a request to the chat completions API
func (g *GroqLLM) doRequest(ctx context.Context, reqBody chatCompletionRequest) (*chatCompletionResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", domain.ErrGenerationUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrGenerationUnavailable, err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", domain.ErrGenerationUnavailable, err)
	}

	if chatResp.Error != nil {
		return nil, fmt.Errorf("%w: Groq API error: %s (type: %s, code: %s)",
			domain.ErrGenerationUnavailable, chatResp.Error.Message, chatResp.Error.Type, chatResp.Error.Code)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: Groq API returned status %d", domain.ErrGenerationUnavailable, resp.StatusCode)
	}

	return &chatResp, nil
}
