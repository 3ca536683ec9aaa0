package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FormatJSON asks Ollama to constrain the reply to a JSON document.
const FormatJSON = "json"

// OllamaClient generates chat completions via the Ollama API.
type OllamaClient struct {
	baseURL    string
	model      string
	format     string
	httpClient *http.Client
}

// NewOllamaClient creates a chat client for one model. format is either empty
// or FormatJSON; timeout bounds a single request.
func NewOllamaClient(baseURL, model, format string, timeout time.Duration) *OllamaClient {
	if timeout <= 0 {
		timeout = 120 * time.Second // LLM generation can be slow
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		format:  format,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Model returns the model identifier sent with every request.
func (c *OllamaClient) Model() string {
	return c.model
}

// chatRequest is the request body for Ollama /api/chat.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Format   string    `json:"format,omitempty"`
}

// chatResponse is the response body from Ollama /api/chat.
type chatResponse struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

// Complete sends the messages and returns the assistant reply. It makes a
// single attempt; errors are returned to the caller unchanged in kind.
func (c *OllamaClient) Complete(ctx context.Context, messages []Message) (Result, error) {
	reqBody := chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Format:   c.format,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("ollama chat: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("ollama chat: status %d: %s", resp.StatusCode, string(body))
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{}, fmt.Errorf("decode chat response: %w", err)
	}

	content := strings.TrimSpace(result.Message.Content)
	if content == "" {
		return Result{}, fmt.Errorf("empty response from ollama")
	}

	if c.format == FormatJSON && json.Valid([]byte(content)) {
		return StructuredResult(json.RawMessage(content)), nil
	}
	return TextResult(content), nil
}

// HealthCheck verifies Ollama is reachable.
func (c *OllamaClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("ollama health check: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health check: status %d", resp.StatusCode)
	}
	return nil
}
