// Package llm is a minimal client for OpenAI-compatible chat completion
// APIs. It covers exactly what the commit workflow needs: one request, one
// response, the first choice's message content.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zhubert/aic/logger"
)

// defaultTimeout bounds a single completion request. Commit-message sized
// completions finish well inside this; anything longer is a stuck server.
const defaultTimeout = 120 * time.Second

// Message is a single chat message in the OpenAI wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body for the chat completions endpoint.
type chatRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

// chatResponse is the subset of the response body the client consumes.
type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client calls an OpenAI-compatible chat completions API.
type Client struct {
	baseURL    string
	token      string
	model      string
	httpClient *http.Client
}

// NewClient creates a client for the given endpoint. baseURL is the API
// root (e.g. https://api.openai.com); trailing slashes are normalized.
func NewClient(baseURL, token, model string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		model:      model,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// endpoint returns the full chat completions URL.
func (c *Client) endpoint() string {
	return c.baseURL + "/v1/chat/completions"
}

// Complete sends the messages and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	return c.complete(ctx, chatRequest{Model: c.model, Messages: messages})
}

// GenerateCommitMessage asks the model for a commit message given a fully
// assembled system/user prompt pair.
func (c *Client) GenerateCommitMessage(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	content, err := c.Complete(ctx, []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	})
	if err != nil {
		return "", err
	}

	message := strings.TrimSpace(content)
	if message == "" {
		return "", fmt.Errorf("API returned an empty commit message")
	}
	return message, nil
}

// Ping issues a minimal completion request to verify connectivity and
// credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.complete(ctx, chatRequest{
		Model:     c.model,
		Messages:  []Message{{Role: "user", Content: "ping"}},
		MaxTokens: 1,
	})
	return err
}

func (c *Client) complete(ctx context.Context, request chatRequest) (string, error) {
	log := logger.WithComponent("llm").With("requestID", uuid.NewString())

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	log.Debug("sending completion request", "endpoint", c.endpoint(), "model", request.Model)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request to API at %s: %w", c.endpoint(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read API response: %w", err)
	}

	log.Debug("completion response", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("API request failed (%s): %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}

	return parsed.Choices[0].Message.Content, nil
}
