package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const defaultModel = "gpt-4o-mini"

// Client talks to an OpenAI-compatible chat completion endpoint. It is the
// only suspension point in the Normalizer besides the optional cropper.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// NewClient builds a Client. baseURL should point at the
// "/chat/completions" endpoint of an OpenAI-compatible provider.
func NewClient(baseURL, apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		maxRetries: 2,
	}
}

// Configured reports whether the client has enough to make a call.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

// Complete sends a single system+user exchange and returns the assistant's
// raw content string (expected to be a JSON object, per the frozen system
// prompt's contract). Low temperature, JSON response mode, bounded
// retries with backoff; callers are expected to fall back to the
// rule-based provider on any returned error.
func (c *Client) Complete(ctx context.Context, systemPrompt, userMessage string, temperature float64, maxTokens int) (string, error) {
	if !c.Configured() {
		return "", newAPIError("normalizer not configured", nil)
	}

	reqBody := chatRequest{
		Model:       c.model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", newAPIError("marshal request", err)
	}

	resp, err := c.retryWithBackoff(ctx, func() (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		return c.httpClient.Do(httpReq)
	})
	if err != nil {
		return "", newAPIError("send request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", newAPIError(fmt.Sprintf("normalizer returned status %d: %s", resp.StatusCode, string(b)), nil)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", newAPIError("decode response", err)
	}
	if len(parsed.Choices) == 0 {
		return "", newAPIError("no choices in normalizer response", nil)
	}
	return parsed.Choices[0].Message.Content, nil
}

// retryWithBackoff retries a request with exponential backoff. The LM call
// is the only network request in the pipeline worth retrying this way.
func (c *Client) retryWithBackoff(ctx context.Context, do func() (*http.Response, error)) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(math.Pow(2, float64(attempt))) * 200 * time.Millisecond
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		resp, err := do()
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if err != nil {
			lastErr = err
			continue
		}
		lastErr = fmt.Errorf("server error status %d", resp.StatusCode)
		resp.Body.Close()
	}
	return nil, lastErr
}
