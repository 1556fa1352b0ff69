// Package openai adapts OpenAI-compatible chat completion APIs to llm.Generator.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"jobtracker-backend/internal/llm"
	"jobtracker-backend/internal/shared/telemetry"
)

const (
	provider       = "openai"
	DefaultBaseURL = "https://api.openai.com/v1"
)

// Client implements llm.Generator using the Chat Completions endpoint.
type Client struct {
	http  *resty.Client
	model string
}

// NewClient constructs a client. baseURL may point at any OpenAI-compatible gateway.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		httpClient.SetTimeout(timeout)
	}
	return &Client{http: httpClient, model: model}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float32        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

// Generate sends one chat completion and returns the message content.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserContent()})

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:          c.model,
			Messages:       messages,
			Temperature:    0.2,
			ResponseFormat: responseFormat{Type: "json_object"},
		}).
		Post("/chat/completions")
	if err != nil {
		return "", llm.TransportError(provider, err)
	}

	body := resp.String()
	if resp.IsError() {
		return "", classify(resp.StatusCode(), body)
	}

	logUsage(c.model, req.Operation, body)

	content := strings.TrimSpace(gjson.Get(body, "choices.0.message.content").String())
	if content == "" {
		return "", &llm.Error{
			Kind:       llm.KindInvalidResponse,
			Provider:   provider,
			StatusCode: resp.StatusCode(),
			Message:    "response missing message content",
		}
	}
	return content, nil
}

// classify maps an error response to a structured error. Quota exhaustion is reported
// either as 429 or as an insufficient_quota error code.
func classify(status int, body string) *llm.Error {
	message := gjson.Get(body, "error.message").String()
	if message == "" {
		message = http.StatusText(status)
	}
	kind := llm.KindForStatus(status)
	code := gjson.Get(body, "error.code").String()
	errType := gjson.Get(body, "error.type").String()
	if code == "insufficient_quota" || errType == "insufficient_quota" || code == "rate_limit_exceeded" {
		kind = llm.KindQuota
	}
	return &llm.Error{Kind: kind, Provider: provider, StatusCode: status, Message: message}
}

func logUsage(model, operation, body string) {
	usage := gjson.Get(body, "usage")
	fields := map[string]any{
		"provider":  provider,
		"model":     model,
		"operation": operation,
	}
	if usage.Exists() {
		fields["prompt_tokens"] = usage.Get("prompt_tokens").Int()
		fields["completion_tokens"] = usage.Get("completion_tokens").Int()
		fields["total_tokens"] = usage.Get("total_tokens").Int()
	}
	telemetry.Info("llm.response", fields)
}

var _ llm.Generator = (*Client)(nil)
