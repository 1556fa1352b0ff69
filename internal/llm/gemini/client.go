// Package gemini adapts the Gemini API to llm.Generator.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"jobtracker-backend/internal/llm"
	"jobtracker-backend/internal/shared/telemetry"
)

const provider = "gemini"

// DefaultModel is used when LLM_MODEL is empty.
const DefaultModel = "gemini-2.5-flash"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Generator with a single GenerateContent call per request.
type Client struct {
	models contentGenerator
	model  string
}

// NewClient constructs a Gemini client for the Gemini API backend.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{models: client.Models, model: model}, nil
}

// Generate returns the text of the first candidate.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.2)),
		ResponseMIMEType: "application/json",
	}
	if strings.TrimSpace(req.System) != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(req.UserContent()), config)
	if err != nil {
		return "", classify(err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &llm.Error{Kind: llm.KindInvalidResponse, Provider: provider, Message: "no candidates in response"}
	}

	if resp.UsageMetadata != nil {
		telemetry.Info("llm.response", map[string]any{
			"provider":          provider,
			"model":             c.model,
			"operation":         req.Operation,
			"prompt_tokens":     resp.UsageMetadata.PromptTokenCount,
			"completion_tokens": resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens":      resp.UsageMetadata.TotalTokenCount,
		})
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &llm.Error{Kind: llm.KindInvalidResponse, Provider: provider, Message: "empty response text"}
	}
	return text, nil
}

// classify maps API errors by status code and RESOURCE_EXHAUSTED status instead of message text.
func classify(err error) *llm.Error {
	apiErr, ok := asAPIError(err)
	if !ok {
		return llm.TransportError(provider, err)
	}
	kind := llm.KindForStatus(apiErr.Code)
	if strings.EqualFold(apiErr.Status, "RESOURCE_EXHAUSTED") {
		kind = llm.KindQuota
	}
	return &llm.Error{
		Kind:       kind,
		Provider:   provider,
		StatusCode: apiErr.Code,
		Message:    apiErr.Message,
		Err:        err,
	}
}

func asAPIError(err error) (genai.APIError, bool) {
	var value genai.APIError
	if errors.As(err, &value) {
		return value, true
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return genai.APIError{}, false
}

var _ llm.Generator = (*Client)(nil)
