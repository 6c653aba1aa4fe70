// Package vertex is a Vertex AI backed llm.Generator using the unified
// Google Gen AI SDK and application default credentials.
package vertex

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"tailorhire-api/internal/llm"
)

// Client implements llm.Generator for Gemini models on Vertex AI.
type Client struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewClient creates a Vertex AI client bound to project and location.
func NewClient(ctx context.Context, project, location, model string) (*Client, error) {
	if strings.TrimSpace(project) == "" {
		return nil, fmt.Errorf("VERTEX_PROJECT is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Vertex AI")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  project,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}
	return &Client{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0.2),
			ResponseMIMEType: "application/json",
		},
	}, nil
}

// Name implements llm.Generator.
func (c *Client) Name() string {
	return "vertex:" + c.model
}

// Generate sends prompt and returns the response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), c.config)
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text in response (finish reason %s)", resp.Candidates[0].FinishReason)
	}
	return text, nil
}

var _ llm.Generator = (*Client)(nil)
