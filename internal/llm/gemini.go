// Package llm wraps the external text-generation service.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("empty response from model")

// Attachment is an inline file sent alongside the prompt.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Generator produces text for a prompt and optional inline attachments.
type Generator interface {
	Generate(ctx context.Context, prompt string, attachments ...Attachment) (string, error)
}

// Client is a Gemini-backed Generator.
type Client struct {
	client *genai.Client
	model  string
}

// Config selects the backend and model. An empty APIKey falls back to the
// GOOGLE_API_KEY / Vertex environment handled by the genai SDK.
type Config struct {
	APIKey string
	Model  string
}

// NewClient creates a Gemini client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	cc := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	}
	if cfg.APIKey != "" {
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{client: client, model: model}, nil
}

// Generate sends one user turn and returns the model text.
func (c *Client) Generate(ctx context.Context, prompt string, attachments ...Attachment) (string, error) {
	parts := []*genai.Part{{Text: prompt}}
	for _, a := range attachments {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: a.MIMEType, Data: a.Data},
		})
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }
