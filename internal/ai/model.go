// Package ai generates weekly summaries and answers natural-language
// searches over journal entries with a hosted language model.
package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured
const DefaultModel = "gemini-2.0-flash"

// ErrNotConfigured is returned when no API key is available
var ErrNotConfigured = errors.New("ai: GEMINI_API_KEY not configured")

// Model turns a prompt into text
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gemini is a Model backed by the Gemini API
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client for apiKey. An empty model name means
// DefaultModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: create client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Name returns the model name requests are sent to
func (g *Gemini) Name() string {
	return g.model
}

// Generate sends prompt as a single user turn and returns the reply text
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("ai: generate: %w", err)
	}
	return resp.Text(), nil
}
