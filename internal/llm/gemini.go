// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// geminiBaseURL overrides the Gemini API host. Empty uses the SDK default;
// tests point it at an httptest server.
var geminiBaseURL = ""

// GeminiBackend calls the Gemini API through the genai SDK.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a Gemini client for the given key and default model.
func NewGeminiBackend(ctx context.Context, apiKey, model string, httpClient *http.Client) (*GeminiBackend, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if geminiBaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: geminiBaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiBackend{client: client, model: model}, nil
}

// Complete sends req to Models.GenerateContent. System turns become the
// system instruction; assistant turns are sent with the model role.
func (g *GeminiBackend) Complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	config := &genai.GenerateContentConfig{}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	var system []string
	lastUser := -1
	for i, t := range req.Turns {
		if t.Role == RoleUser {
			lastUser = i
		}
	}

	var contents []*genai.Content
	for i, t := range req.Turns {
		switch t.Role {
		case RoleSystem:
			system = append(system, t.Text)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(t.Text, genai.RoleModel))
		default:
			parts := []*genai.Part{genai.NewPartFromText(t.Text)}
			if req.Image != nil && i == lastUser {
				mime := req.Image.MIMEType
				if mime == "" {
					mime = "image/png"
				}
				parts = append(parts, genai.NewPartFromBytes(req.Image.Data, mime))
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	if len(contents) == 0 {
		return "", fmt.Errorf("request has no user content")
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("Gemini API returned empty content")
	}
	return text, nil
}
