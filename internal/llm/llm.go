// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm is the contract with the language-model classification
// service. Stages depend on Classifier; OpenAIBackend and GeminiBackend
// implement it per the Strategy pattern.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Role is the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation sent to the classifier.
type Turn struct {
	Role Role
	Text string
}

// Image is an attachment for vision-capable models.
type Image struct {
	Data     []byte
	MIMEType string
}

// Request is one classification call.
type Request struct {
	// Model overrides the backend's default model when set.
	Model string

	Turns []Turn

	// JSON asks the service for strict structured output.
	JSON bool

	// Image is attached to the last user turn.
	Image *Image

	// MaxTokens caps the response length; 0 leaves it to the service.
	MaxTokens int
}

// UserPrompt builds a single-turn request.
func UserPrompt(text string) Request {
	return Request{Turns: []Turn{{Role: RoleUser, Text: text}}}
}

// Classifier sends a request to the classification service and returns the
// raw response text.
type Classifier interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrMalformed is returned by DecodeJSON when the response is not the
// structured data that was asked for.
var ErrMalformed = errors.New("malformed structured response")

// CleanJSON strips newlines and code-fence markers that models wrap around
// structured output.
func CleanJSON(raw string) string {
	s := strings.ReplaceAll(raw, "\n", "")
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// DecodeJSON cleans raw and decodes it into v.
func DecodeJSON(raw string, v any) error {
	cleaned := CleanJSON(raw)
	if cleaned == "" {
		return fmt.Errorf("%w: empty response", ErrMalformed)
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// CompleteJSON sends req with structured output enabled and decodes the
// response into v.
func CompleteJSON(ctx context.Context, c Classifier, req Request, v any) error {
	req.JSON = true
	raw, err := c.Complete(ctx, req)
	if err != nil {
		return err
	}
	return DecodeJSON(raw, v)
}
