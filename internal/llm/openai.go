// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/smishguard/internal/httputil"
)

// openaiAPIURL is the chat completions endpoint. Package-level var for test substitution.
var openaiAPIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIBackend calls the OpenAI chat completions API.
type OpenAIBackend struct {
	APIKey     string
	Model      string
	MaxRetries int
	Client     *http.Client
}

type openaiRequest struct {
	Model          string          `json:"model"`
	Messages       []openaiMessage `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *openaiFormat   `json:"response_format,omitempty"`
}

type openaiFormat struct {
	Type string `json:"type"`
}

// openaiMessage carries either plain string content or a list of parts.
type openaiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openaiPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openaiImageURL `json:"image_url,omitempty"`
}

type openaiImageURL struct {
	URL string `json:"url"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends req to the chat completions API.
func (o *OpenAIBackend) Complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = o.Model
	}

	body := openaiRequest{
		Model:     model,
		Messages:  openaiMessages(req),
		MaxTokens: req.MaxTokens,
	}
	if req.JSON {
		body.ResponseFormat = &openaiFormat{Type: "json_object"}
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.APIKey)

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, httpReq, o.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("OpenAI API returned %d: %s", resp.StatusCode, string(b))
	}

	var oResp openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return "", fmt.Errorf("decoding OpenAI response: %w", err)
	}
	if len(oResp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI API returned no choices")
	}
	return oResp.Choices[0].Message.Content, nil
}

// openaiMessages converts turns to API messages. The image, if any, is
// attached to the last user turn as a data URL.
func openaiMessages(req Request) []openaiMessage {
	lastUser := -1
	for i, t := range req.Turns {
		if t.Role == RoleUser {
			lastUser = i
		}
	}

	msgs := make([]openaiMessage, 0, len(req.Turns))
	for i, t := range req.Turns {
		if req.Image != nil && i == lastUser {
			msgs = append(msgs, openaiMessage{
				Role: string(t.Role),
				Content: []openaiPart{
					{Type: "text", Text: t.Text},
					{Type: "image_url", ImageURL: &openaiImageURL{URL: dataURL(req.Image)}},
				},
			})
			continue
		}
		msgs = append(msgs, openaiMessage{Role: string(t.Role), Content: t.Text})
	}
	return msgs
}

func dataURL(img *Image) string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
