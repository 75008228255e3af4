// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```\n", `{"a": 1}`},
		{"surrounding space", "  \n {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.in))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Summary string `json:"summary"`
	}
	require.NoError(t, DecodeJSON("```json\n{\"summary\": \"a login page\"}\n```", &v))
	assert.Equal(t, "a login page", v.Summary)

	err := DecodeJSON("I cannot help with that.", &v)
	assert.ErrorIs(t, err, ErrMalformed)

	err = DecodeJSON("```\n```", &v)
	assert.ErrorIs(t, err, ErrMalformed)
}

type stubClassifier struct {
	got  Request
	resp string
	err  error
}

func (s *stubClassifier) Complete(_ context.Context, req Request) (string, error) {
	s.got = req
	return s.resp, s.err
}

func TestCompleteJSONSetsFlag(t *testing.T) {
	stub := &stubClassifier{resp: `{"ok": true}`}
	var v struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, CompleteJSON(context.Background(), stub, UserPrompt("hi"), &v))
	assert.True(t, stub.got.JSON)
	assert.True(t, v.OK)
}

func TestOpenAIBackend(t *testing.T) {
	var captured map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices": [{"message": {"role": "assistant", "content": "{\"is_URL\": false}"}}]}`)
	}))
	defer ts.Close()

	old := openaiAPIURL
	openaiAPIURL = ts.URL
	defer func() { openaiAPIURL = old }()

	b := &OpenAIBackend{APIKey: "test-key", Model: "gpt-4o", Client: ts.Client()}
	req := UserPrompt("classify this")
	req.JSON = true
	got, err := b.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, `{"is_URL": false}`, got)

	assert.Equal(t, "gpt-4o", captured["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, captured["response_format"])
	_, hasMax := captured["max_tokens"]
	assert.False(t, hasMax)
}

func TestOpenAIBackendImage(t *testing.T) {
	var captured openaiRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string       `json:"role"`
				Content []openaiPart `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		captured.Model = raw.Model
		captured.MaxTokens = raw.MaxTokens
		require.Len(t, raw.Messages, 1)
		require.Len(t, raw.Messages[0].Content, 2)
		assert.Equal(t, "describe", raw.Messages[0].Content[0].Text)
		assert.True(t, strings.HasPrefix(raw.Messages[0].Content[1].ImageURL.URL, "data:image/png;base64,"))
		io.WriteString(w, `{"choices": [{"message": {"content": "A parcel tracking page."}}]}`)
	}))
	defer ts.Close()

	old := openaiAPIURL
	openaiAPIURL = ts.URL
	defer func() { openaiAPIURL = old }()

	b := &OpenAIBackend{APIKey: "k", Model: "gpt-4o", Client: ts.Client()}
	req := UserPrompt("describe")
	req.Model = "gpt-4o-mini"
	req.MaxTokens = 300
	req.Image = &Image{Data: []byte{0x89, 'P', 'N', 'G'}, MIMEType: "image/png"}
	got, err := b.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "A parcel tracking page.", got)
	assert.Equal(t, "gpt-4o-mini", captured.Model)
	assert.Equal(t, 300, captured.MaxTokens)
}

func TestOpenAIBackendErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		errPart string
	}{
		{"server error", http.StatusInternalServerError, `{"error": "boom"}`, "returned 500"},
		{"no choices", http.StatusOK, `{"choices": []}`, "no choices"},
		{"bad json", http.StatusOK, `not json`, "decoding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer ts.Close()

			old := openaiAPIURL
			openaiAPIURL = ts.URL
			defer func() { openaiAPIURL = old }()

			b := &OpenAIBackend{APIKey: "k", Model: "m", Client: ts.Client()}
			_, err := b.Complete(context.Background(), UserPrompt("x"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestGeminiBackend(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"summary\": \"ok\"}"}]}}]}`)
	}))
	defer ts.Close()

	old := geminiBaseURL
	geminiBaseURL = ts.URL + "/"
	defer func() { geminiBaseURL = old }()

	g, err := NewGeminiBackend(context.Background(), "gem-key", "gemini-2.0-flash", ts.Client())
	require.NoError(t, err)

	req := Request{
		Turns: []Turn{
			{Role: RoleSystem, Text: "You are a summarizer."},
			{Role: RoleUser, Text: "Summarize this."},
		},
		JSON: true,
	}
	got, err := g.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, `{"summary": "ok"}`, got)
	assert.True(t, strings.HasSuffix(gotPath, "gemini-2.0-flash:generateContent"), gotPath)
	assert.Contains(t, gotBody, "systemInstruction")
}

func TestGeminiBackendRejectsEmptyConversation(t *testing.T) {
	old := geminiBaseURL
	geminiBaseURL = "http://127.0.0.1:1/"
	defer func() { geminiBaseURL = old }()

	g, err := NewGeminiBackend(context.Background(), "k", "m", nil)
	require.NoError(t, err)
	_, err = g.Complete(context.Background(), Request{Turns: []Turn{{Role: RoleSystem, Text: "only system"}}})
	assert.ErrorContains(t, err, "no user content")
}
