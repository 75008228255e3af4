// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verdict

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/smishguard/internal/llm"
	"github.com/pdiddy/smishguard/pkg/types"
)

type mockClassifier struct {
	response string
	err      error
	requests []llm.Request
}

func (m *mockClassifier) Complete(_ context.Context, req llm.Request) (string, error) {
	m.requests = append(m.requests, req)
	return m.response, m.err
}

func TestPromptEmbedsTranscript(t *testing.T) {
	p := Prompt("- SMS to be analyzed: hi\n- No URL in the SMS.\n")
	assert.True(t, strings.HasPrefix(p, "I want you to act as a spam detector"))
	assert.True(t, strings.HasSuffix(p, "Below is the information of the SMS:\n- SMS to be analyzed: hi\n- No URL in the SMS.\n"))
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		err          error
		wantCategory bool
		wantFallback bool
		wantReason   string
	}{
		{
			name:         "phishing",
			response:     "```json\n{\"brand_impersonated\":\"USPS\",\"URL\":\"https://dik.si/postal\",\"rationales\":\"The domain is unrelated to USPS.\",\"brief_reason\":\"Impersonates USPS\",\"category\":true,\"advice\":\"Do not click.\"}\n```",
			wantCategory: true,
			wantReason:   "Impersonates USPS",
		},
		{
			name:       "legitimate with string category",
			response:   `{"brand_impersonated":"","URL":"none","rationales":"A message between friends.","brief_reason":"Personal conversation","category":"False","advice":""}`,
			wantReason: "Personal conversation",
		},
		{
			name:         "model cannot set the fallback tag",
			response:     `{"category":false,"brief_reason":"ok","fallback":true}`,
			wantReason:   "ok",
			wantFallback: false,
		},
		{
			name:         "call fails",
			err:          errors.New("connection reset"),
			wantCategory: true,
			wantFallback: true,
			wantReason:   "Analysis failed",
		},
		{
			name:         "malformed answer",
			response:     "I think this is phishing.",
			wantCategory: true,
			wantFallback: true,
			wantReason:   "Analysis failed",
		},
		{
			name:         "missing category",
			response:     `{"brief_reason":"unsure"}`,
			wantCategory: true,
			wantFallback: true,
			wantReason:   "Analysis failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mc := &mockClassifier{response: tt.response, err: tt.err}
			e := New(mc, zaptest.NewLogger(t))

			v, prompt := e.Decide(context.Background(), "- SMS to be analyzed: x\n")

			assert.Equal(t, tt.wantCategory, v.Category)
			assert.Equal(t, tt.wantFallback, v.Fallback)
			assert.Equal(t, tt.wantReason, v.BriefReason)
			assert.Equal(t, Prompt("- SMS to be analyzed: x\n"), prompt)

			require.Len(t, mc.requests, 1)
			assert.True(t, mc.requests[0].JSON)
			assert.Equal(t, prompt, mc.requests[0].Turns[0].Text)
		})
	}
}

func TestFallbackDistinguishableFromModelVerdict(t *testing.T) {
	model := New(&mockClassifier{response: `{"category":true,"brief_reason":"Analysis failed","advice":"Exercise caution"}`}, nil)
	failed := New(&mockClassifier{err: errors.New("down")}, nil)

	mv, _ := model.Decide(context.Background(), "t")
	fv, _ := failed.Decide(context.Background(), "t")

	assert.Equal(t, mv.Category, fv.Category)
	assert.False(t, mv.Fallback)
	assert.True(t, fv.Fallback)
}

func TestExplain(t *testing.T) {
	mc := &mockClassifier{response: "  This message looks like a scam. The link does not belong to USPS.\n"}
	e := New(mc, zaptest.NewLogger(t))
	v := types.Verdict{Category: true, BriefReason: "Impersonates USPS"}

	got := e.Explain(context.Background(), "[US POSTAL] ...", v)

	assert.Equal(t, "This message looks like a scam. The link does not belong to USPS.", got)
	require.Len(t, mc.requests, 1)
	assert.False(t, mc.requests[0].JSON)
	text := mc.requests[0].Turns[0].Text
	assert.Contains(t, text, "The SMS message: [US POSTAL] ...")
	assert.Contains(t, text, `"brief_reason":"Impersonates USPS"`)
}

func TestExplainFallback(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{name: "call fails", err: errors.New("timeout")},
		{name: "empty answer", response: "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(&mockClassifier{response: tt.response, err: tt.err}, zaptest.NewLogger(t))
			assert.Equal(t, ExplanationFallback, e.Explain(context.Background(), "sms", types.Verdict{}))
		})
	}
}
