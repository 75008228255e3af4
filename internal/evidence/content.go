// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/PuerkitoBio/goquery"
	"github.com/jaytaylor/html2text"

	"github.com/pdiddy/smishguard/internal/httputil"
	"github.com/pdiddy/smishguard/internal/llm"
)

// MaxContentChars is the number of characters of rendered page text kept.
const MaxContentChars = 10000

// NoContentText replaces both the page text and its summary when the page
// could not be fetched or summarized.
const NoContentText = "There is no information known about the URL. The URL might be invalid or expired."

// maxBodyBytes bounds how much of a page is read before rendering.
const maxBodyBytes = 4 << 20

// ContentExtractor returns a plain-text rendering of a web page.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// jinaReaderURL is the Jina Reader endpoint prefix. Package-level var for test substitution.
var jinaReaderURL = "https://r.jina.ai/"

// JinaExtractor renders pages through the Jina Reader service.
type JinaExtractor struct {
	APIKey     string
	Client     *http.Client
	MaxRetries int
}

// Extract fetches the reader rendering of url.
func (j *JinaExtractor) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jinaReaderURL+url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if j.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+j.APIKey)
	}

	client := j.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, j.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Jina Reader: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("Jina Reader returned %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading Jina Reader response: %w", err)
	}
	return string(body), nil
}

// DirectExtractor fetches the page itself and converts its HTML to text.
type DirectExtractor struct {
	Client     *http.Client
	Headers    http.Header
	MaxRetries int
}

// Extract downloads url and renders it as "Title: ...\n\n<text>".
func (d *DirectExtractor) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	headers := d.Headers
	if headers == nil {
		headers = httputil.BrowserHeaders("")
	}
	httputil.ApplyHeaders(req, headers)

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, d.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return renderHTML(body)
}

func renderHTML(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())

	text, err := html2text.FromString(string(body), html2text.Options{OmitLinks: true, TextOnly: true})
	if err != nil {
		return "", fmt.Errorf("converting HTML to text: %w", err)
	}
	text = strings.TrimSpace(text)

	if title == "" {
		return text, nil
	}
	return "Title: " + title + "\n\n" + text, nil
}

// summaryPromptTmpl asks for an English summary of rendered page text.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`Summarize the following website content in English and determine whether the website shows a verification wall.
Your output should be in JSON format and should not have any other output:
- summary: the summary of the content in English, within 500 words. Some websites show a robot-human verification page. If the website has no information available, mention that the content might be hidden behind a verification wall. Both phishing and legitimate websites can have a robot-human verification page; it does not by itself indicate malicious intent.

The website content:
{{.Content}}
`))

// ContentAnalyzer fetches rendered page text and summarizes it.
type ContentAnalyzer struct {
	Extractor  ContentExtractor
	Classifier llm.Classifier
}

// Analyze returns the page text (truncated to MaxContentChars) and its
// summary.
func (a *ContentAnalyzer) Analyze(ctx context.Context, url string) (content, summary string, err error) {
	content, err = a.Extractor.Extract(ctx, url)
	if err != nil {
		return "", "", err
	}
	content = TruncateChars(content, MaxContentChars)

	var buf bytes.Buffer
	if err := summaryPromptTmpl.Execute(&buf, struct{ Content string }{content}); err != nil {
		return "", "", fmt.Errorf("rendering prompt: %w", err)
	}

	var out struct {
		Summary string `json:"summary"`
	}
	if err := llm.CompleteJSON(ctx, a.Classifier, llm.UserPrompt(buf.String()), &out); err != nil {
		return "", "", fmt.Errorf("summarizing content: %w", err)
	}
	if strings.TrimSpace(out.Summary) == "" {
		return "", "", fmt.Errorf("summarizing content: %w: empty summary", llm.ErrMalformed)
	}
	return content, out.Summary, nil
}

// TruncateChars returns the first n characters (runes) of s.
func TruncateChars(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
