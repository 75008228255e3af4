// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/smishguard/internal/llm"
)

// ScreenshotCapturer writes a screenshot of url to path.
type ScreenshotCapturer interface {
	Capture(ctx context.Context, url, path string) error
}

// ScreenshotPath returns the deterministic screenshot location for the URL
// at index.
func ScreenshotPath(outputDir string, index int) string {
	return filepath.Join(outputDir, fmt.Sprintf("screenshot_%d.png", index))
}

const screenshotPrompt = `You are a website screenshot analysis assistant. Analyze the website screenshot, describe its content in detail, and determine the purpose of the page. For instance, if the screenshot shows a news site, summarize the main news topics or articles.
Identify any logos, brands, or key visual elements.
The URL might have been redirected to a robot-human verification page. If the screenshot is a blank page, mention that the content might be hidden behind a verification wall.
Your response should be in English and plain text, without any markdown or HTML formatting. Your response should be in 15 sentences or less.`

// screenshotMaxTokens caps the description length.
const screenshotMaxTokens = 300

// ScreenshotDescriber asks a vision-capable model to describe a screenshot.
type ScreenshotDescriber struct {
	Classifier llm.Classifier
	Model      string
}

// Describe reads the image at path and returns the model's description.
func (d *ScreenshotDescriber) Describe(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading screenshot: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("screenshot %s is empty", path)
	}

	req := llm.UserPrompt(screenshotPrompt)
	req.Model = d.Model
	req.MaxTokens = screenshotMaxTokens
	req.Image = &llm.Image{Data: data, MIMEType: http.DetectContentType(data)}

	desc, err := d.Classifier.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("describing screenshot: %w", err)
	}
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return "", fmt.Errorf("describing screenshot: empty description")
	}
	return desc, nil
}

// ensureScreenshot captures url to path unless a file already exists there.
// It reports whether a capture was performed.
func ensureScreenshot(ctx context.Context, c ScreenshotCapturer, url, path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
	if c == nil {
		return false, fmt.Errorf("no screenshot capturer configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating screenshot directory: %w", err)
	}
	if err := c.Capture(ctx, url, path); err != nil {
		// A partial file would be reused by the next run.
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			return true, fmt.Errorf("capturing %s: %w (removing partial file: %v)", url, err, rmErr)
		}
		return true, fmt.Errorf("capturing %s: %w", url, err)
	}
	return true, nil
}
