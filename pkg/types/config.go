// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds every evidence request (default 20s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// ResolveTimeout bounds the destination check that produces final_URL (default 10s).
	ResolveTimeout time.Duration `json:"resolve_timeout" yaml:"resolve_timeout"`

	// UserAgent overrides the browser-like User-Agent sent with evidence requests.
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// AIProvider identifies the classification service backend.
type AIProvider string

const (
	ProviderOpenAI AIProvider = "openai"
	ProviderGemini AIProvider = "gemini"
)

// Default text models per provider.
const (
	DefaultOpenAIModel = "gpt-4o"
	DefaultGeminiModel = "gemini-2.0-flash"
)

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Provider selects the backend: openai or gemini.
	Provider AIProvider `json:"provider" yaml:"provider"`

	// Model is the text model identifier. Empty selects the provider's
	// default (DefaultOpenAIModel or DefaultGeminiModel).
	Model string `json:"model" yaml:"model"`

	// VisionModel describes screenshots. Empty means Model.
	VisionModel string `json:"vision_model,omitempty" yaml:"vision_model,omitempty"`

	// MaxRetries is the number of retry attempts for idempotent lookups (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// EvidenceConfig enables or disables each evidence fetcher.
type EvidenceConfig struct {
	RedirectChain bool `json:"redirect_chain" yaml:"redirect_chain"`
	BrandSearch   bool `json:"brand_search" yaml:"brand_search"`
	Screenshot    bool `json:"screenshot" yaml:"screenshot"`
	HTMLContent   bool `json:"html_content" yaml:"html_content"`
	DomainInfo    bool `json:"domain_info" yaml:"domain_info"`

	// PhoneNumbers records phone numbers found in the message (default off).
	PhoneNumbers bool `json:"phone_numbers" yaml:"phone_numbers"`

	// PhoneRegion is the default region for numbers written without a
	// country code (default "US").
	PhoneRegion string `json:"phone_region" yaml:"phone_region"`
}

// Credentials holds the external-service keys. Empty values disable the
// collaborator that needs them.
type Credentials struct {
	OpenAIKey       string `json:"-" yaml:"-"`
	GeminiKey       string `json:"-" yaml:"-"`
	JinaKey         string `json:"-" yaml:"-"`
	GoogleSearchKey string `json:"-" yaml:"-"`
	GoogleSearchCX  string `json:"google_search_cx,omitempty" yaml:"google_search_cx,omitempty"`
}

// ContentBackend selects how rendered page text is fetched.
type ContentBackend string

const (
	ContentJina   ContentBackend = "jina"
	ContentDirect ContentBackend = "direct"
)

// CaptureBackend selects how screenshots are taken.
type CaptureBackend string

const (
	CaptureChromedp CaptureBackend = "chromedp"
	CaptureCommand  CaptureBackend = "command"
)

// DetectorConfig is everything one analysis run needs. It is built once at
// startup and passed to the detector; no stage reads configuration from
// anywhere else.
type DetectorConfig struct {
	AI       AIConfig       `json:"ai" yaml:"ai"`
	HTTP     HTTPConfig     `json:"http" yaml:"http"`
	Evidence EvidenceConfig `json:"evidence" yaml:"evidence"`

	Credentials Credentials `json:"credentials" yaml:"credentials"`

	// OutputDir receives screenshots and analysis_output.json.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	ContentBackend ContentBackend `json:"content_backend" yaml:"content_backend"`
	CaptureBackend CaptureBackend `json:"capture_backend" yaml:"capture_backend"`

	// CaptureCommand is the program (and leading arguments) invoked as
	// `<command...> <url> <path>` when CaptureBackend is "command".
	CaptureCommand []string `json:"capture_command,omitempty" yaml:"capture_command,omitempty"`

	// Concurrency caps the number of URLs analysed at once (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// HistoryDB is an optional SQLite path for run history.
	HistoryDB string `json:"history_db,omitempty" yaml:"history_db,omitempty"`
}

// DefaultDetectorConfig returns the configuration used when nothing is overridden.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		AI: AIConfig{
			Provider:   ProviderOpenAI,
			MaxRetries: 3,
		},
		HTTP: HTTPConfig{
			Timeout:        20 * time.Second,
			ResolveTimeout: 10 * time.Second,
		},
		Evidence: EvidenceConfig{
			RedirectChain: true,
			BrandSearch:   true,
			Screenshot:    true,
			HTMLContent:   true,
			DomainInfo:    true,
			PhoneRegion:   "US",
		},
		OutputDir:      "output",
		ContentBackend: ContentJina,
		CaptureBackend: CaptureChromedp,
		CaptureCommand: []string{"node", "crawler_proj/crawler.js"},
		Concurrency:    4,
	}
}

// Validate reports configuration values the detector cannot run with.
func (c DetectorConfig) Validate() error {
	switch c.AI.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown AI provider %q (want openai or gemini)", c.AI.Provider)
	}
	switch c.ContentBackend {
	case ContentJina, ContentDirect:
	default:
		return fmt.Errorf("unknown content backend %q (want jina or direct)", c.ContentBackend)
	}
	switch c.CaptureBackend {
	case CaptureChromedp:
	case CaptureCommand:
		if len(c.CaptureCommand) == 0 {
			return fmt.Errorf("capture backend %q needs a capture command", c.CaptureBackend)
		}
	default:
		return fmt.Errorf("unknown capture backend %q (want chromedp or command)", c.CaptureBackend)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	return nil
}

// ModelOrDefault returns the text model, falling back to the provider's default.
func (c AIConfig) ModelOrDefault() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultOpenAIModel
}

// VisionModelOrDefault returns the model used for screenshot descriptions.
func (c AIConfig) VisionModelOrDefault() string {
	if c.VisionModel != "" {
		return c.VisionModel
	}
	return c.ModelOrDefault()
}
