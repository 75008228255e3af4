// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/smishguard/internal/secrets"
	"github.com/pdiddy/smishguard/pkg/types"
)

// Configuration keys. Each is also the flag name, the key in
// smishguard.yaml, and (upper-cased, SMISHGUARD_ prefix) the environment
// variable.
const (
	keyProvider       = "provider"
	keyModel          = "model"
	keyVisionModel    = "vision-model"
	keyMaxRetries     = "max-retries"
	keyTimeout        = "timeout"
	keyResolveTimeout = "resolve-timeout"
	keyUserAgent      = "user-agent"
	keyRedirectChain  = "redirect-chain"
	keyBrandSearch    = "brand-search"
	keyScreenshot     = "screenshot"
	keyHTMLContent    = "html-content"
	keyDomainInfo     = "domain-info"
	keyPhoneNumbers   = "phone-numbers"
	keyPhoneRegion    = "phone-region"
	keyOutputDir      = "output-dir"
	keyContent        = "content"
	keyCapture        = "capture"
	keyCaptureCommand = "capture-command"
	keyConcurrency    = "concurrency"
	keyHistoryDB      = "history-db"
)

// addDetectorFlags registers the flags every pipeline command shares.
func addDetectorFlags(fs *pflag.FlagSet) {
	d := types.DefaultDetectorConfig()

	fs.String(keyProvider, string(d.AI.Provider), "classification backend: openai or gemini")
	fs.String(keyModel, "", "text model (default: "+types.DefaultOpenAIModel+" for openai, "+types.DefaultGeminiModel+" for gemini)")
	fs.String(keyVisionModel, "", "model for screenshot descriptions (default: --model)")
	fs.Int(keyMaxRetries, d.AI.MaxRetries, "retry attempts for idempotent lookups")
	fs.Duration(keyTimeout, d.HTTP.Timeout, "timeout for each evidence request")
	fs.Duration(keyResolveTimeout, d.HTTP.ResolveTimeout, "timeout for the final-URL check")
	fs.String(keyUserAgent, "", "User-Agent for evidence requests")

	fs.Bool(keyRedirectChain, d.Evidence.RedirectChain, "trace redirect chains")
	fs.Bool(keyBrandSearch, d.Evidence.BrandSearch, "search the web for each brand")
	fs.Bool(keyScreenshot, d.Evidence.Screenshot, "capture and describe a screenshot of each URL")
	fs.Bool(keyHTMLContent, d.Evidence.HTMLContent, "fetch and summarize page content")
	fs.Bool(keyDomainInfo, d.Evidence.DomainInfo, "look up domain registration")
	fs.Bool(keyPhoneNumbers, d.Evidence.PhoneNumbers, "record phone numbers found in the message")
	fs.String(keyPhoneRegion, d.Evidence.PhoneRegion, "region for phone numbers without a country code")

	fs.String(keyOutputDir, d.OutputDir, "directory for screenshots and analysis_output.json")
	fs.String(keyContent, string(d.ContentBackend), "page content backend: jina or direct")
	fs.String(keyCapture, string(d.CaptureBackend), "screenshot backend: chromedp or command")
	fs.String(keyCaptureCommand, strings.Join(d.CaptureCommand, " "), "command run as <command> <url> <path> when --capture=command")
	fs.Int(keyConcurrency, d.Concurrency, "URLs analysed at once")
	fs.String(keyHistoryDB, "", "SQLite database recording every run (disabled when empty)")
}

// detectorConfig binds cmd's flags to viper and resolves the configuration.
func detectorConfig(cmd *cobra.Command) (types.DetectorConfig, error) {
	v := viper.GetViper()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return types.DetectorConfig{}, fmt.Errorf("binding flags: %w", err)
	}
	return buildConfig(v, os.Getenv, dotEnv, loadedSecrets)
}

// buildConfig reads every detector setting from v. Values v does not hold
// keep their defaults. Credentials set in v win over getenv, which wins over
// each source map in order.
func buildConfig(v *viper.Viper, getenv func(string) string, sources ...map[string]string) (types.DetectorConfig, error) {
	setDefaults(v)

	cfg := types.DefaultDetectorConfig()
	cfg.AI = types.AIConfig{
		Provider:    types.AIProvider(strings.ToLower(v.GetString(keyProvider))),
		Model:       v.GetString(keyModel),
		VisionModel: v.GetString(keyVisionModel),
		MaxRetries:  v.GetInt(keyMaxRetries),
	}
	cfg.AI.Model = cfg.AI.ModelOrDefault()
	cfg.HTTP = types.HTTPConfig{
		Timeout:        v.GetDuration(keyTimeout),
		ResolveTimeout: v.GetDuration(keyResolveTimeout),
		UserAgent:      v.GetString(keyUserAgent),
	}
	cfg.Evidence = types.EvidenceConfig{
		RedirectChain: v.GetBool(keyRedirectChain),
		BrandSearch:   v.GetBool(keyBrandSearch),
		Screenshot:    v.GetBool(keyScreenshot),
		HTMLContent:   v.GetBool(keyHTMLContent),
		DomainInfo:    v.GetBool(keyDomainInfo),
		PhoneNumbers:  v.GetBool(keyPhoneNumbers),
		PhoneRegion:   strings.ToUpper(v.GetString(keyPhoneRegion)),
	}
	cfg.OutputDir = v.GetString(keyOutputDir)
	cfg.ContentBackend = types.ContentBackend(strings.ToLower(v.GetString(keyContent)))
	cfg.CaptureBackend = types.CaptureBackend(strings.ToLower(v.GetString(keyCapture)))
	cfg.CaptureCommand = v.GetStringSlice(keyCaptureCommand)
	cfg.Concurrency = v.GetInt(keyConcurrency)
	cfg.HistoryDB = v.GetString(keyHistoryDB)

	cfg.Credentials = credentials(v, getenv, sources...)

	if err := cfg.Validate(); err != nil {
		return types.DetectorConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := types.DefaultDetectorConfig()
	v.SetDefault(keyProvider, string(d.AI.Provider))
	v.SetDefault(keyMaxRetries, d.AI.MaxRetries)
	v.SetDefault(keyTimeout, d.HTTP.Timeout)
	v.SetDefault(keyResolveTimeout, d.HTTP.ResolveTimeout)
	v.SetDefault(keyRedirectChain, d.Evidence.RedirectChain)
	v.SetDefault(keyBrandSearch, d.Evidence.BrandSearch)
	v.SetDefault(keyScreenshot, d.Evidence.Screenshot)
	v.SetDefault(keyHTMLContent, d.Evidence.HTMLContent)
	v.SetDefault(keyDomainInfo, d.Evidence.DomainInfo)
	v.SetDefault(keyPhoneNumbers, d.Evidence.PhoneNumbers)
	v.SetDefault(keyPhoneRegion, d.Evidence.PhoneRegion)
	v.SetDefault(keyOutputDir, d.OutputDir)
	v.SetDefault(keyContent, string(d.ContentBackend))
	v.SetDefault(keyCapture, string(d.CaptureBackend))
	v.SetDefault(keyCaptureCommand, d.CaptureCommand)
	v.SetDefault(keyConcurrency, d.Concurrency)
}

func credentials(v *viper.Viper, getenv func(string) string, sources ...map[string]string) types.Credentials {
	c := secrets.Credentials(getenv, sources...)
	override := func(dst *string, key string) {
		if s := strings.TrimSpace(v.GetString(key)); s != "" {
			*dst = s
		}
	}
	override(&c.OpenAIKey, secrets.KeyOpenAI)
	override(&c.GeminiKey, secrets.KeyGemini)
	override(&c.JinaKey, secrets.KeyJina)
	override(&c.GoogleSearchKey, secrets.KeyGoogleSearch)
	override(&c.GoogleSearchCX, secrets.KeyGoogleCX)
	return c
}
