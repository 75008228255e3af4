// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text
// files, a .env file, and the process environment.
//
// Each file in the secrets directory represents one secret: the filename is
// the key name and the file contents (trimmed) are the value. The same key in
// upper case with underscores (openai-api-key → OPENAI_API_KEY) is the
// environment and .env name.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pdiddy/smishguard/pkg/types"
)

// Supported key names.
const (
	KeyOpenAI       = "openai-api-key"
	KeyGemini       = "gemini-api-key"
	KeyJina         = "jina-api-key"
	KeyGoogleSearch = "google-search-api-key"
	KeyGoogleCX     = "google-search-cx"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadDotEnv reads a .env file and returns its entries keyed by secret key
// name. A missing file yields an empty map.
func LoadDotEnv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	out := make(map[string]string, len(env))
	for k, v := range env {
		if v = strings.TrimSpace(v); v != "" {
			out[KeyName(k)] = v
		}
	}
	return out, nil
}

// EnvName converts a key name to its environment variable name.
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// KeyName converts an environment variable name to its key name.
func KeyName(env string) string {
	return strings.ToLower(strings.ReplaceAll(env, "_", "-"))
}

// Lookup returns the first non-empty value for key. The process environment
// (via getenv) wins, then each source map in order.
func Lookup(key string, getenv func(string) string, sources ...map[string]string) string {
	if getenv != nil {
		if v := strings.TrimSpace(getenv(EnvName(key))); v != "" {
			return v
		}
	}
	for _, src := range sources {
		if v, ok := src[key]; ok && v != "" {
			return v
		}
	}
	return ""
}

// Credentials resolves every supported key.
func Credentials(getenv func(string) string, sources ...map[string]string) types.Credentials {
	return types.Credentials{
		OpenAIKey:       Lookup(KeyOpenAI, getenv, sources...),
		GeminiKey:       Lookup(KeyGemini, getenv, sources...),
		JinaKey:         Lookup(KeyJina, getenv, sources...),
		GoogleSearchKey: Lookup(KeyGoogleSearch, getenv, sources...),
		GoogleSearchCX:  Lookup(KeyGoogleCX, getenv, sources...),
	}
}
