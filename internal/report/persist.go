// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/smishguard/pkg/types"
)

// Output file names inside the output directory.
const (
	JSONFile = "analysis_output.json"
	YAMLFile = "analysis_output.yaml"
)

// Format selects an encoding for Encode.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Persister stores a finished analysis.
type Persister interface {
	Save(ctx context.Context, result *types.AnalysisResult) error
}

// Encode normalizes v and writes it to w in the given format. JSON uses a
// two-space indent and leaves HTML characters unescaped.
func Encode(w io.Writer, v any, format Format) error {
	tree := Normalize(v)
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(tree); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// FileWriter writes the result into Dir in one format.
type FileWriter struct {
	Dir    string
	Format Format
}

// JSONWriter writes {dir}/analysis_output.json.
func JSONWriter(dir string) *FileWriter { return &FileWriter{Dir: dir, Format: FormatJSON} }

// YAMLWriter writes {dir}/analysis_output.yaml.
func YAMLWriter(dir string) *FileWriter { return &FileWriter{Dir: dir, Format: FormatYAML} }

// Path returns the file the writer produces.
func (f *FileWriter) Path() string {
	if f.Format == FormatYAML {
		return filepath.Join(f.Dir, YAMLFile)
	}
	return filepath.Join(f.Dir, JSONFile)
}

// Save implements Persister.
func (f *FileWriter) Save(_ context.Context, result *types.AnalysisResult) error {
	var buf bytes.Buffer
	if err := Encode(&buf, result, f.Format); err != nil {
		return err
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(f.Path(), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", f.Path(), err)
	}
	return nil
}

// Multi saves to every persister and joins their errors.
type Multi []Persister

// Save implements Persister.
func (m Multi) Save(ctx context.Context, result *types.AnalysisResult) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Save(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
