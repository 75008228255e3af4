// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package capture takes full-page screenshots of web pages, either with an
// in-process headless Chrome (ChromeCapturer) or by running an external
// program (CommandCapturer).
package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec = &osExecutor{}

// CommandCapturer runs an external screenshot program as
// `<command...> <url> <path>`, e.g. a Puppeteer script under node.
type CommandCapturer struct {
	command []string
	exec    executor
}

// NewCommandCapturer returns a capturer for command, which must name a
// program on PATH followed by any leading arguments.
func NewCommandCapturer(command []string) (*CommandCapturer, error) {
	return newCommandCapturer(command, defaultExec)
}

func newCommandCapturer(command []string, exec executor) (*CommandCapturer, error) {
	if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
		return nil, fmt.Errorf("capture command is empty")
	}
	if _, err := exec.LookPath(command[0]); err != nil {
		return nil, fmt.Errorf("capture program %s not found: %w", command[0], err)
	}
	return &CommandCapturer{command: append([]string(nil), command...), exec: exec}, nil
}

// Name returns the program the capturer runs.
func (c *CommandCapturer) Name() string { return c.command[0] }

// Capture runs the program and checks that it left a non-empty file at path.
func (c *CommandCapturer) Capture(ctx context.Context, url, path string) error {
	args := make([]string, 0, len(c.command)+1)
	args = append(args, c.command[1:]...)
	args = append(args, url, path)

	var stderr bytes.Buffer
	if err := c.exec.Run(ctx, c.command[0], args, io.Discard, &stderr); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("running %s: %w: %s", c.command[0], err, msg)
		}
		return fmt.Errorf("running %s: %w", c.command[0], err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s did not write %s: %w", c.command[0], path, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s wrote an empty screenshot", c.command[0])
	}
	return nil
}
