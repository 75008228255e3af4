// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jhillyerd/enmime"
	"github.com/spf13/cobra"
)

// messageSource names where the message to analyse comes from. At most one
// of File and EML is set; Args are used when neither is. A single "-"
// argument reads Stdin.
type messageSource struct {
	Args  []string
	File  string
	EML   string
	Stdin io.Reader
}

func messageFromFlags(cmd *cobra.Command, args []string) (string, error) {
	file, _ := cmd.Flags().GetString("file")
	eml, _ := cmd.Flags().GetString("eml")
	return readMessage(messageSource{Args: args, File: file, EML: eml, Stdin: cmd.InOrStdin()})
}

func readMessage(src messageSource) (string, error) {
	given := 0
	if len(src.Args) > 0 {
		given++
	}
	if src.File != "" {
		given++
	}
	if src.EML != "" {
		given++
	}
	switch {
	case given == 0:
		return "", fmt.Errorf("message required: pass it as an argument, with --file, or with --eml")
	case given > 1:
		return "", fmt.Errorf("give the message only one way: argument, --file, or --eml")
	}

	var (
		msg string
		err error
	)
	switch {
	case src.File != "":
		var data []byte
		data, err = os.ReadFile(src.File)
		if err != nil {
			return "", fmt.Errorf("reading message file: %w", err)
		}
		msg = string(data)
	case src.EML != "":
		msg, err = readEML(src.EML)
		if err != nil {
			return "", err
		}
	case len(src.Args) == 1 && src.Args[0] == "-":
		if src.Stdin == nil {
			return "", fmt.Errorf("no standard input")
		}
		var data []byte
		data, err = io.ReadAll(src.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading standard input: %w", err)
		}
		msg = string(data)
	default:
		msg = strings.Join(src.Args, " ")
	}

	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", fmt.Errorf("message is empty")
	}
	return msg, nil
}

// readEML returns the subject and plain-text body of a MIME message.
func readEML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening message: %w", err)
	}
	defer f.Close()

	env, err := enmime.ReadEnvelope(f)
	if err != nil {
		return "", fmt.Errorf("parsing message %s: %w", path, err)
	}

	subject := strings.TrimSpace(env.GetHeader("Subject"))
	text := strings.TrimSpace(env.Text)
	if subject == "" {
		return text, nil
	}
	return subject + "\n" + text, nil
}
