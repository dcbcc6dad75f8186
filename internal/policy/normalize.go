package policy

import (
	"strings"

	shellwords "github.com/mattn/go-shellwords"
)

// NormalizedCommand is a command prepared for pattern matching.
type NormalizedCommand struct {
	// Text is the normalized command text.
	Text string
	// ParseError indicates shell tokenization failed and Text is a
	// whitespace-collapsed fallback.
	ParseError bool
}

// NormalizeCommand tokenizes a shell command and rejoins it with single
// spaces so patterns see stable whitespace. Quote stripping is intentional:
// `bash -c "npm run dev"` still exposes the inner command to matching.
// Unbalanced quotes fall back to whitespace collapsing on the raw string.
func NormalizeCommand(cmd string) NormalizedCommand {
	trimmed := strings.TrimSpace(cmd)
	if trimmed == "" {
		return NormalizedCommand{}
	}

	parser := shellwords.NewParser()
	parser.ParseEnv = false
	parser.ParseBacktick = false

	tokens, err := parser.Parse(trimmed)
	if err != nil || len(tokens) == 0 {
		return NormalizedCommand{
			Text:       strings.Join(strings.Fields(trimmed), " "),
			ParseError: err != nil,
		}
	}

	return NormalizedCommand{Text: strings.Join(tokens, " ")}
}
