// Package inference talks to the chat completion backend.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
)

// Role tags a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Completer returns one completion for a list of messages.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (Result, error)
}

type resultKind int

const (
	kindText resultKind = iota
	kindStructured
)

// Result is either plain text or a structured JSON document.
type Result struct {
	kind       resultKind
	text       string
	structured json.RawMessage
}

func TextResult(text string) Result {
	return Result{kind: kindText, text: text}
}

func StructuredResult(raw json.RawMessage) Result {
	return Result{kind: kindStructured, structured: raw}
}

func (r Result) IsStructured() bool {
	return r.kind == kindStructured
}

// Text renders the result for display. Structured results are indented
// with two spaces; invalid JSON is returned as-is.
func (r Result) Text() string {
	if r.kind == kindText {
		return r.text
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.structured, "", "  "); err != nil {
		return string(r.structured)
	}
	return buf.String()
}
