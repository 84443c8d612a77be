// Package format renders handler values into the single text content block
// returned by tools/call.
package format

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	xerrors "github.com/golovatskygroup/mcp-xai/internal/errors"
	"github.com/golovatskygroup/mcp-xai/pkg/mcp"
)

// Text wraps a plain string
func Text(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.ContentBlock{{Type: "text", Text: text}}}
}

// Structured renders a one-line summary followed by v as indented JSON.
// Strings are passed through as-is; an empty summary is omitted.
func Structured(summary string, v any) *mcp.CallToolResult {
	body, err := Render(v)
	if err != nil {
		return Error(xerrors.Wrap(xerrors.InternalError, "failed to render result", err))
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return Text(body)
	}
	return Text(summary + "\n\n" + body)
}

// Render returns the canonical text form of v
func Render(v any) (string, error) {
	switch vv := v.(type) {
	case nil:
		return "", nil
	case string:
		return vv, nil
	case fmt.Stringer:
		return vv.String(), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Error renders err as a user-visible error result
func Error(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.ContentBlock{{Type: "text", Text: "Error: " + err.Error()}},
		IsError: true,
	}
}
