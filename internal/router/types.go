package router

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golovatskygroup/mcp-xai/pkg/mcp"
)

type ParamType string

const (
	String  ParamType = "string"
	Boolean ParamType = "boolean"
	Integer ParamType = "integer"
	Object  ParamType = "object"
)

// ParamSpec declares one tool argument
type ParamSpec struct {
	Name          string
	Type          ParamType
	Description   string
	Required      bool
	AllowedValues []string
	Default       any
	// Properties declares the fields of an Object parameter
	Properties []ParamSpec
}

// ToolSpec declares a tool and its arguments
type ToolSpec struct {
	Name        string
	Description string
	Params      []ParamSpec
}

// HandlerFunc receives arguments that already passed validation, with defaults applied.
type HandlerFunc func(ctx context.Context, args Args) (*mcp.CallToolResult, error)

// Invocation describes one finished tools/call, as handed to a Recorder
type Invocation struct {
	ID        string
	Tool      string
	Arguments json.RawMessage
	OK        bool
	ErrorCode string
	Error     string
	Duration  time.Duration
	At        time.Time
}

// Recorder receives every invocation after it completes (e.g. an audit log)
type Recorder interface {
	Record(ctx context.Context, inv Invocation) error
}
