// Package router validates tools/call arguments against declarative tool specs
// and dispatches them to handlers.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	xerrors "github.com/golovatskygroup/mcp-xai/internal/errors"
	"github.com/golovatskygroup/mcp-xai/internal/format"
	"github.com/golovatskygroup/mcp-xai/pkg/mcp"
)

type route struct {
	spec     ToolSpec
	schema   json.RawMessage
	compiled *jsonschema.Schema
	handler  HandlerFunc
}

// Router maps tool names to validated handlers. Routes are registered at
// startup; after that the router is read-only.
type Router struct {
	order    []string
	routes   map[string]*route
	logger   zerolog.Logger
	recorder Recorder
}

type Option func(*Router)

func WithLogger(l zerolog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// WithRecorder attaches a Recorder that sees every invocation
func WithRecorder(rec Recorder) Option {
	return func(r *Router) { r.recorder = rec }
}

func New(opts ...Option) *Router {
	r := &Router{
		routes: make(map[string]*route),
		logger: zerolog.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register adds a tool. Names must be unique.
func (r *Router) Register(spec ToolSpec, h HandlerFunc) error {
	if spec.Name == "" {
		return fmt.Errorf("tool spec without name")
	}
	if h == nil {
		return fmt.Errorf("tool %s: nil handler", spec.Name)
	}
	if _, dup := r.routes[spec.Name]; dup {
		return fmt.Errorf("tool %s already registered", spec.Name)
	}

	schema := InputSchema(spec)
	compiled, err := compileSchema(spec.Name, schema)
	if err != nil {
		return fmt.Errorf("invalid inputSchema for %s: %w", spec.Name, err)
	}

	r.routes[spec.Name] = &route{spec: spec, schema: schema, compiled: compiled, handler: h}
	r.order = append(r.order, spec.Name)
	return nil
}

// ListTools returns every registered spec in registration order
func (r *Router) ListTools() []ToolSpec {
	out := make([]ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.routes[name].spec)
	}
	return out
}

// Tools returns the registered tools as advertised by tools/list
func (r *Router) Tools() []mcp.Tool {
	out := make([]mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		rt := r.routes[name]
		out = append(out, mcp.Tool{
			Name:        rt.spec.Name,
			Description: rt.spec.Description,
			InputSchema: rt.schema,
		})
	}
	return out
}

func (r *Router) Has(name string) bool {
	_, ok := r.routes[name]
	return ok
}

// Invoke validates args and runs the named tool. Every failure, including a
// handler panic, comes back as an error result rather than a Go error: callers
// always get a well-formed tools/call result.
func (r *Router) Invoke(ctx context.Context, name string, args json.RawMessage) *mcp.CallToolResult {
	start := time.Now()
	callID := uuid.NewString()
	log := r.logger.With().Str("tool", name).Str("call_id", callID).Logger()

	res, err := r.invoke(ctx, name, args)
	if err != nil {
		res = format.Error(err)
	}

	elapsed := time.Since(start)
	if err != nil {
		log.Warn().Err(err).Str("code", string(xerrors.CodeOf(err))).Dur("duration", elapsed).Msg("tool call failed")
	} else {
		log.Debug().Dur("duration", elapsed).Msg("tool call ok")
	}

	if r.recorder != nil {
		inv := Invocation{
			ID:        callID,
			Tool:      name,
			Arguments: args,
			OK:        err == nil,
			Duration:  elapsed,
			At:        start.UTC(),
		}
		if err != nil {
			inv.ErrorCode = string(xerrors.CodeOf(err))
			inv.Error = err.Error()
		}
		if rerr := r.recorder.Record(ctx, inv); rerr != nil {
			log.Error().Err(rerr).Msg("failed to record invocation")
		}
	}
	return res
}

func (r *Router) invoke(ctx context.Context, name string, raw json.RawMessage) (res *mcp.CallToolResult, err error) {
	rt, ok := r.routes[name]
	if !ok {
		return nil, r.unknownTool(name)
	}

	args, err := decodeArgs(raw)
	if err != nil {
		return nil, err
	}
	if err := validateArgs(name, rt.spec.Params, rt.compiled, args); err != nil {
		return nil, err
	}
	applyDefaults(rt.spec.Params, args)

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error().Str("tool", name).Str("stack", string(debug.Stack())).Msgf("handler panic: %v", p)
			res = nil
			err = xerrors.Newf(xerrors.InternalError, "tool %s failed: %v", name, p)
		}
	}()

	res, err = rt.handler(ctx, Args(args))
	if err == nil && res == nil {
		err = xerrors.Newf(xerrors.InternalError, "tool %s returned no result", name)
	}
	return res, err
}

func decodeArgs(raw json.RawMessage) (map[string]any, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return map[string]any{}, nil
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil, xerrors.InvalidParam("arguments", "not valid JSON: %v", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, xerrors.InvalidParam("arguments", "expected a JSON object")
	}
	dropNulls(obj)
	return obj, nil
}

// dropNulls treats explicit nulls as absent so optional params fall back to defaults
func dropNulls(m map[string]any) {
	for k, v := range m {
		switch vv := v.(type) {
		case nil:
			delete(m, k)
		case map[string]any:
			dropNulls(vv)
		}
	}
}

func (r *Router) unknownTool(name string) error {
	msg := fmt.Sprintf("unknown tool %q", name)
	ranks := fuzzy.RankFindFold(name, r.order)
	if len(ranks) == 0 {
		for _, n := range r.order {
			if fuzzy.MatchFold(n, name) {
				ranks = append(ranks, fuzzy.Rank{Source: name, Target: n})
			}
		}
	}
	sort.Sort(ranks)
	if len(ranks) > 0 {
		names := make([]string, 0, 3)
		for i := 0; i < len(ranks) && i < 3; i++ {
			names = append(names, ranks[i].Target)
		}
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(names, ", "))
	}
	return xerrors.New(xerrors.UnknownTool, msg)
}
