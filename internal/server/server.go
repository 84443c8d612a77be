// Package server runs the MCP stdio loop over the tool router and catalog.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/golovatskygroup/mcp-xai/internal/catalog"
	"github.com/golovatskygroup/mcp-xai/internal/router"
	"github.com/golovatskygroup/mcp-xai/pkg/mcp"
)

const protocolVersion = "2024-11-05"

// Version is reported in serverInfo; overridden at build time
var Version = "dev"

// Server is the MCP server
type Server struct {
	transport *mcp.Transport
	store     *catalog.Store
	router    *router.Router
	name      string
	logger    zerolog.Logger
}

type Option func(*Server)

// WithName sets the serverInfo name
func WithName(name string) Option {
	return func(s *Server) { s.name = name }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a server reading requests from in and writing responses to out
func New(store *catalog.Store, r *router.Router, in io.Reader, out io.Writer, opts ...Option) *Server {
	s := &Server{
		transport: mcp.NewTransport(in, out),
		store:     store,
		router:    r,
		name:      "mcp-xai",
		logger:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type incoming struct {
	req *mcp.Request
	err error
}

// Run serves until the input stream ends or ctx is cancelled. Requests are
// handled one at a time in arrival order.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info().Int("tools", len(s.router.ListTools())).Int("entries", s.store.Count(catalog.All)).Msg("serving on stdio")

	msgs := make(chan incoming)
	go func() {
		defer close(msgs)
		for {
			req, err := s.transport.ReadMessage()
			select {
			case msgs <- incoming{req: req, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil && !isParseError(err) {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-msgs:
			if !ok {
				return ctx.Err()
			}
			if m.err != nil {
				if errors.Is(m.err, io.EOF) {
					s.logger.Info().Msg("input closed")
					return nil
				}
				if isParseError(m.err) {
					s.logger.Warn().Err(m.err).Msg("discarding malformed message")
					s.write(mcp.NewErrorResponse(nil, mcp.ParseError, "Parse error"))
					continue
				}
				return fmt.Errorf("read message: %w", m.err)
			}
			if resp := s.handleRequest(ctx, m.req); resp != nil {
				s.write(resp)
			}
		}
	}
}

func (s *Server) write(resp *mcp.Response) {
	if err := s.transport.WriteResponse(resp); err != nil {
		s.logger.Error().Err(err).Msg("error writing response")
	}
}

func isParseError(err error) bool {
	var pe *mcp.ErrParse
	return errors.As(err, &pe)
}

func (s *Server) handleRequest(ctx context.Context, req *mcp.Request) *mcp.Response {
	log := s.logger.With().Str("method", req.Method).Logger()
	log.Debug().Interface("id", req.ID).Msg("request")

	var resp *mcp.Response
	switch req.Method {
	case "initialize":
		resp = s.handleInitialize(req)
	case "notifications/initialized", "notifications/cancelled":
		return nil
	case "ping":
		resp = s.handlePing(req)
	case "tools/list":
		resp = s.handleListTools(req)
	case "tools/call":
		resp = s.handleCallTool(ctx, req)
	case "resources/list":
		resp = s.handleListResources(req)
	case "resources/read":
		resp = s.handleReadResource(req)
	default:
		resp = mcp.NewErrorResponse(req.ID, mcp.MethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}

	// Notifications never get a reply, not even an error.
	if req.ID == nil {
		return nil
	}
	return resp
}

func (s *Server) handleInitialize(req *mcp.Request) *mcp.Response {
	result := mcp.InitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities: mcp.ServerCapabilities{
			Tools:     &mcp.ToolsCapability{},
			Resources: &mcp.ResourcesCapability{},
		},
		ServerInfo: mcp.ServerInfo{
			Name:    s.name,
			Version: Version,
		},
		Instructions: s.buildInstructions(),
	}
	return s.respond(req, result)
}

func (s *Server) handlePing(req *mcp.Request) *mcp.Response {
	return s.respond(req, map[string]any{})
}

func (s *Server) handleListTools(req *mcp.Request) *mcp.Response {
	return s.respond(req, mcp.ListToolsResult{Tools: s.router.Tools()})
}

func (s *Server) handleCallTool(ctx context.Context, req *mcp.Request) *mcp.Response {
	var params mcp.CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InvalidParams, "Invalid params: "+err.Error())
	}
	if params.Name == "" {
		return mcp.NewErrorResponse(req.ID, mcp.InvalidParams, "Invalid params: missing tool name")
	}
	return s.respond(req, s.router.Invoke(ctx, params.Name, params.Arguments))
}

func (s *Server) respond(req *mcp.Request, result any) *mcp.Response {
	resp, err := mcp.NewResponse(req.ID, result)
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}
	return resp
}

func (s *Server) buildInstructions() string {
	var sb strings.Builder
	sb.WriteString("Explainable-AI benchmark catalog.\n\n")
	sb.WriteString("Browse datasets, models, explanation methods and evaluation metrics, then use the ")
	sb.WriteString("load/generate/evaluate tools to get ready-to-run Python snippets. Nothing is executed server-side.\n\n")
	sb.WriteString("Catalog:\n")
	for _, cat := range catalog.Categories() {
		sb.WriteString(fmt.Sprintf("- %s: %d (%s)\n", cat, s.store.Count(cat), strings.Join(s.store.IDs(cat), ", ")))
	}
	sb.WriteString(fmt.Sprintf("\nTools: %d. Entries are also readable as resources (catalog://<category>/<id>).\n", len(s.router.ListTools())))
	return sb.String()
}
