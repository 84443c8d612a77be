package server

import (
	"encoding/json"
	"fmt"

	"github.com/golovatskygroup/mcp-xai/internal/catalog"
	"github.com/golovatskygroup/mcp-xai/internal/format"
	"github.com/golovatskygroup/mcp-xai/pkg/mcp"
)

const resourceMime = "application/json"

type listResourcesResult struct {
	Resources []resource `json:"resources"`
}

type resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

type readResourceParams struct {
	URI string `json:"uri"`
}

type readResourceResult struct {
	Contents []mcp.ContentBlock `json:"contents"`
}

func (s *Server) handleListResources(req *mcp.Request) *mcp.Response {
	entries, err := s.store.ListByCategory(catalog.All)
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}

	res := make([]resource, 0, len(entries))
	for _, e := range entries {
		res = append(res, resource{
			URI:         catalog.URI(e.Category, e.ID),
			Name:        e.Name,
			Description: e.Description,
			MimeType:    resourceMime,
		})
	}
	return s.respond(req, listResourcesResult{Resources: res})
}

func (s *Server) handleReadResource(req *mcp.Request) *mcp.Response {
	var params readResourceParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InvalidParams, "Invalid params: "+err.Error())
	}
	cat, id, ok := catalog.ParseURI(params.URI)
	if !ok {
		return mcp.NewErrorResponse(req.ID, mcp.InvalidParams, fmt.Sprintf("Unsupported resource URI: %s", params.URI))
	}

	entry, err := s.store.Get(cat, id)
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InvalidParams, err.Error())
	}
	body, err := format.Render(entry)
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}

	result := readResourceResult{Contents: []mcp.ContentBlock{{Type: "text", Text: body, URI: params.URI, MimeType: resourceMime}}}
	return s.respond(req, result)
}
