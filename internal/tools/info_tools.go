package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/golovatskygroup/mcp-xai/internal/catalog"
	"github.com/golovatskygroup/mcp-xai/internal/format"
	"github.com/golovatskygroup/mcp-xai/internal/router"
	"github.com/golovatskygroup/mcp-xai/pkg/mcp"
)

func (h *Handler) getLeaderboard(_ context.Context, args router.Args) (*mcp.CallToolResult, error) {
	lb := h.store.Leaderboard()

	var sb strings.Builder
	sb.WriteString("# Leaderboard\n\n")
	if lb.URL != "" {
		sb.WriteString("URL: " + lb.URL + "\n\n")
	}
	sb.WriteString(strings.TrimSpace(lb.Text) + "\n")

	var filters []string
	if name := args.String("dataset"); name != "" {
		ds, err := h.lookup(catalog.Dataset, name)
		if err != nil {
			return nil, err
		}
		filters = append(filters, fmt.Sprintf("- Dataset: %s (%s), %s", ds.ID, ds.Name, datasetShape(ds)))

		models := []string{}
		all, err := h.store.ListByCategory(catalog.Model)
		if err != nil {
			return nil, err
		}
		for _, m := range all {
			if hasPretrained(m, ds.ID) {
				models = append(models, m.ID)
			}
		}
		filters = append(filters, "- Ranked models: "+orNone(models))
	}
	if name := args.String("metric"); name != "" {
		m, err := h.lookup(catalog.Metric, name)
		if err != nil {
			return nil, err
		}
		order := "ascending (lower is better)"
		if attrBool(m, "higher_is_better") {
			order = "descending (higher is better)"
		}
		filters = append(filters, fmt.Sprintf("- Metric: %s (%s), ranked %s", m.ID, m.Name, order))
	}
	if len(filters) > 0 {
		sb.WriteString("\n## Selection\n\n" + strings.Join(filters, "\n") + "\n")
	}

	return format.Text(sb.String()), nil
}

func (h *Handler) getFrameworkInfo(_ context.Context, args router.Args) (*mcp.CallToolResult, error) {
	infoType := args.String("info_type")

	sections := h.store.Info()
	if infoType != string(catalog.All) {
		sec, err := h.store.InfoSection(infoType)
		if err != nil {
			return nil, err
		}
		sections = []catalog.InfoSection{sec}
	}

	parts := make([]string, 0, len(sections))
	for _, sec := range sections {
		parts = append(parts, fmt.Sprintf("## %s\n\n%s", sec.Title, strings.TrimSpace(sec.Body)))
	}
	return format.Text(strings.Join(parts, "\n\n") + "\n"), nil
}
