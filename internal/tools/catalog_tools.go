package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/golovatskygroup/mcp-xai/internal/catalog"
	xerrors "github.com/golovatskygroup/mcp-xai/internal/errors"
	"github.com/golovatskygroup/mcp-xai/internal/format"
	"github.com/golovatskygroup/mcp-xai/internal/router"
	"github.com/golovatskygroup/mcp-xai/pkg/mcp"
)

const defaultBatchSize = 32

func (h *Handler) listDatasets(_ context.Context, args router.Args) (*mcp.CallToolResult, error) {
	category := args.String("category")
	entries, err := h.store.Filter(catalog.Dataset, category)
	if err != nil {
		return nil, err
	}
	return format.Structured(fmt.Sprintf("Found %d datasets (category: %s): %s", len(entries), category, joinIDs(entries)), entries), nil
}

func (h *Handler) loadDataset(_ context.Context, args router.Args) (*mcp.CallToolResult, error) {
	ds, err := h.lookup(catalog.Dataset, args.String("dataset_name"))
	if err != nil {
		return nil, err
	}
	batchSize := args.Int("batch_size")
	if batchSize < 1 {
		return nil, xerrors.InvalidParam("batch_size", "must be at least 1, got %d", batchSize)
	}

	code, err := render(loadDatasetTmpl, struct {
		DataName  string
		Download  bool
		BatchSize int
		Features  any
	}{ds.ID, args.Bool("download"), batchSize, ds.Attributes["features"]})
	if err != nil {
		return nil, xerrors.Wrap(xerrors.InternalError, "failed to render loader snippet", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Dataset %s (%s): %s\n\n", ds.ID, ds.Name, datasetShape(ds)))
	sb.WriteString(ds.Description + "\n")
	if task, ok := ds.Attributes["task"]; ok {
		sb.WriteString(fmt.Sprintf("Task: %v\n", task))
	}
	if len(ds.Tags) > 0 {
		sb.WriteString("Tags: " + strings.Join(ds.Tags, ", ") + "\n")
	}
	sb.WriteString("\n" + codeBlock(code))
	return format.Text(sb.String()), nil
}

func (h *Handler) listModels(_ context.Context, args router.Args) (*mcp.CallToolResult, error) {
	modelType := args.String("model_type")
	datasetName := args.String("dataset_name")

	var models []catalog.Entry
	if modelType == "" || modelType == string(catalog.All) {
		all, err := h.store.ListByCategory(catalog.Model)
		if err != nil {
			return nil, err
		}
		models = all
	} else {
		m, err := h.lookup(catalog.Model, modelType)
		if err != nil {
			return nil, err
		}
		models = []catalog.Entry{m}
	}

	if datasetName != "" {
		if _, err := h.lookup(catalog.Dataset, datasetName); err != nil {
			return nil, err
		}
		filtered := models[:0:0]
		for _, m := range models {
			if hasPretrained(m, datasetName) {
				filtered = append(filtered, m)
			}
		}
		models = filtered
	}

	summary := fmt.Sprintf("Found %d models (model_type: %s", len(models), modelType)
	if datasetName != "" {
		summary += ", pretrained on: " + datasetName
	}
	summary += "): " + joinIDs(models)
	return format.Structured(summary, models), nil
}

func (h *Handler) loadModel(_ context.Context, args router.Args) (*mcp.CallToolResult, error) {
	ds, err := h.lookup(catalog.Dataset, args.String("data_name"))
	if err != nil {
		return nil, err
	}
	model, err := h.lookup(catalog.Model, args.String("ml_model"))
	if err != nil {
		return nil, err
	}
	pretrained := args.Bool("pretrained")
	if pretrained && !hasPretrained(model, ds.ID) {
		return nil, xerrors.Newf(xerrors.NotFound,
			"no pretrained %s weights for dataset %s (pretrained on: %s); set pretrained=false to train from scratch",
			model.ID, ds.ID, orNone(model.Related))
	}

	code, err := render(loadModelTmpl, struct {
		DataName   string
		MLModel    string
		Pretrained bool
	}{ds.ID, model.ID, pretrained})
	if err != nil {
		return nil, xerrors.Wrap(xerrors.InternalError, "failed to render model snippet", err)
	}

	var sb strings.Builder
	state := "untrained"
	if pretrained {
		state = "pretrained"
	}
	sb.WriteString(fmt.Sprintf("Model %s (%s) for dataset %s, %s\n\n", model.ID, model.Name, ds.ID, state))
	sb.WriteString(model.Description + "\n")
	sb.WriteString(fmt.Sprintf("Dataset: %s\n", datasetShape(ds)))
	if fw, ok := model.Attributes["framework"]; ok {
		sb.WriteString(fmt.Sprintf("Framework: %v\n", fw))
	}
	sb.WriteString("\n" + codeBlock(code))
	return format.Text(sb.String()), nil
}

func (h *Handler) listExplainers(_ context.Context, args router.Args) (*mcp.CallToolResult, error) {
	methodType := args.String("method_type")
	entries, err := h.store.Filter(catalog.Explainer, methodType)
	if err != nil {
		return nil, err
	}
	return format.Structured(fmt.Sprintf("Found %d explanation methods (method_type: %s): %s", len(entries), methodType, joinIDs(entries)), entries), nil
}

func (h *Handler) listMetrics(_ context.Context, args router.Args) (*mcp.CallToolResult, error) {
	metricType := args.String("metric_type")
	entries, err := h.store.Filter(catalog.Metric, metricType)
	if err != nil {
		return nil, err
	}
	return format.Structured(fmt.Sprintf("Found %d metrics (metric_type: %s): %s", len(entries), metricType, joinIDs(entries)), entries), nil
}

// datasetShape renders "features: 20, samples: 1000, classes: 2"
func datasetShape(ds catalog.Entry) string {
	parts := make([]string, 0, 3)
	for _, k := range []string{"features", "samples", "classes"} {
		if v, ok := ds.Attributes[k]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", k, v))
		}
	}
	return strings.Join(parts, ", ")
}

func joinIDs(entries []catalog.Entry) string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return orNone(ids)
}

func orNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}
