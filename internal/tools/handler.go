package tools

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/golovatskygroup/mcp-xai/internal/catalog"
	"github.com/golovatskygroup/mcp-xai/internal/router"
)

// Handler serves the fixed tool catalog from an immutable Store
type Handler struct {
	store  *catalog.Store
	logger zerolog.Logger
}

// NewHandler creates a new tool handler
func NewHandler(store *catalog.Store, logger zerolog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// ToolNames lists the served tools in advertised order
func ToolNames() []string {
	return []string{
		"list_datasets",
		"load_dataset",
		"list_models",
		"load_model",
		"list_explainers",
		"generate_explanation",
		"list_metrics",
		"evaluate_explanation",
		"get_leaderboard",
		"get_framework_info",
	}
}

// Register adds every tool to r in ToolNames order
func (h *Handler) Register(r *router.Router) error {
	handlers := map[string]router.HandlerFunc{
		"list_datasets":        h.listDatasets,
		"load_dataset":         h.loadDataset,
		"list_models":          h.listModels,
		"load_model":           h.loadModel,
		"list_explainers":      h.listExplainers,
		"generate_explanation": h.generateExplanation,
		"list_metrics":         h.listMetrics,
		"evaluate_explanation": h.evaluateExplanation,
		"get_leaderboard":      h.getLeaderboard,
		"get_framework_info":   h.getFrameworkInfo,
	}
	specs := h.Specs()
	for _, spec := range specs {
		fn, ok := handlers[spec.Name]
		if !ok {
			return fmt.Errorf("no handler for tool %s", spec.Name)
		}
		if err := r.Register(spec, fn); err != nil {
			return err
		}
	}
	h.logger.Debug().Int("tools", len(specs)).Msg("registered tools")
	return nil
}

// Specs returns the declarative tool specs. Enumerations come from the store,
// so they always match what the handlers can serve.
func (h *Handler) Specs() []router.ToolSpec {
	datasets := h.store.IDs(catalog.Dataset)
	models := h.store.IDs(catalog.Model)
	explainers := h.store.IDs(catalog.Explainer)
	metrics := h.store.IDs(catalog.Metric)

	withAll := func(values []string) []string {
		return append([]string{string(catalog.All)}, values...)
	}
	modelInfo := func(desc string) router.ParamSpec {
		return router.ParamSpec{
			Name:        "model_info",
			Type:        router.Object,
			Required:    true,
			Description: desc,
			Properties: []router.ParamSpec{
				{Name: "data_name", Type: router.String, Required: true, AllowedValues: datasets, Description: "Dataset the model was trained on"},
				{Name: "ml_model", Type: router.String, Required: true, AllowedValues: models, Description: "Model type"},
			},
		}
	}

	infoKeys := []string{}
	for _, sec := range h.store.Info() {
		infoKeys = append(infoKeys, sec.Key)
	}

	return []router.ToolSpec{
		{
			Name:        "list_datasets",
			Description: "List benchmark datasets, optionally filtered by category.",
			Params: []router.ParamSpec{
				{Name: "category", Type: router.String, AllowedValues: withAll(h.store.Groups(catalog.Dataset)), Default: string(catalog.All), Description: "Dataset category filter"},
			},
		},
		{
			Name:        "load_dataset",
			Description: "Describe a dataset (features, samples, classes) and return a Python snippet that loads it.",
			Params: []router.ParamSpec{
				{Name: "dataset_name", Type: router.String, Required: true, AllowedValues: datasets, Description: "Dataset identifier"},
				{Name: "download", Type: router.Boolean, Default: false, Description: "Download the data if it is not cached locally"},
				{Name: "batch_size", Type: router.Integer, Default: defaultBatchSize, Description: "Loader batch size (at least 1)"},
			},
		},
		{
			Name:        "list_models",
			Description: "List model types, optionally restricted to those with pretrained weights for a dataset.",
			Params: []router.ParamSpec{
				{Name: "dataset_name", Type: router.String, AllowedValues: datasets, Description: "Only models pretrained on this dataset"},
				{Name: "model_type", Type: router.String, AllowedValues: withAll(models), Default: string(catalog.All), Description: "Model type filter"},
			},
		},
		{
			Name:        "load_model",
			Description: "Describe a model for a dataset and return a Python snippet that loads it.",
			Params: []router.ParamSpec{
				{Name: "data_name", Type: router.String, Required: true, AllowedValues: datasets, Description: "Dataset identifier"},
				{Name: "ml_model", Type: router.String, Required: true, AllowedValues: models, Description: "Model type"},
				{Name: "pretrained", Type: router.Boolean, Default: true, Description: "Load pretrained weights"},
			},
		},
		{
			Name:        "list_explainers",
			Description: "List explanation methods, optionally filtered by method type.",
			Params: []router.ParamSpec{
				{Name: "method_type", Type: router.String, AllowedValues: withAll(h.store.Groups(catalog.Explainer)), Default: string(catalog.All), Description: "Method type filter"},
			},
		},
		{
			Name:        "generate_explanation",
			Description: "Return a Python snippet that explains a data sample with the given method and model.",
			Params: []router.ParamSpec{
				{Name: "method", Type: router.String, Required: true, AllowedValues: explainers, Description: "Explanation method"},
				{Name: "data_sample", Type: router.String, Required: true, Description: "Input sample(s) as a JSON array"},
				modelInfo("Model to explain"),
			},
		},
		{
			Name:        "list_metrics",
			Description: "List evaluation metrics, optionally filtered by metric type.",
			Params: []router.ParamSpec{
				{Name: "metric_type", Type: router.String, AllowedValues: withAll(h.store.Groups(catalog.Metric)), Default: string(catalog.All), Description: "Metric type filter"},
			},
		},
		{
			Name:        "evaluate_explanation",
			Description: "Return a Python snippet that scores an explanation with the given metric.",
			Params: []router.ParamSpec{
				{Name: "metric", Type: router.String, Required: true, AllowedValues: metrics, Description: "Evaluation metric"},
				{Name: "explanation", Type: router.String, Required: true, Description: "Feature attributions as a JSON array"},
				modelInfo("Model that produced the explanation"),
				{Name: "method", Type: router.String, AllowedValues: explainers, Description: "Explanation method that produced the attributions; stability metrics re-run it"},
			},
		},
		{
			Name:        "get_leaderboard",
			Description: "Describe the public leaderboard, optionally focused on a dataset and metric.",
			Params: []router.ParamSpec{
				{Name: "dataset", Type: router.String, AllowedValues: datasets, Description: "Dataset identifier"},
				{Name: "metric", Type: router.String, AllowedValues: metrics, Description: "Metric identifier"},
			},
		},
		{
			Name:        "get_framework_info",
			Description: "Return framework documentation: overview, features, installation, quickstart or citation.",
			Params: []router.ParamSpec{
				{Name: "info_type", Type: router.String, AllowedValues: withAll(infoKeys), Default: "overview", Description: "Section to return"},
			},
		},
	}
}

// lookup resolves an id that passed enum validation. A miss here means the
// specs and the store disagree, which is reported as NotFound all the same.
func (h *Handler) lookup(cat catalog.Category, id string) (catalog.Entry, error) {
	return h.store.Get(cat, id)
}

func (h *Handler) modelInfo(args router.Args) (dataset, model catalog.Entry, err error) {
	info := args.Object("model_info")
	dataset, err = h.lookup(catalog.Dataset, info.String("data_name"))
	if err != nil {
		return
	}
	model, err = h.lookup(catalog.Model, info.String("ml_model"))
	return
}

func hasPretrained(model catalog.Entry, datasetID string) bool {
	return slices.Contains(model.Related, datasetID)
}
