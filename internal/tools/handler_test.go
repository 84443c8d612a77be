package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golovatskygroup/mcp-xai/internal/catalog"
	"github.com/golovatskygroup/mcp-xai/internal/router"
	"github.com/golovatskygroup/mcp-xai/pkg/mcp"
)

func newTestRouter(t *testing.T) *router.Router {
	t.Helper()
	store, err := catalog.Default()
	require.NoError(t, err)
	r := router.New()
	require.NoError(t, NewHandler(store, zerolog.Nop()).Register(r))
	return r
}

func call(t *testing.T, r *router.Router, name string, args any) *mcp.CallToolResult {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	res := r.Invoke(context.Background(), name, raw)
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].Text
}

func TestRegisterAdvertisesEveryTool(t *testing.T) {
	r := newTestRouter(t)

	var names []string
	for _, tool := range r.Tools() {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.True(t, json.Valid(tool.InputSchema), tool.Name)
	}
	assert.Equal(t, ToolNames(), names)

	for _, name := range ToolNames() {
		res := r.Invoke(context.Background(), name, json.RawMessage(`{}`))
		assert.NotContains(t, text(res), "UNKNOWN_TOOL", name)
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	store, err := catalog.Default()
	require.NoError(t, err)
	r := router.New()
	h := NewHandler(store, zerolog.Nop())
	require.NoError(t, h.Register(r))
	assert.Error(t, h.Register(r))
}

func TestListDatasets(t *testing.T) {
	r := newTestRouter(t)

	res := call(t, r, "list_datasets", map[string]any{"category": "tabular"})
	require.False(t, res.IsError, text(res))
	assert.Contains(t, text(res), "Found 6 datasets (category: tabular): german, compas, adult, folktable, synthetic_classification, synthetic_regression")

	res = call(t, r, "list_datasets", map[string]any{"category": "synthetic"})
	require.False(t, res.IsError)
	assert.Contains(t, text(res), "Found 2 datasets (category: synthetic)")
	assert.NotContains(t, text(res), `"id": "german"`)

	res = call(t, r, "list_datasets", nil)
	require.False(t, res.IsError)
	assert.Contains(t, text(res), "(category: all)")

	res = call(t, r, "list_datasets", map[string]any{"category": "images"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "INVALID_PARAMETER")
	assert.Contains(t, text(res), `"category"`)
}

func TestLoadDataset(t *testing.T) {
	r := newTestRouter(t)

	res := call(t, r, "load_dataset", map[string]any{"dataset_name": "german"})
	require.False(t, res.IsError, text(res))
	out := text(res)
	assert.Contains(t, out, "features: 20, samples: 1000, classes: 2")
	assert.Contains(t, out, "ReturnLoaders(data_name='german', download=False, batch_size=32)")
	assert.Contains(t, out, "```python")

	res = call(t, r, "load_dataset", map[string]any{"dataset_name": "synthetic_regression", "download": true})
	require.False(t, res.IsError)
	assert.Contains(t, text(res), "features: 20, samples: 5000\n")
	assert.Contains(t, text(res), "download=True")

	res = call(t, r, "load_dataset", map[string]any{"dataset_name": "compas", "batch_size": 128})
	require.False(t, res.IsError, text(res))
	assert.Contains(t, text(res), "batch_size=128)")

	for _, bad := range []any{0, -4, 2.5, "64"} {
		res = call(t, r, "load_dataset", map[string]any{"dataset_name": "compas", "batch_size": bad})
		assert.True(t, res.IsError, "batch_size=%v", bad)
		assert.Contains(t, text(res), `invalid parameter "batch_size"`)
	}

	res = call(t, r, "load_dataset", map[string]any{})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), `invalid parameter "dataset_name"`)
}

func TestListModels(t *testing.T) {
	r := newTestRouter(t)

	res := call(t, r, "list_models", nil)
	require.False(t, res.IsError)
	assert.Contains(t, text(res), "Found 5 models (model_type: all): lr, ann, rf, xgb, svm")

	res = call(t, r, "list_models", map[string]any{"dataset_name": "compas"})
	require.False(t, res.IsError)
	assert.Contains(t, text(res), "Found 2 models (model_type: all, pretrained on: compas): lr, ann")

	res = call(t, r, "list_models", map[string]any{"model_type": "rf", "dataset_name": "german"})
	require.False(t, res.IsError)
	assert.Contains(t, text(res), "Found 0 models")
	assert.Contains(t, text(res), "[]")
}

func TestLoadModel(t *testing.T) {
	r := newTestRouter(t)

	res := call(t, r, "load_model", map[string]any{"data_name": "german", "ml_model": "ann"})
	require.False(t, res.IsError, text(res))
	assert.Contains(t, text(res), "LoadModel(data_name='german', ml_model='ann', pretrained=True)")

	res = call(t, r, "load_model", map[string]any{"data_name": "german", "ml_model": "zzz"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "INVALID_PARAMETER")
	assert.Contains(t, text(res), `"ml_model"`)

	res = call(t, r, "load_model", map[string]any{"data_name": "german", "ml_model": "rf"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "NOT_FOUND")

	res = call(t, r, "load_model", map[string]any{"data_name": "german", "ml_model": "rf", "pretrained": false})
	require.False(t, res.IsError, text(res))
	assert.Contains(t, text(res), "pretrained=False")
	assert.Contains(t, text(res), "untrained")
}

func TestListExplainersAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	res := call(t, r, "list_explainers", map[string]any{"method_type": "gradient"})
	require.False(t, res.IsError)
	assert.Contains(t, text(res), "Found 4 explanation methods (method_type: gradient): grad, sg, itg, ig")

	res = call(t, r, "list_metrics", map[string]any{"metric_type": "stability"})
	require.False(t, res.IsError)
	assert.Contains(t, text(res), "Found 3 metrics (metric_type: stability): RIS, RRS, ROS")

	res = call(t, r, "list_metrics", map[string]any{"metric_type": "fairness"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "INVALID_PARAMETER")
}

func TestGenerateExplanation(t *testing.T) {
	r := newTestRouter(t)

	res := call(t, r, "generate_explanation", map[string]any{
		"method":      "lime",
		"data_sample": "[[0.1, 0.2, 0.3]]",
		"model_info":  map[string]any{"data_name": "german", "ml_model": "ann"},
	})
	require.False(t, res.IsError, text(res))
	out := text(res)
	assert.Contains(t, out, "Explanation with lime (LIME) for ann on german")
	assert.Contains(t, out, "torch.tensor([[0.1, 0.2, 0.3]], dtype=torch.float32)")
	assert.Contains(t, out, "param_dict = {'kernel_width': 0.75, 'n_samples': 1000}")
	assert.Contains(t, out, "Explainer(method='lime', model=model, param_dict=param_dict)")

	res = call(t, r, "generate_explanation", map[string]any{
		"method":      "control",
		"data_sample": "[[1]]",
		"model_info":  map[string]any{"data_name": "german", "ml_model": "lr"},
	})
	require.False(t, res.IsError, text(res))
	assert.Contains(t, text(res), "Explainer(method='control', model=model)\n")

	res = call(t, r, "generate_explanation", map[string]any{
		"method":      "ig",
		"data_sample": "[[1]]",
		"model_info":  map[string]any{"data_name": "german", "ml_model": "rf"},
	})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), `invalid parameter "method"`)
	assert.Contains(t, text(res), "lime, shap")

	res = call(t, r, "generate_explanation", map[string]any{
		"method":      "lime",
		"data_sample": "[[1]]",
		"model_info":  map[string]any{"data_name": "german"},
	})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), `invalid parameter "model_info.ml_model"`)
}

func TestEvaluateExplanation(t *testing.T) {
	r := newTestRouter(t)

	res := call(t, r, "evaluate_explanation", map[string]any{
		"metric":      "PGI",
		"explanation": "[0.1, 0.2]",
		"model_info":  map[string]any{"data_name": "german", "ml_model": "ann"},
	})
	require.False(t, res.IsError, text(res))
	out := text(res)
	assert.Contains(t, out, "Evaluation of PGI")
	assert.Contains(t, out, "data_name=german, ml_model=ann")
	assert.Contains(t, out, "higher is better")
	assert.Contains(t, out, "Evaluator(model, metric='PGI')")
	assert.Contains(t, out, "'perturb_method': 'gaussian',")
	assert.NotContains(t, out, "explainer = Explainer")

	res = call(t, r, "evaluate_explanation", map[string]any{
		"metric":      "RIS",
		"explanation": "[0.1]",
		"model_info":  map[string]any{"data_name": "compas", "ml_model": "lr"},
	})
	require.False(t, res.IsError, text(res))
	assert.Contains(t, text(res), "explainer = Explainer(method='lime', model=model)")
	assert.Contains(t, text(res), "lower is better")

	res = call(t, r, "evaluate_explanation", map[string]any{
		"metric":      "FA",
		"explanation": "[0.1]",
		"model_info":  map[string]any{"data_name": "german", "ml_model": "ann"},
	})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), `invalid parameter "metric"`)

	for _, mi := range []map[string]any{
		{"data_name": "german", "ml_model": "lr"},
		{"data_name": "synthetic_classification", "ml_model": "ann"},
	} {
		res = call(t, r, "evaluate_explanation", map[string]any{"metric": "FA", "explanation": "[0.1]", "model_info": mi})
		require.False(t, res.IsError, text(res))
		assert.Contains(t, text(res), "return_ground_truth_importance")
	}
}

func TestGetLeaderboard(t *testing.T) {
	r := newTestRouter(t)

	res := call(t, r, "get_leaderboard", nil)
	require.False(t, res.IsError)
	assert.Contains(t, text(res), "https://open-xai.github.io/leaderboard")
	assert.NotContains(t, text(res), "## Selection")

	res = call(t, r, "get_leaderboard", map[string]any{"dataset": "adult", "metric": "PGU"})
	require.False(t, res.IsError, text(res))
	assert.Contains(t, text(res), "- Dataset: adult (Adult Income)")
	assert.Contains(t, text(res), "- Ranked models: lr, ann")
	assert.Contains(t, text(res), "ranked ascending (lower is better)")
}

func TestGetFrameworkInfo(t *testing.T) {
	r := newTestRouter(t)

	res := call(t, r, "get_framework_info", nil)
	require.False(t, res.IsError)
	assert.Contains(t, text(res), "## Overview")
	assert.NotContains(t, text(res), "## Citation")

	res = call(t, r, "get_framework_info", map[string]any{"info_type": "installation"})
	require.False(t, res.IsError)
	assert.Contains(t, text(res), "pip install openxai")

	res = call(t, r, "get_framework_info", map[string]any{"info_type": "all"})
	require.False(t, res.IsError)
	for _, title := range []string{"## Overview", "## Features", "## Installation", "## Quickstart", "## Citation"} {
		assert.Contains(t, text(res), title)
	}

	res = call(t, r, "get_framework_info", map[string]any{"info_type": "pricing"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "INVALID_PARAMETER")
}

func TestPyString(t *testing.T) {
	assert.Equal(t, `'it\'s'`, pyString("it's"))
	assert.Equal(t, `'a\\b\nc'`, pyString("a\\b\nc"))
}

func TestSnippetArgumentsMustBeJSON(t *testing.T) {
	r := newTestRouter(t)
	modelInfo := map[string]any{"data_name": "german", "ml_model": "ann"}

	injected := "[[1]])\nimport os; os.system('rm -rf /')\n("
	for _, bad := range []string{injected, "", "[1, 2", "torch.zeros(3)"} {
		res := call(t, r, "generate_explanation", map[string]any{"method": "lime", "data_sample": bad, "model_info": modelInfo})
		assert.True(t, res.IsError, "data_sample=%q", bad)
		assert.Contains(t, text(res), `invalid parameter "data_sample": expected JSON`)
		assert.NotContains(t, text(res), "import os")

		res = call(t, r, "evaluate_explanation", map[string]any{"metric": "PGI", "explanation": bad, "model_info": modelInfo})
		assert.True(t, res.IsError, "explanation=%q", bad)
		assert.Contains(t, text(res), `invalid parameter "explanation": expected JSON`)
	}

	res := call(t, r, "generate_explanation", map[string]any{"method": "lime", "data_sample": " {} ", "model_info": modelInfo})
	require.False(t, res.IsError, text(res))
	assert.Contains(t, text(res), "torch.tensor({}, dtype=torch.float32)")
}

func TestEvaluateStabilityUsesExplanationMethod(t *testing.T) {
	r := newTestRouter(t)
	args := func(method string, model string) map[string]any {
		a := map[string]any{
			"metric":      "RRS",
			"explanation": "[0.3, -0.1]",
			"model_info":  map[string]any{"data_name": "adult", "ml_model": model},
		}
		if method != "" {
			a["method"] = method
		}
		return a
	}

	res := call(t, r, "evaluate_explanation", args("sg", "ann"))
	require.False(t, res.IsError, text(res))
	assert.Contains(t, text(res), "explainer = Explainer(method='sg', model=model)")
	assert.Contains(t, text(res), "Explanation method: sg")
	assert.NotContains(t, text(res), "Replace 'lime'")

	res = call(t, r, "evaluate_explanation", args("", "ann"))
	require.False(t, res.IsError, text(res))
	assert.Contains(t, text(res), "# Replace 'lime' with the method that produced the explanations.")

	res = call(t, r, "evaluate_explanation", args("ig", "xgb"))
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), `invalid parameter "method"`)

	res = call(t, r, "evaluate_explanation", args("gradcam", "ann"))
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "INVALID_PARAMETER")
}
