package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/golovatskygroup/mcp-xai/internal/catalog"
	xerrors "github.com/golovatskygroup/mcp-xai/internal/errors"
	"github.com/golovatskygroup/mcp-xai/internal/format"
	"github.com/golovatskygroup/mcp-xai/internal/router"
	"github.com/golovatskygroup/mcp-xai/pkg/mcp"
)

// Explainer attributes that become constructor params in the snippet.
var explainerParamKeys = map[string]bool{
	"n_samples":          true,
	"standard_deviation": true,
	"steps":              true,
	"kernel_width":       true,
}

func (h *Handler) generateExplanation(_ context.Context, args router.Args) (*mcp.CallToolResult, error) {
	method, err := h.lookup(catalog.Explainer, args.String("method"))
	if err != nil {
		return nil, err
	}
	ds, model, err := h.modelInfo(args)
	if err != nil {
		return nil, err
	}
	if err := h.checkGradients(method, model); err != nil {
		return nil, err
	}
	sample, err := jsonArg(args, "data_sample")
	if err != nil {
		return nil, err
	}

	code, err := render(explanationTmpl, struct {
		DataName   string
		MLModel    string
		Method     string
		DataSample string
		Params     []kv
	}{ds.ID, model.ID, method.ID, sample, pythonParams(method.Attributes, explainerParamKeys)})
	if err != nil {
		return nil, xerrors.Wrap(xerrors.InternalError, "failed to render explanation snippet", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Explanation with %s (%s) for %s on %s\n\n", method.ID, method.Name, model.ID, ds.ID))
	sb.WriteString(method.Description + "\n")
	if access, ok := method.Attributes["model_access"]; ok {
		sb.WriteString(fmt.Sprintf("Model access: %v\n", access))
	}
	sb.WriteString("\n" + codeBlock(code))
	return format.Text(sb.String()), nil
}

func (h *Handler) evaluateExplanation(_ context.Context, args router.Args) (*mcp.CallToolResult, error) {
	metric, err := h.lookup(catalog.Metric, args.String("metric"))
	if err != nil {
		return nil, err
	}
	ds, model, err := h.modelInfo(args)
	if err != nil {
		return nil, err
	}
	if attrBool(metric, "requires_ground_truth") && !attrBool(model, "ground_truth_weights") && !attrBool(ds, "ground_truth") {
		return nil, xerrors.InvalidParam("metric",
			"%s compares against ground-truth attributions, which %s on %s does not provide; use lr or a synthetic dataset",
			metric.ID, model.ID, ds.ID)
	}
	explanation, err := jsonArg(args, "explanation")
	if err != nil {
		return nil, err
	}
	var methodID string
	if args.Has("method") {
		method, err := h.lookup(catalog.Explainer, args.String("method"))
		if err != nil {
			return nil, err
		}
		if err := h.checkGradients(method, model); err != nil {
			return nil, err
		}
		methodID = method.ID
	}

	code, err := render(evaluationTmpl, struct {
		DataName    string
		MLModel     string
		Metric      string
		Method      string
		Explanation string
		Kwargs      []kv
		Stability   bool
	}{ds.ID, model.ID, metric.ID, methodID, explanation, metricKwargs(metric), metric.HasTag("stability")})
	if err != nil {
		return nil, xerrors.Wrap(xerrors.InternalError, "failed to render evaluation snippet", err)
	}

	direction := "lower is better"
	if attrBool(metric, "higher_is_better") {
		direction = "higher is better"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Evaluation of %s (%s) for %s on %s\n\n", metric.ID, metric.Name, model.ID, ds.ID))
	sb.WriteString(metric.Description + "\n")
	sb.WriteString(fmt.Sprintf("Metric type: %s, %s\n", strings.Join(metric.Tags, ", "), direction))
	sb.WriteString(fmt.Sprintf("Model info: data_name=%s, ml_model=%s\n", ds.ID, model.ID))
	if methodID != "" {
		sb.WriteString("Explanation method: " + methodID + "\n")
	}
	sb.WriteString("\n" + codeBlock(code))
	return format.Text(sb.String()), nil
}

func (h *Handler) checkGradients(method, model catalog.Entry) error {
	if attrBool(method, "requires_gradients") && !attrBool(model, "differentiable") {
		return xerrors.InvalidParam("method",
			"%s needs gradients but %s is not differentiable; use a perturbation method such as %s",
			method.ID, model.ID, h.perturbationMethods())
	}
	return nil
}

// jsonArg returns a string argument that must hold a JSON document. It is
// pasted into Python source, so anything else is rejected.
func jsonArg(args router.Args, name string) (string, error) {
	v := strings.TrimSpace(args.String(name))
	if !json.Valid([]byte(v)) {
		return "", xerrors.InvalidParam(name, "expected JSON")
	}
	return v, nil
}

// metricKwargs returns the extra Evaluator arguments each metric family expects
func metricKwargs(metric catalog.Entry) []kv {
	switch {
	case metric.HasTag("ground_truth"):
		return []kv{{"k", "0.25"}, {"ground_truth", "model.return_ground_truth_importance(inputs)"}}
	case metric.HasTag("faithfulness"):
		return []kv{
			{"inputs", "inputs"},
			{"k", "0.25"},
			{"perturb_method", "'gaussian'"},
			{"num_samples", "100"},
		}
	case metric.HasTag("stability"):
		return []kv{
			{"inputs", "inputs"},
			{"explainer", "explainer"},
			{"perturb_method", "'gaussian'"},
			{"num_perturbations", "50"},
		}
	}
	return nil
}

func (h *Handler) perturbationMethods() string {
	entries, err := h.store.Filter(catalog.Explainer, "perturbation")
	if err != nil || len(entries) == 0 {
		return "a black-box method"
	}
	return joinIDs(entries)
}

// pythonParams renders the selected attributes as sorted Python keyword values
func pythonParams(attrs map[string]any, keys map[string]bool) []kv {
	var out []kv
	for k, v := range attrs {
		if !keys[k] {
			continue
		}
		out = append(out, kv{Key: k, Value: pythonValue(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func pythonValue(v any) string {
	switch vv := v.(type) {
	case bool:
		if vv {
			return "True"
		}
		return "False"
	case string:
		return pyString(vv)
	default:
		return fmt.Sprintf("%v", vv)
	}
}

func attrBool(e catalog.Entry, key string) bool {
	b, _ := e.Attributes[key].(bool)
	return b
}
