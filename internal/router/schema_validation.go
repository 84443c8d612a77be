package router

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	xerrors "github.com/golovatskygroup/mcp-xai/internal/errors"
)

// InputSchema renders the JSON Schema advertised in tools/list. The same
// document is compiled and enforced by Invoke.
func InputSchema(spec ToolSpec) json.RawMessage {
	b, err := json.Marshal(objectSchema(spec.Params))
	if err != nil {
		// Only reachable with a non-JSON Default, which is a programming error.
		panic(fmt.Sprintf("tool %s: %v", spec.Name, err))
	}
	return b
}

func objectSchema(params []ParamSpec) map[string]any {
	props := make(map[string]any, len(params))
	required := []string{}
	for _, p := range params {
		props[p.Name] = paramSchema(p)
		if p.Required {
			required = append(required, p.Name)
		}
	}
	s := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func paramSchema(p ParamSpec) map[string]any {
	var s map[string]any
	if p.Type == Object && len(p.Properties) > 0 {
		s = objectSchema(p.Properties)
	} else {
		s = map[string]any{"type": string(p.Type)}
	}
	if p.Description != "" {
		s["description"] = p.Description
	}
	if len(p.AllowedValues) > 0 {
		s["enum"] = p.AllowedValues
	}
	if p.Default != nil {
		s["default"] = p.Default
	}
	return s
}

func compileSchema(toolName string, schema json.RawMessage) (*jsonschema.Schema, error) {
	return jsonschema.CompileString(toolName+".json", string(schema))
}

func firstLeafValidationError(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	if err == nil {
		return nil
	}
	if len(err.Causes) == 0 {
		return err
	}
	for _, c := range err.Causes {
		if leaf := firstLeafValidationError(c); leaf != nil {
			return leaf
		}
	}
	return err
}

// checkRequired walks the declared params so a missing field is reported by
// name rather than through the validator's message text.
func checkRequired(params []ParamSpec, args map[string]any, prefix string) error {
	for _, p := range params {
		field := prefix + p.Name
		v, ok := args[p.Name]
		if !ok || v == nil {
			if p.Required {
				return xerrors.InvalidParam(field, "required parameter is missing")
			}
			continue
		}
		if p.Type == Object && len(p.Properties) > 0 {
			nested, ok := v.(map[string]any)
			if !ok {
				return xerrors.InvalidParam(field, "expected object")
			}
			if err := checkRequired(p.Properties, nested, field+"."); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateArgs(toolName string, params []ParamSpec, schema *jsonschema.Schema, args map[string]any) error {
	if err := checkRequired(params, args, ""); err != nil {
		return err
	}
	if err := schema.Validate(args); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			leaf := firstLeafValidationError(ve)
			field := fieldFromLocation(leaf.InstanceLocation)
			msg := leaf.Message
			if msg == "" {
				msg = leaf.Error()
			}
			return xerrors.InvalidParam(field, "%s", msg)
		}
		return xerrors.Wrap(xerrors.InvalidParameter, fmt.Sprintf("arguments for %s failed validation", toolName), err)
	}
	return nil
}

// fieldFromLocation turns a JSON pointer such as /model_info/ml_model into model_info.ml_model
func fieldFromLocation(loc string) string {
	loc = strings.Trim(loc, "/")
	if loc == "" {
		return "arguments"
	}
	parts := strings.Split(loc, "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return strings.Join(parts, ".")
}

// applyDefaults fills absent optional params with their declared defaults
func applyDefaults(params []ParamSpec, args map[string]any) {
	for _, p := range params {
		v, ok := args[p.Name]
		if (!ok || v == nil) && p.Default != nil {
			args[p.Name] = p.Default
			continue
		}
		if nested, isObj := v.(map[string]any); isObj && len(p.Properties) > 0 {
			applyDefaults(p.Properties, nested)
		}
	}
}
