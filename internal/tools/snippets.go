package tools

import (
	"strings"
	"text/template"
)

var snippetFuncs = template.FuncMap{
	"py": pyString,
	"pybool": func(b bool) string {
		if b {
			return "True"
		}
		return "False"
	},
}

// pyString quotes s as a single-quoted Python literal
func pyString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}

var loadDatasetTmpl = template.Must(template.New("load_dataset").Funcs(snippetFuncs).Parse(`from openxai.dataloader import ReturnLoaders

trainloader, testloader = ReturnLoaders(data_name={{py .DataName}}, download={{pybool .Download}}, batch_size={{.BatchSize}})
inputs, labels = next(iter(testloader))
print(inputs.shape)  # (batch_size, {{.Features}})
`))

var loadModelTmpl = template.Must(template.New("load_model").Funcs(snippetFuncs).Parse(`from openxai import LoadModel

model = LoadModel(data_name={{py .DataName}}, ml_model={{py .MLModel}}, pretrained={{pybool .Pretrained}})
model.eval()
`))

var explanationTmpl = template.Must(template.New("generate_explanation").Funcs(snippetFuncs).Parse(`import torch
from openxai import LoadModel, Explainer

model = LoadModel(data_name={{py .DataName}}, ml_model={{py .MLModel}}, pretrained=True)
inputs = torch.tensor({{.DataSample}}, dtype=torch.float32)
{{- if .Params}}
param_dict = { {{- range $i, $p := .Params}}{{if $i}}, {{end}}{{py $p.Key}}: {{$p.Value}}{{end -}} }
explainer = Explainer(method={{py .Method}}, model=model, param_dict=param_dict)
{{- else}}
explainer = Explainer(method={{py .Method}}, model=model)
{{- end}}
explanations = explainer.get_explanations(inputs)
`))

var evaluationTmpl = template.Must(template.New("evaluate_explanation").Funcs(snippetFuncs).Parse(`import torch
from openxai import LoadModel, Explainer, Evaluator
from openxai.dataloader import ReturnLoaders

model = LoadModel(data_name={{py .DataName}}, ml_model={{py .MLModel}}, pretrained=True)
_, testloader = ReturnLoaders(data_name={{py .DataName}}, download=True)
inputs, labels = next(iter(testloader))
explanations = torch.tensor({{.Explanation}}, dtype=torch.float32)
{{- if .Stability}}
{{- if .Method}}
explainer = Explainer(method={{py .Method}}, model=model)
{{- else}}
# Replace 'lime' with the method that produced the explanations.
explainer = Explainer(method='lime', model=model)
{{- end}}
{{- end}}

metric_kwargs = {
    'explanations': explanations,
{{- range .Kwargs}}
    {{py .Key}}: {{.Value}},
{{- end}}
}
evaluator = Evaluator(model, metric={{py .Metric}})
score, mean_score = evaluator.evaluate(**metric_kwargs)
print({{py .Metric}}, mean_score)
`))

type kv struct {
	Key   string
	Value string
}

func render(t *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func codeBlock(code string) string {
	return "```python\n" + strings.TrimRight(code, "\n") + "\n```"
}
