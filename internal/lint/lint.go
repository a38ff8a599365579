// Package lint valida um template já lido antes de enviá-lo ao
// CloudFormation.
package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/raywall/terraform-provider-dlfmwrk/internal/document"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/resolve"
	tpl "github.com/raywall/terraform-provider-dlfmwrk/internal/template"
)

const (
	TypeFunction = "AWS::Lambda::Function"
	TypeLayer    = "AWS::Lambda::LayerVersion"
)

// Nomes das regras.
const (
	RuleFormatVersion  = "format-version"
	RuleRequiredFields = "required-fields"
	RuleReferences     = "references"
	RuleNaming         = "naming"
	RuleOutputs        = "outputs"
)

// Finding é uma violação de regra em um caminho como
// Resources.DataAssetApiFunction.Properties.Code.S3Key.
type Finding struct {
	Rule    string
	Path    string
	Message string
}

func (f Finding) Error() string {
	return fmt.Sprintf("[%s] %s: %s", f.Rule, f.Path, f.Message)
}

// Report agrupa os findings de um Check.
type Report struct {
	Findings []Finding
}

// OK é verdadeiro quando nenhuma regra disparou.
func (r Report) OK() bool {
	return len(r.Findings) == 0
}

// Err retorna os findings como um único erro, ou nil.
func (r Report) Err() error {
	var result *multierror.Error
	for _, f := range r.Findings {
		result = multierror.Append(result, f)
	}
	return result.ErrorOrNil()
}

// Rules retorna os nomes das regras disparadas, sem repetição e ordenados.
func (r Report) Rules() []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range r.Findings {
		if !seen[f.Rule] {
			seen[f.Rule] = true
			out = append(out, f.Rule)
		}
	}
	sort.Strings(out)
	return out
}

func (r *Report) add(rule, path, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{Rule: rule, Path: path, Message: fmt.Sprintf(format, args...)})
}

// Options ajusta o Check.
type Options struct {
	// Resolve fornece overrides e pseudo parâmetros usados pela regra de
	// nomenclatura.
	Resolve resolve.Options
	// SkipNaming desliga a regra de nomenclatura para templates fora do
	// padrão aws-dl-fmwrk.
	SkipNaming bool
}

var required = map[string][][]string{
	TypeFunction: {
		{"FunctionName"},
		{"Code", "S3Bucket"},
		{"Code", "S3Key"},
		{"Handler"},
		{"Role"},
		{"Runtime"},
	},
	TypeLayer: {
		{"CompatibleRuntimes"},
		{"CompatibleArchitectures"},
		{"Content", "S3Bucket"},
		{"Content", "S3Key"},
		{"LayerName"},
	},
}

// Check executa todas as regras sobre doc.
func Check(doc *document.Document, opts Options) Report {
	var r Report
	checkFormatVersion(doc, &r)
	checkRequired(doc, &r)
	checkReferences(doc, &r)
	checkOutputs(doc, &r)
	if !opts.SkipNaming {
		checkNaming(doc, opts.Resolve, &r)
	}
	return r
}

func checkFormatVersion(doc *document.Document, r *Report) {
	if doc.FormatVersion != tpl.FormatVersion {
		r.add(RuleFormatVersion, "AWSTemplateFormatVersion", "expected %s, got %q", tpl.FormatVersion, doc.FormatVersion)
	}
}

func checkRequired(doc *document.Document, r *Report) {
	names := make([]string, 0, len(doc.Parameters))
	for name := range doc.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !present(doc.Parameters[name], "Type") {
			r.add(RuleRequiredFields, "Parameters."+name, "missing Type")
		}
	}

	for _, id := range doc.LogicalIDs() {
		res, _ := doc.Resource(id)
		if res.Type == "" {
			r.add(RuleRequiredFields, "Resources."+id, "missing Type")
			continue
		}
		for _, path := range required[res.Type] {
			if !present(res.Properties, path...) {
				r.add(RuleRequiredFields, "Resources."+id+".Properties."+strings.Join(path, "."), "required by %s", res.Type)
			}
		}
	}

	for name, out := range doc.Outputs {
		if !present(out, "Value") {
			r.add(RuleRequiredFields, "Outputs."+name, "missing Value")
		}
	}
}

func checkOutputs(doc *document.Document, r *Report) {
	if len(doc.Outputs) == 0 {
		r.add(RuleOutputs, "Outputs", "template declares no outputs")
	}
}

func present(v any, path ...string) bool {
	got, ok := document.Lookup(v, path...)
	if !ok || got == nil {
		return false
	}
	switch t := got.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}
