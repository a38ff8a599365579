// Package stack sintetiza a stack de lambdas a partir do catálogo e dos
// overrides, e reporta os nomes concretos que o template vai produzir.
package stack

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/raywall/terraform-provider-dlfmwrk/internal/catalog"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/config"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/document"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/lint"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/resolve"
	tpl "github.com/raywall/terraform-provider-dlfmwrk/internal/template"
	"github.com/raywall/terraform-provider-dlfmwrk/pkg/types"
)

var ErrLint = errors.New("synthesized template failed lint")

// Request define o que sintetizar. Parameters e Environment são aplicados
// por cima de Overrides.
type Request struct {
	Environment string
	Parameters  map[string]string
	Overrides   *config.Overrides
	Format      tpl.Format
	Region      string
	AccountID   string
	StackName   string
}

// Result é uma stack sintetizada.
type Result struct {
	Config        *types.StackConfig
	Body          []byte
	Document      *document.Document
	Parameters    map[string]string // valores efetivos
	FunctionNames map[string]string // service -> function name
	CodeKeys      map[string]string // service -> S3 key
	LayerName     string
	// Missing lista os parâmetros obrigatórios que a requisição não informou.
	Missing []string
}

// Supplied retorna os valores informados explicitamente, sem os defaults da
// declaração: overrides, depois Parameters, depois Environment.
func (req Request) Supplied() map[string]string {
	var base map[string]string
	if req.Overrides != nil {
		base = req.Overrides.Parameters
	}
	out := lo.Assign(base, req.Parameters)
	if req.Environment != "" {
		out[catalog.ParamEnvironment] = req.Environment
	}
	return out
}

// Synthesize renderiza a stack para req.
func Synthesize(req Request) (*Result, error) {
	overrides := req.Overrides
	if overrides == nil {
		overrides = &config.Overrides{}
	}
	params := lo.Assign(req.Parameters)
	if req.Environment != "" {
		params[catalog.ParamEnvironment] = req.Environment
	}
	overrides = overrides.WithParameters(params)

	cfg, err := catalog.Apply(catalog.Default(), overrides)
	if err != nil {
		return nil, fmt.Errorf("applying overrides: %w", err)
	}
	if err := catalog.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating declaration: %w", err)
	}

	format := req.Format
	if format == "" {
		format = tpl.FormatYAML
	}
	body, err := tpl.Render(cfg, format)
	if err != nil {
		return nil, fmt.Errorf("rendering template: %w", err)
	}
	doc, err := document.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parsing rendered template: %w", err)
	}

	ropts := resolve.Options{Region: req.Region, AccountID: req.AccountID, StackName: req.StackName}
	if err := lint.Check(doc, lint.Options{Resolve: ropts}).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLint, err)
	}

	res := &Result{
		Config:        cfg,
		Body:          body,
		Document:      doc,
		Parameters:    doc.ParameterDefaults(),
		FunctionNames: map[string]string{},
		CodeKeys:      map[string]string{},
	}
	supplied := req.Supplied()
	for _, p := range cfg.Parameters {
		if p.Required && supplied[p.Name] == "" {
			res.Missing = append(res.Missing, p.Name)
		}
	}

	r := resolve.New(doc, ropts)
	for _, f := range cfg.Functions {
		props := mustResource(doc, f.LogicalID).Properties
		if res.FunctionNames[f.Service], err = r.String(props["FunctionName"]); err != nil {
			return nil, fmt.Errorf("resolving %s name: %w", f.LogicalID, err)
		}
		key, _ := document.Lookup(props, "Code", "S3Key")
		if res.CodeKeys[f.Service], err = r.String(key); err != nil {
			return nil, fmt.Errorf("resolving %s code key: %w", f.LogicalID, err)
		}
	}
	if len(cfg.Layers) > 0 {
		props := mustResource(doc, cfg.Layers[0].LogicalID).Properties
		if res.LayerName, err = r.String(props["LayerName"]); err != nil {
			return nil, fmt.Errorf("resolving layer name: %w", err)
		}
	}
	return res, nil
}

func mustResource(doc *document.Document, id string) document.Resource {
	res, ok := doc.Resource(id)
	if !ok {
		panic(fmt.Sprintf("rendered template lost resource %s", id))
	}
	return res
}
