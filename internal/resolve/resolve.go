// Package resolve substitui os valores dos parâmetros em Ref e Fn::Sub para
// obter os nomes concretos que um template produz antes do deploy.
package resolve

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/raywall/terraform-provider-dlfmwrk/internal/document"
	tpl "github.com/raywall/terraform-provider-dlfmwrk/internal/template"
)

var (
	ErrUnresolved  = errors.New("unresolved reference")
	ErrUnsupported = errors.New("unsupported intrinsic function")
	ErrMalformed   = errors.New("malformed intrinsic function")
)

// Options fornece o que o template não tem: overrides de parâmetros e os
// valores dos pseudo parâmetros.
type Options struct {
	Overrides map[string]string
	Region    string
	AccountID string
	StackName string
}

// Resolver avalia intrinsics sobre um documento.
type Resolver struct {
	values    map[string]string
	resources map[string]bool
}

// New coleta os defaults dos parâmetros de doc e aplica os overrides e os
// pseudo parâmetros.
func New(doc *document.Document, opts Options) *Resolver {
	r := &Resolver{
		values:    doc.ParameterDefaults(),
		resources: make(map[string]bool, len(doc.Resources)),
	}
	for name, v := range opts.Overrides {
		r.values[name] = v
	}
	for id := range doc.Resources {
		r.resources[id] = true
	}

	pseudo := map[string]string{
		tpl.PseudoRegion:    or(opts.Region, "us-east-1"),
		tpl.PseudoAccountID: or(opts.AccountID, "000000000000"),
		tpl.PseudoStackName: or(opts.StackName, "dlfmwrk"),
		tpl.PseudoPartition: "aws",
		tpl.PseudoURLSuffix: "amazonaws.com",
	}
	for k, v := range pseudo {
		r.values[k] = v
	}
	return r
}

// IsPseudo indica se name é um pseudo parâmetro.
func IsPseudo(name string) bool {
	return strings.HasPrefix(name, "AWS::")
}

// Value retorna o valor que um Ref para name produziria.
func (r *Resolver) Value(name string) (string, error) {
	if v, ok := r.values[name]; ok {
		return v, nil
	}
	if r.resources[name] {
		return placeholder(name), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnresolved, name)
}

// String resolve v e exige um resultado string.
func (r *Resolver) String(v any) (string, error) {
	out, err := r.Resolve(v)
	if err != nil {
		return "", err
	}
	switch s := out.(type) {
	case string:
		return s, nil
	case int, int64, float64, bool:
		return fmt.Sprint(s), nil
	default:
		return "", fmt.Errorf("%w: expected a string, got %T", ErrMalformed, out)
	}
}

// Resolve avalia todos os intrinsics dentro de v.
func (r *Resolver) Resolve(v any) (any, error) {
	if name, arg, ok := document.Intrinsic(v); ok {
		return r.intrinsic(name, arg)
	}
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			rv, err := r.Resolve(item)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			rv, err := r.Resolve(item)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil
	default:
		return v, nil
	}
}

func (r *Resolver) intrinsic(name string, arg any) (any, error) {
	switch name {
	case "Ref":
		s, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("%w: Ref takes a name", ErrMalformed)
		}
		return r.Value(s)
	case "Fn::Sub":
		return r.sub(arg)
	case "Fn::GetAtt":
		parts, err := getAttParts(arg)
		if err != nil {
			return nil, err
		}
		if !r.resources[parts[0]] {
			return nil, fmt.Errorf("%w: %s", ErrUnresolved, parts[0])
		}
		return placeholder(strings.Join(parts, ".")), nil
	case "Fn::Join":
		return r.join(arg)
	case "Fn::Select":
		return r.selectItem(arg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
}

func (r *Resolver) sub(arg any) (any, error) {
	var (
		tmpl string
		vars = map[string]string{}
	)
	switch t := arg.(type) {
	case string:
		tmpl = t
	case []any:
		if len(t) != 2 {
			return nil, fmt.Errorf("%w: Fn::Sub list takes [template, variables]", ErrMalformed)
		}
		s, ok := t[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: Fn::Sub template is not a string", ErrMalformed)
		}
		tmpl = s
		m, ok := t[1].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: Fn::Sub variables are not a mapping", ErrMalformed)
		}
		for k, v := range m {
			rv, err := r.String(v)
			if err != nil {
				return nil, err
			}
			vars[k] = rv
		}
	default:
		return nil, fmt.Errorf("%w: Fn::Sub takes a string or a list", ErrMalformed)
	}

	return Interpolate(tmpl, func(name string) (string, error) {
		if v, ok := vars[name]; ok {
			return v, nil
		}
		if i := strings.Index(name, "."); i > 0 && r.resources[name[:i]] {
			return placeholder(name), nil
		}
		return r.Value(name)
	})
}

// Interpolate substitui ${Name} em s usando lookup. ${!Literal} vira
// ${Literal}.
func Interpolate(s string, lookup func(string) (string, error)) (string, error) {
	var b strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			return "", fmt.Errorf("%w: unterminated ${ in %q", ErrMalformed, s)
		}
		end += start

		b.WriteString(s[:start])
		name := s[start+2 : end]
		if strings.HasPrefix(name, "!") {
			b.WriteString("${" + name[1:] + "}")
		} else {
			v, err := lookup(strings.TrimSpace(name))
			if err != nil {
				return "", err
			}
			b.WriteString(v)
		}
		s = s[end+1:]
	}
}

// Names lista as variáveis ${Name} referenciadas em s, ignorando ${!Literal}.
func Names(s string) []string {
	var out []string
	_, _ = Interpolate(s, func(name string) (string, error) {
		out = append(out, name)
		return "", nil
	})
	return out
}

func (r *Resolver) join(arg any) (any, error) {
	list, ok := arg.([]any)
	if !ok || len(list) != 2 {
		return nil, fmt.Errorf("%w: Fn::Join takes [delimiter, values]", ErrMalformed)
	}
	delim, ok := list[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: Fn::Join delimiter is not a string", ErrMalformed)
	}
	items, err := r.Resolve(list[1])
	if err != nil {
		return nil, err
	}
	values, ok := items.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: Fn::Join values are not a list", ErrMalformed)
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, delim), nil
}

func (r *Resolver) selectItem(arg any) (any, error) {
	list, ok := arg.([]any)
	if !ok || len(list) != 2 {
		return nil, fmt.Errorf("%w: Fn::Select takes [index, values]", ErrMalformed)
	}
	idx, err := strconv.Atoi(fmt.Sprint(list[0]))
	if err != nil {
		return nil, fmt.Errorf("%w: Fn::Select index: %v", ErrMalformed, err)
	}
	items, err := r.Resolve(list[1])
	if err != nil {
		return nil, err
	}
	values, ok := items.([]any)
	if !ok || idx < 0 || idx >= len(values) {
		return nil, fmt.Errorf("%w: Fn::Select index %d out of range", ErrMalformed, idx)
	}
	return values[idx], nil
}

func getAttParts(arg any) ([]string, error) {
	switch t := arg.(type) {
	case string:
		if i := strings.Index(t, "."); i > 0 {
			return []string{t[:i], t[i+1:]}, nil
		}
	case []any:
		if len(t) == 2 {
			a, okA := t[0].(string)
			b, okB := t[1].(string)
			if okA && okB {
				return []string{a, b}, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: Fn::GetAtt takes Resource.Attribute", ErrMalformed)
}

func placeholder(name string) string {
	return "<" + name + ">"
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
