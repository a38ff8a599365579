// Package document faz o parse de templates CloudFormation (JSON ou YAML,
// intrinsics na forma curta ou longa) para uma árvore genérica.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmpty        = errors.New("template is empty")
	ErrNotMapping   = errors.New("template is not a mapping")
	ErrNoResources  = errors.New("template declares no resources")
	ErrDuplicateKey = errors.New("duplicate mapping key")
)

// Document é um template já lido. Intrinsics ficam na forma longa:
// {"Ref": name}, {"Fn::Sub": value}, ...
type Document struct {
	FormatVersion string
	Description   string
	Parameters    map[string]any
	Resources     map[string]any
	Outputs       map[string]any
}

// Resource é uma entrada da seção Resources.
type Resource struct {
	LogicalID  string
	Type       string
	Properties map[string]any
}

// Parse lê um template. JSON é aceito por ser YAML válido.
func Parse(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmpty
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, ErrEmpty
	}
	tree, err := convert(root.Content[0])
	if err != nil {
		return nil, err
	}
	top, ok := tree.(map[string]any)
	if !ok {
		return nil, ErrNotMapping
	}

	doc := &Document{
		Parameters: mapping(top["Parameters"]),
		Resources:  mapping(top["Resources"]),
		Outputs:    mapping(top["Outputs"]),
	}
	doc.FormatVersion = scalarString(top["AWSTemplateFormatVersion"])
	doc.Description, _ = top["Description"].(string)
	if len(doc.Resources) == 0 {
		return nil, ErrNoResources
	}
	return doc, nil
}

// LogicalIDs retorna os ids dos recursos, ordenados.
func (d *Document) LogicalIDs() []string {
	ids := make([]string, 0, len(d.Resources))
	for id := range d.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resource retorna o recurso declarado com id.
func (d *Document) Resource(id string) (Resource, bool) {
	raw, ok := d.Resources[id]
	if !ok {
		return Resource{}, false
	}
	body := mapping(raw)
	typ, _ := body["Type"].(string)
	return Resource{LogicalID: id, Type: typ, Properties: mapping(body["Properties"])}, true
}

// ResourcesOfType retorna os recursos do tipo t, ordenados pelo logical id.
func (d *Document) ResourcesOfType(t string) []Resource {
	var out []Resource
	for _, id := range d.LogicalIDs() {
		if r, _ := d.Resource(id); r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// HasParameter indica se name está declarado em Parameters.
func (d *Document) HasParameter(name string) bool {
	_, ok := d.Parameters[name]
	return ok
}

// ParameterDefaults retorna o Default de cada parâmetro que tiver um.
func (d *Document) ParameterDefaults() map[string]string {
	out := make(map[string]string, len(d.Parameters))
	for name, raw := range d.Parameters {
		if def, ok := mapping(raw)["Default"]; ok && def != nil {
			out[name] = scalarString(def)
		}
	}
	return out
}

// Lookup percorre mapas aninhados seguindo path.
func Lookup(v any, path ...string) (any, bool) {
	cur := v
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Intrinsic indica se v é um mapa de chave única de uma função intrínseca e
// retorna o nome ("Ref", "Fn::Sub", ...) e o argumento.
func Intrinsic(v any) (string, any, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return "", nil, false
	}
	for k, arg := range m {
		if k == "Ref" || k == "Condition" || strings.HasPrefix(k, "Fn::") {
			return k, arg, true
		}
	}
	return "", nil, false
}

func mapping(v any) map[string]any {
	m, _ := v.(map[string]any)
	if m == nil {
		return map[string]any{}
	}
	return m
}

func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
