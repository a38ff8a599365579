package lint

import (
	"sort"
	"strconv"
	"strings"

	"github.com/raywall/terraform-provider-dlfmwrk/internal/document"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/resolve"
)

func checkReferences(doc *document.Document, r *Report) {
	known := func(name string) bool {
		if resolve.IsPseudo(name) || doc.HasParameter(name) {
			return true
		}
		_, ok := doc.Resources[name]
		return ok
	}

	visit := func(path, fn string, arg any) {
		switch fn {
		case "Ref":
			name, _ := arg.(string)
			if !known(name) {
				r.add(RuleReferences, path, "Ref to undeclared %q", name)
			}
		case "Fn::GetAtt":
			res := getAttResource(arg)
			if _, ok := doc.Resources[res]; !ok {
				r.add(RuleReferences, path, "Fn::GetAtt on undeclared resource %q", res)
			}
		case "Fn::Sub":
			tmpl, local := subParts(arg)
			for _, name := range resolve.Names(tmpl) {
				if local[name] {
					continue
				}
				base := name
				if i := strings.Index(name, "."); i > 0 {
					base = name[:i]
				}
				if !known(base) {
					r.add(RuleReferences, path, "Fn::Sub variable ${%s} is not declared", name)
				}
			}
		}
	}

	for _, id := range doc.LogicalIDs() {
		walk(doc.Resources[id], "Resources."+id, visit)
	}
	outputs := make([]string, 0, len(doc.Outputs))
	for name := range doc.Outputs {
		outputs = append(outputs, name)
	}
	sort.Strings(outputs)
	for _, name := range outputs {
		walk(doc.Outputs[name], "Outputs."+name, visit)
	}

	checkLayerReferences(doc, r)
}

// checkLayerReferences exige que todo Ref em Layers aponte para uma layer
// declarada no mesmo documento. ARNs literais são aceitos.
func checkLayerReferences(doc *document.Document, r *Report) {
	for _, fn := range doc.ResourcesOfType(TypeFunction) {
		raw, ok := fn.Properties["Layers"]
		if !ok {
			continue
		}
		path := "Resources." + fn.LogicalID + ".Properties.Layers"
		list, ok := raw.([]any)
		if !ok {
			r.add(RuleReferences, path, "Layers is not a list")
			continue
		}
		for i, item := range list {
			itemPath := path + "." + strconv.Itoa(i)
			if s, ok := item.(string); ok {
				if !strings.HasPrefix(s, "arn:") {
					r.add(RuleReferences, itemPath, "layer %q is neither a Ref nor an ARN", s)
				}
				continue
			}
			name, arg, ok := document.Intrinsic(item)
			if !ok || name != "Ref" {
				continue
			}
			id, _ := arg.(string)
			if res, found := doc.Resource(id); found && res.Type != TypeLayer {
				r.add(RuleReferences, itemPath, "%s is a %s, not a layer", id, res.Type)
			}
		}
	}
}

func walk(v any, path string, visit func(path, fn string, arg any)) {
	if fn, arg, ok := document.Intrinsic(v); ok {
		visit(path, fn, arg)
		walk(arg, path+"."+fn, visit)
		return
	}
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walk(t[k], path+"."+k, visit)
		}
	case []any:
		for i, item := range t {
			walk(item, path+"."+strconv.Itoa(i), visit)
		}
	}
}

func getAttResource(arg any) string {
	switch t := arg.(type) {
	case string:
		if i := strings.Index(t, "."); i > 0 {
			return t[:i]
		}
		return t
	case []any:
		if len(t) > 0 {
			s, _ := t[0].(string)
			return s
		}
	}
	return ""
}

func subParts(arg any) (string, map[string]bool) {
	switch t := arg.(type) {
	case string:
		return t, nil
	case []any:
		if len(t) != 2 {
			return "", nil
		}
		tmpl, _ := t[0].(string)
		local := map[string]bool{}
		if m, ok := t[1].(map[string]any); ok {
			for k := range m {
				local[k] = true
			}
		}
		return tmpl, local
	}
	return "", nil
}
