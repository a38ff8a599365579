package lint

import (
	"regexp"

	"github.com/raywall/terraform-provider-dlfmwrk/internal/catalog"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/document"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/resolve"
)

var envPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// checkNaming substitui os parâmetros e exige nomes de função no formato
// aws-dl-fmwrk-<service>-api-<environment> com a chave de código
// <name>.zip correspondente.
func checkNaming(doc *document.Document, opts resolve.Options, r *Report) {
	res := resolve.New(doc, opts)

	env := `[a-z0-9]+`
	if doc.HasParameter(catalog.ParamEnvironment) {
		if v, err := res.Value(catalog.ParamEnvironment); err == nil {
			if !envPattern.MatchString(v) {
				r.add(RuleNaming, "Parameters."+catalog.ParamEnvironment, "%q is not lowercase alphanumeric", v)
			}
			env = regexp.QuoteMeta(v)
		}
	}
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(catalog.Prefix) + `-[a-z0-9]+(?:-[a-z0-9]+)*-api-` + env + `$`)

	names := map[string]string{}
	for _, fn := range doc.ResourcesOfType(TypeFunction) {
		path := "Resources." + fn.LogicalID + ".Properties"
		raw, ok := fn.Properties["FunctionName"]
		if !ok {
			continue
		}
		name, err := res.String(raw)
		if err != nil {
			r.add(RuleNaming, path+".FunctionName", "cannot resolve: %v", err)
			continue
		}
		if !pattern.MatchString(name) {
			r.add(RuleNaming, path+".FunctionName", "%q does not match %s", name, pattern)
		}
		if other, dup := names[name]; dup {
			r.add(RuleNaming, path+".FunctionName", "%q is also used by %s", name, other)
		}
		names[name] = fn.LogicalID

		rawKey, ok := document.Lookup(fn.Properties, "Code", "S3Key")
		if !ok {
			continue
		}
		key, err := res.String(rawKey)
		if err != nil {
			r.add(RuleNaming, path+".Code.S3Key", "cannot resolve: %v", err)
			continue
		}
		if key != name+".zip" {
			r.add(RuleNaming, path+".Code.S3Key", "expected %q, got %q", name+".zip", key)
		}
	}
}
