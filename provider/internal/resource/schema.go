package resource

import (
	"fmt"
	"regexp"

	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/schema"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/validation"

	"github.com/raywall/terraform-provider-dlfmwrk/internal/config"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/stack"
	tpl "github.com/raywall/terraform-provider-dlfmwrk/internal/template"
)

var envPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// declarationSchema são os argumentos comuns ao data source e ao recurso.
func declarationSchema() map[string]*schema.Schema {
	return map[string]*schema.Schema{
		"environment": {
			Type:             schema.TypeString,
			Optional:         true,
			Default:          "dev",
			Description:      "Environment suffix of every physical name (dev, qa, prod).",
			ValidateDiagFunc: validation.ToDiagFunc(validation.StringMatch(envPattern, "must be lowercase alphanumeric")),
		},
		"parameters": {
			Type:        schema.TypeMap,
			Optional:    true,
			Description: "Template parameter values, e.g. LambdaRoleArn, SubnetIdA.",
			Elem:        &schema.Schema{Type: schema.TypeString},
		},
		"overrides_file": {
			Type:        schema.TypeString,
			Optional:    true,
			Description: "TOML file overriding description, parameters and per-function settings.",
		},
		"format": {
			Type:             schema.TypeString,
			Optional:         true,
			Default:          string(tpl.FormatYAML),
			ValidateDiagFunc: validation.ToDiagFunc(validation.StringInSlice([]string{string(tpl.FormatYAML), string(tpl.FormatJSON)}, false)),
		},
	}
}

// synthRequest extrai do schema a requisição de síntese.
func synthRequest(d *schema.ResourceData) (stack.Request, error) {
	format, err := tpl.ParseFormat(d.Get("format").(string))
	if err != nil {
		return stack.Request{}, err
	}
	overrides, err := config.LoadOverrides(d.Get("overrides_file").(string))
	if err != nil {
		return stack.Request{}, err
	}
	return stack.Request{
		Environment: d.Get("environment").(string),
		Parameters:  stringMap(d.Get("parameters")),
		Overrides:   overrides,
		Format:      format,
	}, nil
}

func stringMap(raw interface{}) map[string]string {
	in, _ := raw.(map[string]interface{})
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}

func toMap(in map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
