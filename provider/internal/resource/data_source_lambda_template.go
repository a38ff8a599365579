package resource

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/hashicorp/terraform-plugin-sdk/v2/diag"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/schema"

	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/models"
	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/service"
)

// DataSourceLambdaTemplate sintetiza o template sem tocar na AWS.
func DataSourceLambdaTemplate() *schema.Resource {
	s := declarationSchema()
	s["body"] = &schema.Schema{Type: schema.TypeString, Computed: true}
	s["layer_name"] = &schema.Schema{Type: schema.TypeString, Computed: true}
	for _, name := range []string{"function_names", "code_keys", "parameter_values"} {
		s[name] = &schema.Schema{Type: schema.TypeMap, Computed: true, Elem: &schema.Schema{Type: schema.TypeString}}
	}

	return &schema.Resource{
		Description: "Renders the data lake framework lambda stack template.",
		ReadContext: dataSourceLambdaTemplateRead,
		Schema:      s,
	}
}

func dataSourceLambdaTemplateRead(ctx context.Context, d *schema.ResourceData, m interface{}) diag.Diagnostics {
	svc := &service.TemplateService{}
	if bundle, ok := m.(*models.ConfigurationBundle); ok && bundle.TemplateService != nil {
		svc = bundle.TemplateService
	}

	req, err := synthRequest(d)
	if err != nil {
		return diag.FromErr(err)
	}
	res, err := svc.Synthesize(req)
	if err != nil {
		return diag.FromErr(fmt.Errorf("synthesizing template: %w", err))
	}
	tflog.Debug(ctx, "template synthesized", map[string]interface{}{"environment": req.Environment, "bytes": len(res.Body)})

	d.SetId(fmt.Sprintf("%x", sha256.Sum256(res.Body)))
	_ = d.Set("body", string(res.Body))
	_ = d.Set("layer_name", res.LayerName)
	_ = d.Set("function_names", toMap(res.FunctionNames))
	_ = d.Set("code_keys", toMap(res.CodeKeys))
	_ = d.Set("parameter_values", toMap(res.Parameters))
	return nil
}
