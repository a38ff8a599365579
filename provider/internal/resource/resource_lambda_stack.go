package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/hashicorp/terraform-plugin-sdk/v2/diag"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/schema"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/validation"

	dto "github.com/raywall/terraform-provider-dlfmwrk/pkg/types"
	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/models"
	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/service"
)

// ResourceLambdaStack define o schema do recurso.
func ResourceLambdaStack() *schema.Resource {
	s := declarationSchema()
	s["stack_name"] = &schema.Schema{Type: schema.TypeString, Required: true, ForceNew: true}
	s["log_retention_days"] = &schema.Schema{
		Type:             schema.TypeInt,
		Optional:         true,
		Default:          14,
		Description:      "Retention of the /aws/lambda log groups. 0 leaves them unmanaged.",
		ValidateDiagFunc: validation.ToDiagFunc(validation.IntAtLeast(0)),
	}
	s["tags"] = &schema.Schema{Type: schema.TypeMap, Optional: true, Elem: &schema.Schema{Type: schema.TypeString}}
	s["stack_id"] = &schema.Schema{Type: schema.TypeString, Computed: true}
	s["status"] = &schema.Schema{Type: schema.TypeString, Computed: true}
	s["template_url"] = &schema.Schema{Type: schema.TypeString, Computed: true}
	for _, name := range []string{"function_names", "function_arns", "outputs"} {
		s[name] = &schema.Schema{Type: schema.TypeMap, Computed: true, Elem: &schema.Schema{Type: schema.TypeString}}
	}
	s["internal"] = &schema.Schema{Type: schema.TypeString, Computed: true}

	return &schema.Resource{
		Description:   "Deploys the data lake framework lambda stack through CloudFormation.",
		CreateContext: resourceLambdaStackCreate,
		ReadContext:   resourceLambdaStackRead,
		UpdateContext: resourceLambdaStackUpdate,
		DeleteContext: resourceLambdaStackDelete,
		Importer: &schema.ResourceImporter{
			StateContext: schema.ImportStatePassthroughContext,
		},
		Timeouts: &schema.ResourceTimeout{
			Create: schema.DefaultTimeout(30 * time.Minute),
			Update: schema.DefaultTimeout(30 * time.Minute),
			Delete: schema.DefaultTimeout(30 * time.Minute),
		},
		Schema: s,
	}
}

// resourceLambdaStackCreate (Controller) - Mapeia e chama o Service
func resourceLambdaStackCreate(ctx context.Context, d *schema.ResourceData, m interface{}) diag.Diagnostics {
	return apply(ctx, d, m, d.Timeout(schema.TimeoutCreate))
}

// resourceLambdaStackUpdate (Controller)
func resourceLambdaStackUpdate(ctx context.Context, d *schema.ResourceData, m interface{}) diag.Diagnostics {
	return apply(ctx, d, m, d.Timeout(schema.TimeoutUpdate))
}

// resourceLambdaStackRead (Controller)
func resourceLambdaStackRead(ctx context.Context, d *schema.ResourceData, m interface{}) diag.Diagnostics {
	bundle, ok := m.(*models.ConfigurationBundle)
	if !ok || bundle.DeployService == nil {
		return diag.FromErr(fmt.Errorf("deployment service not configured"))
	}

	st, err := readState(d)
	if err != nil {
		return diag.FromErr(err)
	}

	outputs, missing, err := bundle.DeployService.CheckStackExistence(ctx, st)
	if err != nil {
		return diag.FromErr(fmt.Errorf("failed during existence check: %w", err))
	}
	if outputs == nil {
		tflog.Warn(ctx, "stack not found, removing from state", map[string]interface{}{"stack_name": st.StackName})
		d.SetId("")
		return nil
	}

	_ = d.Set("stack_name", st.StackName)
	_ = d.Set("function_names", toMap(st.FunctionNames))
	setOutputs(d, outputs)

	var diags diag.Diagnostics
	if len(missing) > 0 {
		diags = append(diags, diag.Diagnostic{
			Severity: diag.Warning,
			Summary:  "Lambda functions missing from stack",
			Detail:   fmt.Sprintf("Stack %s reports %s but these functions no longer exist: %s. Run CloudFormation drift detection.", st.StackName, outputs.Status, strings.Join(missing, ", ")),
		})
	}
	return diags
}

// resourceLambdaStackDelete (Controller) - Chama o Service para limpar
func resourceLambdaStackDelete(ctx context.Context, d *schema.ResourceData, m interface{}) diag.Diagnostics {
	bundle, ok := m.(*models.ConfigurationBundle)
	if !ok || bundle.DeployService == nil {
		return diag.FromErr(fmt.Errorf("deployment service not configured"))
	}

	st, err := readState(d)
	if err != nil {
		return diag.FromErr(err)
	}
	if err := bundle.DeployService.DeleteStack(ctx, st, d.Timeout(schema.TimeoutDelete)); err != nil {
		return diag.FromErr(fmt.Errorf("failed to delete stack: %w", err))
	}

	d.SetId("")
	return nil
}

func apply(ctx context.Context, d *schema.ResourceData, m interface{}, timeout time.Duration) diag.Diagnostics {
	// 1. Acesso ao ConfigurationBundle
	bundle, ok := m.(*models.ConfigurationBundle)
	if !ok || bundle.DeployService == nil {
		return diag.FromErr(fmt.Errorf("deployment service not configured"))
	}

	// 2. Mapeamento de Entrada (Schema -> DTOs)
	synth, err := synthRequest(d)
	if err != nil {
		return diag.FromErr(err)
	}
	previous, err := readState(d)
	if err != nil {
		return diag.FromErr(err)
	}
	req := service.DeployRequest{
		StackName:           d.Get("stack_name").(string),
		Synth:               synth,
		RetentionDays:       int32(d.Get("log_retention_days").(int)),
		Timeout:             timeout,
		Tags:                stringMap(d.Get("tags")),
		PreviousTemplateKey: previous.TemplateKey,
	}

	// 3. Executa a Lógica (Chama o Service)
	st, outputs, err := bundle.DeployService.EnsureStack(ctx, req)

	// 4. Persistência de Saída (DTO -> Internal State). Um estado parcial com
	// erro deixa o recurso tainted em vez de perder a stack criada.
	if st != nil {
		d.SetId(st.StackName)
		b, _ := json.Marshal(st)
		_ = d.Set("internal", string(b))
		_ = d.Set("template_url", st.TemplateURL)
		_ = d.Set("function_names", toMap(st.FunctionNames))
		_ = d.Set("stack_id", st.StackID)
	}
	if err != nil {
		return diag.FromErr(fmt.Errorf("deployment failed: %w", err))
	}
	setOutputs(d, outputs)
	return nil
}

// readState recupera o estado interno. Após um import só existe o ID.
func readState(d *schema.ResourceData) (*dto.StackState, error) {
	st := &dto.StackState{StackName: d.Id()}
	internal, _ := d.Get("internal").(string)
	if internal == "" {
		return st, nil
	}
	if err := json.Unmarshal([]byte(internal), st); err != nil {
		return nil, fmt.Errorf("failed reading internal state: %w", err)
	}
	return st, nil
}

func setOutputs(d *schema.ResourceData, outputs *dto.StackOutputs) {
	_ = d.Set("stack_id", outputs.StackID)
	_ = d.Set("status", outputs.Status)
	_ = d.Set("outputs", toMap(outputs.Outputs))
	_ = d.Set("function_arns", toMap(outputs.FunctionArn))
}
