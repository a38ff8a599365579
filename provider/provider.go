package dlfmwrk

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-sdk/v2/diag"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/schema"

	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/client"
	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/models"
	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/repository"
	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/resource"
	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/service"
)

// Provider retorna o schema, resources e data sources.
func Provider() *schema.Provider {
	return &schema.Provider{
		Schema: map[string]*schema.Schema{
			"region": {
				Type:        schema.TypeString,
				Optional:    true,
				DefaultFunc: schema.EnvDefaultFunc("AWS_REGION", "us-east-1"),
				Description: "AWS region to use for resources",
			},
			"template_bucket": {
				Type:        schema.TypeString,
				Optional:    true,
				DefaultFunc: schema.EnvDefaultFunc("DLFMWRK_TEMPLATE_BUCKET", ""),
				Description: "S3 bucket where rendered templates are published for CloudFormation.",
			},
			"template_prefix": {
				Type:        schema.TypeString,
				Optional:    true,
				Default:     "dlfmwrk/templates",
				Description: "Key prefix of published templates.",
			},
		},
		ResourcesMap: map[string]*schema.Resource{
			"dlfmwrk_lambda_stack": resource.ResourceLambdaStack(),
		},
		DataSourcesMap: map[string]*schema.Resource{
			"dlfmwrk_lambda_template": resource.DataSourceLambdaTemplate(),
		},
		ConfigureContextFunc: providerConfigure,
	}
}

func providerConfigure(ctx context.Context, d *schema.ResourceData) (interface{}, diag.Diagnostics) {
	var diags diag.Diagnostics
	region := d.Get("region").(string)

	// 1. Inicializa o AWS Client (Base)
	awsClient, err := client.New(ctx, region)
	if err != nil {
		diags = append(diags, diag.FromErr(fmt.Errorf("failed to create aws client: %w", err))...)
		return nil, diags
	}
	awsClient.TemplateBucket = d.Get("template_bucket").(string)
	awsClient.TemplatePrefix = d.Get("template_prefix").(string)

	if awsClient.TemplateBucket == "" {
		diags = append(diags, diag.Diagnostic{
			Severity: diag.Warning,
			Summary:  "template_bucket not set",
			Detail:   "dlfmwrk_lambda_template works without it, dlfmwrk_lambda_stack needs it to publish templates.",
		})
	}

	return NewBundle(awsClient), diags
}

// NewBundle monta repositórios e services sobre um AWSClient.
func NewBundle(awsClient *client.AWSClient) *models.ConfigurationBundle {
	// 1. Repositórios (Camada de Acesso a Dados)
	stackRepo := &repository.StackRepository{Client: awsClient}
	templateRepo := &repository.TemplateRepository{Client: awsClient}
	iamRepo := &repository.IAMRepository{Client: awsClient}
	lambdaRepo := &repository.LambdaRepository{Client: awsClient}
	cwLogsRepo := &repository.CWLogsRepository{Client: awsClient}

	// 2. Services Especializados (Camada de Lógica de Negócio)
	templateService := &service.TemplateService{TemplateRepo: templateRepo, Client: awsClient}
	iamService := &service.IAMService{IAMRepo: iamRepo}
	cwLogsService := &service.CWLogsService{CWLogsRepo: cwLogsRepo}

	// 3. Service Orquestrador (Facade)
	deployService := &service.StackDeploymentService{
		TemplateService: templateService,
		IAMService:      iamService,
		CWLogsService:   cwLogsService,
		StackRepo:       stackRepo,
		LambdaRepo:      lambdaRepo,
		Client:          awsClient,
	}

	return &models.ConfigurationBundle{
		DeployService:   deployService,
		TemplateService: templateService,
		Client:          awsClient,
	}
}
