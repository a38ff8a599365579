package main

import (
	"os"
	"testing"

	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/resource"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/schema"
	"github.com/stretchr/testify/require"

	dlfmwrk "github.com/raywall/terraform-provider-dlfmwrk/provider"
)

func readTestConfigFile(t *testing.T, filename string) string {
	content, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("Erro ao ler o arquivo de configuração: %v", err)
	}
	return string(content)
}

func TestProviderSchema(t *testing.T) {
	require.NoError(t, dlfmwrk.Provider().InternalValidate())
}

// Roda apenas com TF_ACC=1 e credenciais AWS válidas.
func TestTemplateDataSourceIntegration(t *testing.T) {
	tfConfig := readTestConfigFile(t, `testdata/main.tf`)

	resource.Test(t, resource.TestCase{
		ProviderFactories: map[string]func() (*schema.Provider, error){
			"dlfmwrk": func() (*schema.Provider, error) { return dlfmwrk.Provider(), nil },
		},
		Steps: []resource.TestStep{
			{
				Config: tfConfig,
				Check: resource.ComposeTestCheckFunc(
					resource.TestCheckResourceAttr("data.dlfmwrk_lambda_template.qa", "layer_name", "aws-dl-fmwrk-psycopg2-layer-qa"),
					resource.TestCheckResourceAttr("data.dlfmwrk_lambda_template.qa", "function_names.target-system", "aws-dl-fmwrk-target-system-api-qa"),
					resource.TestCheckResourceAttr("data.dlfmwrk_lambda_template.qa", "code_keys.data-asset", "aws-dl-fmwrk-data-asset-api-qa.zip"),
				),
			},
		},
	})
}
