package stack

import (
	"encoding/json"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/terraform-provider-dlfmwrk/internal/catalog"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/config"
	tpl "github.com/raywall/terraform-provider-dlfmwrk/internal/template"
)

func TestSynthesizeDefaults(t *testing.T) {
	res, err := Synthesize(Request{})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		catalog.ServiceDataAsset:     "aws-dl-fmwrk-data-asset-api-dev",
		catalog.ServiceDataCatalog:   "aws-dl-fmwrk-data-catalog-api-dev",
		catalog.ServiceDataAssetInfo: "aws-dl-fmwrk-data-asset-info-api-dev",
		catalog.ServiceSourceSystem:  "aws-dl-fmwrk-source-system-api-dev",
		catalog.ServiceTargetSystem:  "aws-dl-fmwrk-target-system-api-dev",
	}, res.FunctionNames)
	for service, name := range res.FunctionNames {
		assert.Equal(t, name+".zip", res.CodeKeys[service])
	}
	assert.Equal(t, catalog.LayerName("dev"), res.LayerName)
	assert.Equal(t, "dev", res.Parameters[catalog.ParamEnvironment])
	assert.Len(t, res.Document.LogicalIDs(), 6)
}

func TestSynthesizeEnvironment(t *testing.T) {
	res, err := Synthesize(Request{
		Environment: "prod",
		Overrides:   &config.Overrides{Parameters: map[string]string{catalog.ParamEnvironment: "qa"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "prod", res.Parameters[catalog.ParamEnvironment])
	assert.Equal(t, "aws-dl-fmwrk-target-system-api-prod", res.FunctionNames[catalog.ServiceTargetSystem])
	assert.Equal(t, "aws-dl-fmwrk-psycopg2-layer-prod", res.LayerName)
}

func TestSynthesizeJSON(t *testing.T) {
	res, err := Synthesize(Request{
		Format:     tpl.FormatJSON,
		Parameters: map[string]string{catalog.ParamCodeBucket: "artifacts"},
		Overrides: &config.Overrides{Functions: map[string]config.FunctionOverride{
			catalog.ServiceDataAsset: {MemorySize: lo.ToPtr(1024)},
		}},
	})
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body, &body))
	assert.Equal(t, "2010-09-09", body["AWSTemplateFormatVersion"])
	assert.Equal(t, "artifacts", res.Parameters[catalog.ParamCodeBucket])

	fn, ok := res.Config.Function(catalog.ServiceDataAsset)
	require.True(t, ok)
	assert.Equal(t, 1024, fn.MemorySize)
}

func TestSynthesizeRejects(t *testing.T) {
	_, err := Synthesize(Request{Parameters: map[string]string{"Unknown": "x"}})
	assert.ErrorIs(t, err, catalog.ErrUnknownParameter)

	_, err = Synthesize(Request{Format: tpl.Format("xml")})
	assert.ErrorIs(t, err, tpl.ErrUnknownFormat)

	_, err = Synthesize(Request{Environment: "Prod_1"})
	assert.ErrorIs(t, err, ErrLint)
}

func TestSynthesizeMissing(t *testing.T) {
	res, err := Synthesize(Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		catalog.ParamLambdaRoleArn,
		catalog.ParamMetadataDbSecret,
		catalog.ParamRedshiftSecret,
		catalog.ParamSecurityGroupID,
		catalog.ParamSubnetIDA,
		catalog.ParamSubnetIDB,
		catalog.ParamEfsAccessPointArn,
	}, res.Missing)
	// placeholders still render and resolve
	assert.Equal(t, "sg-0a1b2c3d4e5f60718", res.Parameters[catalog.ParamSecurityGroupID])

	res, err = Synthesize(Request{
		Parameters: map[string]string{
			catalog.ParamLambdaRoleArn:     "arn:aws:iam::123456789012:role/x",
			catalog.ParamMetadataDbSecret:  "metadata",
			catalog.ParamRedshiftSecret:    "",
			catalog.ParamSecurityGroupID:   "sg-1",
			catalog.ParamSubnetIDA:         "subnet-a",
			catalog.ParamEfsAccessPointArn: "fsap",
		},
		Overrides: &config.Overrides{Parameters: map[string]string{catalog.ParamSubnetIDB: "subnet-b"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{catalog.ParamRedshiftSecret}, res.Missing)
}

func TestRequestSupplied(t *testing.T) {
	req := Request{
		Environment: "qa",
		Parameters:  map[string]string{catalog.ParamCodeBucket: "from-request"},
		Overrides: &config.Overrides{Parameters: map[string]string{
			catalog.ParamCodeBucket:    "from-file",
			catalog.ParamLambdaRoleArn: "my-role",
			catalog.ParamEnvironment:   "prod",
		}},
	}
	assert.Equal(t, map[string]string{
		catalog.ParamCodeBucket:    "from-request",
		catalog.ParamLambdaRoleArn: "my-role",
		catalog.ParamEnvironment:   "qa",
	}, req.Supplied())
	assert.Equal(t, "from-file", req.Overrides.Parameters[catalog.ParamCodeBucket])
}
