package lint

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/terraform-provider-dlfmwrk/internal/catalog"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/document"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/resolve"
	tpl "github.com/raywall/terraform-provider-dlfmwrk/internal/template"
)

func parse(t *testing.T, data string) *document.Document {
	t.Helper()
	doc, err := document.Parse([]byte(data))
	require.NoError(t, err)
	return doc
}

func fixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../document/testdata/lambda-stack.yaml")
	require.NoError(t, err)
	return string(data)
}

func TestFixtureIsClean(t *testing.T) {
	r := Check(parse(t, fixture(t)), Options{})
	assert.True(t, r.OK(), r.Err())
	assert.NoError(t, r.Err())
}

func TestRenderedCatalogIsClean(t *testing.T) {
	for _, env := range []string{"dev", "prod"} {
		body, err := tpl.Render(catalog.Default(), tpl.FormatYAML)
		require.NoError(t, err)

		opts := Options{Resolve: resolve.Options{Overrides: map[string]string{catalog.ParamEnvironment: env}}}
		r := Check(parse(t, string(body)), opts)
		assert.True(t, r.OK(), "%s: %v", env, r.Err())
	}
}

func TestFormatVersion(t *testing.T) {
	src := strings.Replace(fixture(t), `AWSTemplateFormatVersion: "2010-09-09"`, `AWSTemplateFormatVersion: "2009-01-01"`, 1)
	r := Check(parse(t, src), Options{})
	assert.Equal(t, []string{RuleFormatVersion}, r.Rules())
}

func TestRequiredFields(t *testing.T) {
	r := Check(parse(t, `
AWSTemplateFormatVersion: "2010-09-09"
Parameters:
  Environment:
    Default: dev
Resources:
  Layer:
    Type: AWS::Lambda::LayerVersion
    Properties:
      LayerName: layer
      CompatibleRuntimes: []
      Content:
        S3Bucket: bucket
  Orphan:
    Properties: {}
Outputs:
  Status:
    Export:
      Name: x
`), Options{SkipNaming: true})

	assert.Equal(t, []string{RuleRequiredFields}, r.Rules())
	paths := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{
		"Parameters.Environment",
		"Resources.Layer.Properties.CompatibleRuntimes",
		"Resources.Layer.Properties.CompatibleArchitectures",
		"Resources.Layer.Properties.Content.S3Key",
		"Resources.Orphan",
		"Outputs.Status",
	}, paths)
}

func TestMissingFunctionField(t *testing.T) {
	src := strings.Replace(fixture(t), "      Role: !Ref LambdaRoleArn\n      Runtime: python3.9\n      Timeout: 60\n",
		"      Runtime: python3.9\n      Timeout: 60\n", 1)
	r := Check(parse(t, src), Options{})

	require.Len(t, r.Findings, 1)
	assert.Equal(t, Finding{
		Rule:    RuleRequiredFields,
		Path:    "Resources.SourceSystemApiFunction.Properties.Role",
		Message: "required by AWS::Lambda::Function",
	}, r.Findings[0])
}

func TestReferences(t *testing.T) {
	src := strings.NewReplacer(
		"db_secret: !Ref MetadataDbSecret\n          db_region: !Ref AWS::Region\n          region:",
		"db_secret: !Ref MetadataSecret\n          db_region: !Ref AWS::Region\n          region:",
		"S3Key: !Sub aws-dl-fmwrk-target-system-api-${Environment}.zip",
		"S3Key: !Sub aws-dl-fmwrk-target-system-api-${Stage}.zip",
	).Replace(fixture(t))
	r := Check(parse(t, src), Options{SkipNaming: true})

	assert.Equal(t, []string{RuleReferences}, r.Rules())
	require.Len(t, r.Findings, 2)
	assert.Contains(t, r.Err().Error(), `Ref to undeclared "MetadataSecret"`)
	assert.Contains(t, r.Err().Error(), "${Stage} is not declared")
}

func TestLayerReferences(t *testing.T) {
	r := Check(parse(t, `
AWSTemplateFormatVersion: "2010-09-09"
Parameters:
  Environment: {Type: String, Default: dev}
Resources:
  Other:
    Type: AWS::Lambda::Function
    Properties:
      FunctionName: !Sub aws-dl-fmwrk-other-api-${Environment}
      Code: {S3Bucket: b, S3Key: !Sub "aws-dl-fmwrk-other-api-${Environment}.zip"}
      Handler: h
      Role: r
      Runtime: python3.9
  Fn:
    Type: AWS::Lambda::Function
    Properties:
      FunctionName: !Sub aws-dl-fmwrk-fn-api-${Environment}
      Code: {S3Bucket: b, S3Key: !Sub "aws-dl-fmwrk-fn-api-${Environment}.zip"}
      Handler: h
      Role: r
      Runtime: python3.9
      Layers:
        - !Ref Other
        - arn:aws:lambda:us-east-1:123456789012:layer:shared:3
        - shared
Outputs:
  Status: {Value: ok}
`), Options{})

	assert.Equal(t, []string{RuleReferences}, r.Rules())
	require.Len(t, r.Findings, 2)
	assert.Equal(t, "Resources.Fn.Properties.Layers.0", r.Findings[0].Path)
	assert.Equal(t, "Resources.Fn.Properties.Layers.2", r.Findings[1].Path)
}

func TestNaming(t *testing.T) {
	t.Run("wrong convention", func(t *testing.T) {
		src := strings.Replace(fixture(t),
			"FunctionName: !Sub aws-dl-fmwrk-source-system-api-${Environment}",
			"FunctionName: !Sub source-system-${Environment}", 1)
		r := Check(parse(t, src), Options{})

		assert.Equal(t, []string{RuleNaming}, r.Rules())
		// the name and its code key both mismatch
		assert.Len(t, r.Findings, 2)
	})

	t.Run("duplicate names", func(t *testing.T) {
		src := strings.Replace(fixture(t),
			"FunctionName: !Sub aws-dl-fmwrk-target-system-api-${Environment}",
			"FunctionName: !Sub aws-dl-fmwrk-source-system-api-${Environment}", 1)
		r := Check(parse(t, src), Options{})

		require.NotEmpty(t, r.Findings)
		assert.Contains(t, r.Err().Error(), "is also used by SourceSystemApiFunction")
	})

	t.Run("environment from overrides", func(t *testing.T) {
		opts := Options{Resolve: resolve.Options{Overrides: map[string]string{"Environment": "qa"}}}
		r := Check(parse(t, fixture(t)), opts)
		assert.True(t, r.OK(), r.Err())
	})

	t.Run("environment format", func(t *testing.T) {
		opts := Options{Resolve: resolve.Options{Overrides: map[string]string{"Environment": "Prod_1"}}}
		r := Check(parse(t, fixture(t)), opts)
		require.Len(t, r.Findings, 1)
		assert.Equal(t, "Parameters.Environment", r.Findings[0].Path)
	})

	t.Run("skip", func(t *testing.T) {
		src := strings.Replace(fixture(t), "source-system-api-${Environment}.zip", "other.zip", 1)
		assert.False(t, Check(parse(t, src), Options{}).OK())
		assert.True(t, Check(parse(t, src), Options{SkipNaming: true}).OK())
	})
}

func TestOutputsRequired(t *testing.T) {
	src := fixture(t)
	src = src[:strings.Index(src, "Outputs:")]
	r := Check(parse(t, src), Options{})
	assert.Equal(t, []string{RuleOutputs}, r.Rules())
}
