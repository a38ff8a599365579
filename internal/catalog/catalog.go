// Package catalog declara as funções de API do framework de data lake, a layer
// de conexão com banco compartilhada e os parâmetros do template.
package catalog

import (
	"fmt"

	tpl "github.com/raywall/terraform-provider-dlfmwrk/internal/template"
	"github.com/raywall/terraform-provider-dlfmwrk/pkg/types"
)

// Prefix é comum a todos os nomes físicos da stack.
const Prefix = "aws-dl-fmwrk"

const (
	Description = "Data lake framework API lambda functions"

	Handler      = "lambda_function.lambda_handler"
	Runtime      = "python3.9"
	Architecture = "x86_64"

	LayerLogicalID = "DbConnectorLayer"
	LayerCodeKey   = Prefix + "-psycopg2-layer.zip"

	OutputName  = "DeploymentStatus"
	OutputValue = "Data lake framework API lambda functions deployed"

	EfsMountPath = "/mnt/dl-fmwrk"
)

// Nomes dos parâmetros.
const (
	ParamEnvironment       = "Environment"
	ParamCodeBucket        = "CodeBucket"
	ParamLambdaRoleArn     = "LambdaRoleArn"
	ParamMetadataDbSecret  = "MetadataDbSecret"
	ParamRedshiftSecret    = "RedshiftSecret"
	ParamSecurityGroupID   = "SecurityGroupId"
	ParamSubnetIDA         = "SubnetIdA"
	ParamSubnetIDB         = "SubnetIdB"
	ParamEfsAccessPointArn = "EfsAccessPointArn"
)

// Slugs dos serviços, na ordem de declaração.
const (
	ServiceDataAsset     = "data-asset"
	ServiceDataCatalog   = "data-catalog"
	ServiceDataAssetInfo = "data-asset-info"
	ServiceSourceSystem  = "source-system"
	ServiceTargetSystem  = "target-system"
)

// Services lista os serviços de API que recebem uma função.
func Services() []string {
	return []string{
		ServiceDataAsset,
		ServiceDataCatalog,
		ServiceDataAssetInfo,
		ServiceSourceSystem,
		ServiceTargetSystem,
	}
}

// FunctionName retorna o nome físico da função do serviço no ambiente env.
func FunctionName(service, env string) string {
	return fmt.Sprintf("%s-%s-api-%s", Prefix, service, env)
}

// CodeKey retorna a chave S3 do pacote de deploy do serviço.
func CodeKey(service, env string) string {
	return FunctionName(service, env) + ".zip"
}

// LayerName retorna o nome físico da layer no ambiente env.
func LayerName(env string) string {
	return fmt.Sprintf("%s-psycopg2-layer-%s", Prefix, env)
}

type function struct {
	logicalID  string
	service    string
	timeout    int
	redshift   bool
	noRegion   bool
	vpc        bool
	fileSystem bool
}

var functions = []function{
	{logicalID: "DataAssetApiFunction", service: ServiceDataAsset, timeout: 60},
	{logicalID: "DataCatalogApiFunction", service: ServiceDataCatalog, timeout: 300, vpc: true, fileSystem: true},
	{logicalID: "DataAssetInfoApiFunction", service: ServiceDataAssetInfo, timeout: 60, noRegion: true},
	{logicalID: "SourceSystemApiFunction", service: ServiceSourceSystem, timeout: 300, redshift: true, vpc: true},
	{logicalID: "TargetSystemApiFunction", service: ServiceTargetSystem, timeout: 300, redshift: true, vpc: true},
}

// Default retorna uma cópia nova da declaração da stack.
func Default() *types.StackConfig {
	cfg := &types.StackConfig{
		Description: Description,
		Parameters: []types.ParameterConfig{
			{Name: ParamEnvironment, Type: "String", Default: "dev"},
			{Name: ParamCodeBucket, Type: "String", Default: Prefix + "-code-repository"},
			{Name: ParamLambdaRoleArn, Type: "String", Default: "arn:aws:iam::000000000000:role/" + Prefix + "-lambda-role", Required: true},
			{Name: ParamMetadataDbSecret, Type: "String", Default: Prefix + "-metadata-db-secret", Required: true},
			{Name: ParamRedshiftSecret, Type: "String", Default: Prefix + "-redshift-secret", Required: true},
			{Name: ParamSecurityGroupID, Type: "AWS::EC2::SecurityGroup::Id", Default: "sg-0a1b2c3d4e5f60718", Required: true},
			{Name: ParamSubnetIDA, Type: "AWS::EC2::Subnet::Id", Default: "subnet-0a1b2c3d4e5f60718", Required: true},
			{Name: ParamSubnetIDB, Type: "AWS::EC2::Subnet::Id", Default: "subnet-08f7e6d5c4b3a2910", Required: true},
			{Name: ParamEfsAccessPointArn, Type: "String", Default: "arn:aws:elasticfilesystem:us-east-1:000000000000:access-point/fsap-0a1b2c3d4e5f60718", Required: true},
		},
		Layers: []types.LayerConfig{{
			LogicalID:               LayerLogicalID,
			LayerName:               tpl.Sub(LayerName("${" + ParamEnvironment + "}")),
			Description:             "psycopg2 native libraries for metadata and redshift connectivity",
			CompatibleRuntimes:      []string{Runtime},
			CompatibleArchitectures: []string{Architecture},
			Content: types.CodeLocation{
				S3Bucket: tpl.Ref(ParamCodeBucket),
				S3Key:    LayerCodeKey,
			},
		}},
		Outputs: []types.OutputConfig{{Name: OutputName, Value: OutputValue}},
	}
	for _, f := range functions {
		cfg.Functions = append(cfg.Functions, f.config())
	}
	return cfg
}

func (f function) config() types.FunctionConfig {
	env := "${" + ParamEnvironment + "}"
	region := tpl.Ref(tpl.PseudoRegion)

	vars := map[string]string{
		"db_secret": tpl.Ref(ParamMetadataDbSecret),
		"db_region": region,
	}
	if !f.noRegion {
		vars["region"] = region
	}
	if f.redshift {
		vars["rs_secret"] = tpl.Ref(ParamRedshiftSecret)
		vars["rs_region"] = region
	}

	fc := types.FunctionConfig{
		LogicalID:    f.logicalID,
		Service:      f.service,
		FunctionName: tpl.Sub(FunctionName(f.service, env)),
		Architecture: Architecture,
		Code: types.CodeLocation{
			S3Bucket: tpl.Ref(ParamCodeBucket),
			S3Key:    tpl.Sub(CodeKey(f.service, env)),
		},
		Handler:     Handler,
		Role:        tpl.Ref(ParamLambdaRoleArn),
		Runtime:     Runtime,
		Environment: vars,
		Layers:      []string{LayerLogicalID},
		Timeout:     f.timeout,
	}
	if f.vpc {
		fc.VPC = &types.VPCConfig{
			SecurityGroupIDs: []string{tpl.Ref(ParamSecurityGroupID)},
			SubnetIDs:        []string{tpl.Ref(ParamSubnetIDA), tpl.Ref(ParamSubnetIDB)},
		}
	}
	if f.fileSystem {
		fc.FileSystem = &types.FileSystemMount{
			Arn:            tpl.Ref(ParamEfsAccessPointArn),
			LocalMountPath: EfsMountPath,
		}
	}
	return fc
}
