// Package template transforma a declaração da stack em um template CloudFormation.
package template

import (
	"errors"
	"fmt"
	"strings"

	"github.com/awslabs/goformation/v7/cloudformation"
	"github.com/awslabs/goformation/v7/cloudformation/lambda"
	"github.com/samber/lo"

	"github.com/raywall/terraform-provider-dlfmwrk/pkg/types"
)

// FormatVersion é a única versão de formato aceita pelo CloudFormation.
const FormatVersion = "2010-09-09"

// Pseudo parâmetros disponíveis em todo template.
const (
	PseudoRegion    = "AWS::Region"
	PseudoAccountID = "AWS::AccountId"
	PseudoStackName = "AWS::StackName"
	PseudoPartition = "AWS::Partition"
	PseudoURLSuffix = "AWS::URLSuffix"
)

// Format define a serialização do template renderizado.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	ErrUnknownFormat   = errors.New("unknown template format")
	ErrUndeclaredLayer = errors.New("function references an undeclared layer")
)

// ParseFormat converte a entrada do usuário ("json", "YAML", "yml") em Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml", "":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Ref retorna o intrinsic { "Ref": name }.
func Ref(name string) string {
	return cloudformation.Ref(name)
}

// Sub retorna o intrinsic { "Fn::Sub": s }.
func Sub(s string) string {
	return cloudformation.Sub(s)
}

// Build mapeia a declaração para um template goformation.
func Build(cfg *types.StackConfig) (*cloudformation.Template, error) {
	t := cloudformation.NewTemplate()
	t.AWSTemplateFormatVersion = FormatVersion
	t.Description = cfg.Description

	for _, p := range cfg.Parameters {
		param := cloudformation.Parameter{Type: p.Type}
		if p.Default != "" {
			param.Default = p.Default
		}
		t.Parameters[p.Name] = param
	}

	layers := make(map[string]bool, len(cfg.Layers))
	for _, l := range cfg.Layers {
		t.Resources[l.LogicalID] = buildLayer(l)
		layers[l.LogicalID] = true
	}

	for _, f := range cfg.Functions {
		for _, id := range f.Layers {
			if !layers[id] {
				return nil, fmt.Errorf("%w: %s -> %s", ErrUndeclaredLayer, f.LogicalID, id)
			}
		}
		t.Resources[f.LogicalID] = buildFunction(f)
	}

	for _, o := range cfg.Outputs {
		t.Outputs[o.Name] = cloudformation.Output{Value: o.Value}
	}
	return t, nil
}

// Render monta e serializa o template.
func Render(cfg *types.StackConfig, format Format) ([]byte, error) {
	t, err := Build(cfg)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return t.JSON()
	case FormatYAML:
		return t.YAML()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func buildLayer(l types.LayerConfig) *lambda.LayerVersion {
	layer := &lambda.LayerVersion{
		LayerName:               lo.ToPtr(l.LayerName),
		CompatibleRuntimes:      l.CompatibleRuntimes,
		CompatibleArchitectures: l.CompatibleArchitectures,
		Content: &lambda.LayerVersion_Content{
			S3Bucket: l.Content.S3Bucket,
			S3Key:    l.Content.S3Key,
		},
	}
	if l.Description != "" {
		layer.Description = lo.ToPtr(l.Description)
	}
	return layer
}

func buildFunction(f types.FunctionConfig) *lambda.Function {
	fn := &lambda.Function{
		FunctionName:  lo.ToPtr(f.FunctionName),
		Architectures: []string{f.Architecture},
		Code: &lambda.Function_Code{
			S3Bucket: lo.ToPtr(f.Code.S3Bucket),
			S3Key:    lo.ToPtr(f.Code.S3Key),
		},
		Handler: lo.ToPtr(f.Handler),
		Role:    f.Role,
		Runtime: lo.ToPtr(f.Runtime),
		Layers:  lo.Map(f.Layers, func(id string, _ int) string { return Ref(id) }),
	}
	if len(f.Environment) > 0 {
		fn.Environment = &lambda.Function_Environment{Variables: f.Environment}
	}
	if f.Timeout > 0 {
		fn.Timeout = lo.ToPtr(f.Timeout)
	}
	if f.MemorySize > 0 {
		fn.MemorySize = lo.ToPtr(f.MemorySize)
	}
	if f.VPC != nil {
		fn.VpcConfig = &lambda.Function_VpcConfig{
			SecurityGroupIds: f.VPC.SecurityGroupIDs,
			SubnetIds:        f.VPC.SubnetIDs,
		}
	}
	if f.FileSystem != nil {
		fn.FileSystemConfigs = []lambda.Function_FileSystemConfig{{
			Arn:            f.FileSystem.Arn,
			LocalMountPath: f.FileSystem.LocalMountPath,
		}}
	}
	return fn
}
