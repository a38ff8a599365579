package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"github.com/raywall/terraform-provider-dlfmwrk/internal/config"
	"github.com/raywall/terraform-provider-dlfmwrk/pkg/types"
)

var (
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrUnknownService   = errors.New("unknown service")
	ErrDuplicateID      = errors.New("duplicate logical id")
	ErrMissingLayer     = errors.New("layer is not declared")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Apply retorna uma cópia de cfg com os overrides aplicados. Parâmetros
// substituem os defaults; overrides de função são indexados pelo serviço.
func Apply(cfg *types.StackConfig, o *config.Overrides) (*types.StackConfig, error) {
	out := clone(cfg)
	if o == nil {
		return out, nil
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if o.Description != "" {
		out.Description = o.Description
	}

	for _, name := range sortedKeys(o.Parameters) {
		p, ok := out.Parameter(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParameter, name)
		}
		p.Default = o.Parameters[name]
	}

	for _, service := range sortedKeys(o.Functions) {
		f, ok := out.Function(service)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownService, service)
		}
		fo := o.Functions[service]
		if fo.Timeout != nil {
			f.Timeout = *fo.Timeout
		}
		if fo.MemorySize != nil {
			f.MemorySize = *fo.MemorySize
		}
		f.Environment = lo.Assign(f.Environment, fo.Variables)
	}
	return out, nil
}

// Validate verifica as restrições de cada campo e as regras entre registros
// (logical ids únicos e layers declaradas).
func Validate(cfg *types.StackConfig) error {
	var result *multierror.Error
	if err := validate.Struct(cfg); err != nil {
		result = multierror.Append(result, err)
	}

	seen := map[string]bool{}
	check := func(id string) {
		if seen[id] {
			result = multierror.Append(result, fmt.Errorf("%w: %s", ErrDuplicateID, id))
		}
		seen[id] = true
	}
	for _, p := range cfg.Parameters {
		check(p.Name)
	}
	layers := map[string]bool{}
	for _, l := range cfg.Layers {
		check(l.LogicalID)
		layers[l.LogicalID] = true
	}
	for _, f := range cfg.Functions {
		check(f.LogicalID)
		for _, id := range f.Layers {
			if !layers[id] {
				result = multierror.Append(result, fmt.Errorf("%w: %s in %s", ErrMissingLayer, id, f.LogicalID))
			}
		}
	}
	return result.ErrorOrNil()
}

func clone(cfg *types.StackConfig) *types.StackConfig {
	out := &types.StackConfig{
		Description: cfg.Description,
		Parameters:  append([]types.ParameterConfig(nil), cfg.Parameters...),
		Outputs:     append([]types.OutputConfig(nil), cfg.Outputs...),
	}
	for _, l := range cfg.Layers {
		l.CompatibleRuntimes = append([]string(nil), l.CompatibleRuntimes...)
		l.CompatibleArchitectures = append([]string(nil), l.CompatibleArchitectures...)
		out.Layers = append(out.Layers, l)
	}
	for _, f := range cfg.Functions {
		f.Environment = lo.Assign(f.Environment)
		f.Layers = append([]string(nil), f.Layers...)
		if f.VPC != nil {
			vpc := *f.VPC
			f.VPC = &vpc
		}
		if f.FileSystem != nil {
			fs := *f.FileSystem
			f.FileSystem = &fs
		}
		out.Functions = append(out.Functions, f)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
