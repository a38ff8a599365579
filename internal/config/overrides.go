package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
)

var ErrUnknownKeys = errors.New("unknown keys in overrides")

// FunctionOverride ajusta uma função, indexada pelo slug do serviço. Campos
// nil mantêm o valor da declaração.
type FunctionOverride struct {
	Timeout    *int              `toml:"timeout" validate:"omitempty,min=1,max=900"`
	MemorySize *int              `toml:"memory_size" validate:"omitempty,min=128,max=10240"`
	Variables  map[string]string `toml:"variables" validate:"omitempty,dive,keys,required,endkeys"`
}

// Overrides é o conteúdo de um arquivo TOML da stack:
//
//	description = "..."
//
//	[parameters]
//	Environment = "qa"
//
//	[functions.target-system]
//	timeout = 600
//
//	[functions.target-system.variables]
//	log_level = "DEBUG"
type Overrides struct {
	Description string                      `toml:"description"`
	Parameters  map[string]string           `toml:"parameters" validate:"omitempty,dive,keys,required,endkeys"`
	Functions   map[string]FunctionOverride `toml:"functions" validate:"omitempty,dive,keys,required,endkeys"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadOverrides lê um arquivo TOML de overrides. Caminho vazio retorna overrides vazios.
func LoadOverrides(path string) (*Overrides, error) {
	if path == "" {
		return &Overrides{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides %s: %w", path, err)
	}
	o, err := ParseOverrides(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

// ParseOverrides decodifica e valida overrides em TOML.
func ParseOverrides(data string) (*Overrides, error) {
	var o Overrides
	md, err := toml.Decode(data, &o)
	if err != nil {
		return nil, fmt.Errorf("decoding overrides: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := lo.Map(undecoded, func(k toml.Key, _ int) string { return k.String() })
		return nil, fmt.Errorf("%w: %s", ErrUnknownKeys, strings.Join(keys, ", "))
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &o, nil
}

// Validate verifica os overrides, incluindo os limites de cada função.
func (o *Overrides) Validate() error {
	var result *multierror.Error
	if err := validate.Struct(o); err != nil {
		result = multierror.Append(result, err)
	}
	for _, service := range lo.Keys(o.Functions) {
		if err := validate.Struct(o.Functions[service]); err != nil {
			result = multierror.Append(result, fmt.Errorf("functions.%s: %w", service, err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("validating overrides: %w", err)
	}
	return nil
}

// WithParameters retorna uma cópia de o com os parâmetros de extra.
// Entradas de extra têm precedência.
func (o *Overrides) WithParameters(extra map[string]string) *Overrides {
	out := &Overrides{Description: o.Description, Functions: o.Functions}
	out.Parameters = lo.Assign(o.Parameters, extra)
	return out
}
