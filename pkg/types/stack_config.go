package types

// ParameterConfig é uma entrada do template substituída no deploy.
type ParameterConfig struct {
	Name    string `validate:"required,alphanum"`
	Type    string `validate:"required"`
	Default string

	// Required marca valores da conta (role, rede, segredos). O Default serve
	// só para renderizar e resolver nomes; o deploy exige um valor explícito.
	Required bool
}

// OutputConfig é um output do template. Value é um literal ou um intrinsic.
type OutputConfig struct {
	Name  string `validate:"required,alphanum"`
	Value string `validate:"required"`
}

// StackConfig é a declaração completa da stack de lambdas. Os slices mantêm
// a ordem de declaração entre renderizações.
type StackConfig struct {
	Description string
	Parameters  []ParameterConfig `validate:"dive"`
	Layers      []LayerConfig     `validate:"dive"`
	Functions   []FunctionConfig  `validate:"required,min=1,dive"`
	Outputs     []OutputConfig    `validate:"dive"`
}

// Parameter retorna o parâmetro declarado com name, se existir.
func (c *StackConfig) Parameter(name string) (*ParameterConfig, bool) {
	for i := range c.Parameters {
		if c.Parameters[i].Name == name {
			return &c.Parameters[i], true
		}
	}
	return nil, false
}

// Function retorna a função declarada para service, se existir.
func (c *StackConfig) Function(service string) (*FunctionConfig, bool) {
	for i := range c.Functions {
		if c.Functions[i].Service == service {
			return &c.Functions[i], true
		}
	}
	return nil, false
}
