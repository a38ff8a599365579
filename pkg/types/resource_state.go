package types

// StackState é o estado interno salvo pelo recurso 'dlfmwrk_lambda_stack'
// entre execuções do Terraform.
type StackState struct {
	StackName     string            `json:"stack_name"`
	StackID       string            `json:"stack_id"`
	Region        string            `json:"region"`
	AccountID     string            `json:"account_id"`
	TemplateURL   string            `json:"template_url,omitempty"`
	TemplateKey   string            `json:"template_key,omitempty"`
	Parameters    map[string]string `json:"parameters"`
	FunctionNames map[string]string `json:"function_names"`
	LogGroups     []string          `json:"log_groups,omitempty"`
}

// StackOutputs é o que o serviço de deploy retorna quando a stack chega a
// um estado final.
type StackOutputs struct {
	StackID     string
	Status      string
	Outputs     map[string]string
	FunctionArn map[string]string
}
