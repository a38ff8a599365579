package types

// CodeLocation aponta para um arquivo zip no S3.
type CodeLocation struct {
	S3Bucket string `validate:"required"`
	S3Key    string `validate:"required"`
}

// VPCConfig conecta a função a subnets privadas.
type VPCConfig struct {
	SecurityGroupIDs []string `validate:"required,min=1,dive,required"`
	SubnetIDs        []string `validate:"required,min=1,dive,required"`
}

// FileSystemMount monta um access point EFS na função.
type FileSystemMount struct {
	Arn            string `validate:"required"`
	LocalMountPath string `validate:"required,startswith=/mnt/"`
}

// FunctionConfig declara uma AWS::Lambda::Function.
//
// Valores string podem conter intrinsics criados pelo pacote template (Ref,
// Sub). Layers guarda os logical ids das layers declaradas na mesma stack.
type FunctionConfig struct {
	LogicalID    string            `validate:"required,alphanum"`
	Service      string            `validate:"required"`
	FunctionName string            `validate:"required"`
	Architecture string            `validate:"required,oneof=x86_64 arm64"`
	Code         CodeLocation
	Handler      string            `validate:"required"`
	Role         string            `validate:"required"`
	Runtime      string            `validate:"required"`
	Environment  map[string]string `validate:"omitempty,dive,keys,required,endkeys,required"`
	Layers       []string          `validate:"omitempty,dive,required"`
	Timeout      int               `validate:"omitempty,min=1,max=900"`
	MemorySize   int               `validate:"omitempty,min=128,max=10240"`
	VPC          *VPCConfig        `validate:"omitempty"`
	FileSystem   *FileSystemMount  `validate:"omitempty"`
}

// LayerConfig declara uma AWS::Lambda::LayerVersion compartilhada pelas funções.
type LayerConfig struct {
	LogicalID               string       `validate:"required,alphanum"`
	LayerName               string       `validate:"required"`
	Description             string
	CompatibleRuntimes      []string     `validate:"required,min=1,dive,required"`
	CompatibleArchitectures []string     `validate:"required,min=1,dive,oneof=x86_64 arm64"`
	Content                 CodeLocation
}
