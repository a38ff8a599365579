package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/client"
)

// LambdaRepository lê as funções criadas pela stack.
type LambdaRepository struct {
	Client *client.AWSClient
}

// GetFunction busca uma função Lambda. Retorna nil se não for encontrada.
func (r *LambdaRepository) GetFunction(ctx context.Context, functionName string) (*types.FunctionConfiguration, error) {
	out, err := r.Client.Lambda.GetFunction(ctx, &lambda.GetFunctionInput{FunctionName: aws.String(functionName)})
	if err != nil {
		if isAPIErrorCode(err, "ResourceNotFoundException") {
			return nil, nil
		}
		return nil, fmt.Errorf("GetFunction failed: %w", err)
	}
	return out.Configuration, nil
}
