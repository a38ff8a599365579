package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/repository"
)

// IAMService resolve a role de execução passada em LambdaRoleArn.
type IAMService struct {
	IAMRepo *repository.IAMRepository
}

// ResolveRoleArn aceita um ARN (devolvido como está) ou o nome da role.
func (s *IAMService) ResolveRoleArn(ctx context.Context, value string) (string, error) {
	if value == "" || strings.HasPrefix(value, "arn:") {
		return value, nil
	}
	role, err := s.IAMRepo.GetRole(ctx, value)
	if err != nil {
		return "", err
	}
	if role == nil {
		return "", fmt.Errorf("execution role %q not found", value)
	}
	return aws.ToString(role.Arn), nil
}
