package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	iam "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/client"
)

// IAMRepository encapsula operações IAM de baixo nível. A role de execução
// é gerenciada fora da stack; aqui ela só é consultada.
type IAMRepository struct {
	Client *client.AWSClient
}

// GetRole busca uma Role IAM. Retorna nil, nil se não for encontrada.
func (r *IAMRepository) GetRole(ctx context.Context, roleName string) (*iamtypes.Role, error) {
	out, err := r.Client.IAM.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(roleName)})
	if err != nil {
		if isAPIErrorCode(err, "NoSuchEntity") {
			return nil, nil
		}
		return nil, fmt.Errorf("GetRole failed: %w", err)
	}
	return out.Role, nil
}
