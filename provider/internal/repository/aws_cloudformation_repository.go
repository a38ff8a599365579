package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cfn "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/google/uuid"

	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/client"
)

// StackInput descreve uma criação ou atualização de stack.
type StackInput struct {
	StackName   string
	TemplateURL string
	Parameters  map[string]string
	Tags        map[string]string
}

// StackRepository encapsula operações do CloudFormation. Rollout e rollback
// ficam a cargo do próprio CloudFormation.
type StackRepository struct {
	Client *client.AWSClient
}

// ValidateTemplate pede ao CloudFormation que valide o template publicado.
func (r *StackRepository) ValidateTemplate(ctx context.Context, templateURL string) error {
	_, err := r.Client.CloudFormation.ValidateTemplate(ctx, &cfn.ValidateTemplateInput{
		TemplateURL: aws.String(templateURL),
	})
	if err != nil {
		return fmt.Errorf("ValidateTemplate failed: %w", err)
	}
	return nil
}

// GetStack busca a stack. Retorna nil, nil se ela não existir.
func (r *StackRepository) GetStack(ctx context.Context, stackName string) (*cftypes.Stack, error) {
	out, err := r.Client.CloudFormation.DescribeStacks(ctx, &cfn.DescribeStacksInput{StackName: aws.String(stackName)})
	if err != nil {
		if isAPIErrorMessage(err, "ValidationError", "does not exist") {
			return nil, nil
		}
		return nil, fmt.Errorf("DescribeStacks failed: %w", err)
	}
	if len(out.Stacks) == 0 {
		return nil, nil
	}
	return &out.Stacks[0], nil
}

// CreateStack cria a stack e retorna o StackId.
func (r *StackRepository) CreateStack(ctx context.Context, in StackInput) (string, error) {
	out, err := r.Client.CloudFormation.CreateStack(ctx, &cfn.CreateStackInput{
		StackName:          aws.String(in.StackName),
		TemplateURL:        aws.String(in.TemplateURL),
		Parameters:         parameters(in.Parameters),
		Tags:               tags(in.Tags),
		ClientRequestToken: aws.String(uuid.NewString()),
	})
	if err != nil {
		return "", fmt.Errorf("CreateStack failed: %w", err)
	}
	return aws.ToString(out.StackId), nil
}

// UpdateStack atualiza a stack. Retorna false quando não havia nada a mudar.
func (r *StackRepository) UpdateStack(ctx context.Context, in StackInput) (bool, error) {
	_, err := r.Client.CloudFormation.UpdateStack(ctx, &cfn.UpdateStackInput{
		StackName:          aws.String(in.StackName),
		TemplateURL:        aws.String(in.TemplateURL),
		Parameters:         parameters(in.Parameters),
		Tags:               tags(in.Tags),
		ClientRequestToken: aws.String(uuid.NewString()),
	})
	if err != nil {
		if isAPIErrorMessage(err, "ValidationError", "No updates are to be performed") {
			return false, nil
		}
		return false, fmt.Errorf("UpdateStack failed: %w", err)
	}
	return true, nil
}

// DeleteStack pede a exclusão da stack.
func (r *StackRepository) DeleteStack(ctx context.Context, stackName string) error {
	_, err := r.Client.CloudFormation.DeleteStack(ctx, &cfn.DeleteStackInput{
		StackName:          aws.String(stackName),
		ClientRequestToken: aws.String(uuid.NewString()),
	})
	if err != nil {
		return fmt.Errorf("DeleteStack failed: %w", err)
	}
	return nil
}

// WaitCreate aguarda CREATE_COMPLETE.
func (r *StackRepository) WaitCreate(ctx context.Context, stackName string, maxWait time.Duration) error {
	w := cfn.NewStackCreateCompleteWaiter(r.Client.CloudFormation)
	if err := w.Wait(ctx, &cfn.DescribeStacksInput{StackName: aws.String(stackName)}, maxWait); err != nil {
		return fmt.Errorf("waiting for stack %s creation: %w", stackName, err)
	}
	return nil
}

// WaitUpdate aguarda UPDATE_COMPLETE.
func (r *StackRepository) WaitUpdate(ctx context.Context, stackName string, maxWait time.Duration) error {
	w := cfn.NewStackUpdateCompleteWaiter(r.Client.CloudFormation)
	if err := w.Wait(ctx, &cfn.DescribeStacksInput{StackName: aws.String(stackName)}, maxWait); err != nil {
		return fmt.Errorf("waiting for stack %s update: %w", stackName, err)
	}
	return nil
}

// WaitDelete aguarda DELETE_COMPLETE.
func (r *StackRepository) WaitDelete(ctx context.Context, stackName string, maxWait time.Duration) error {
	w := cfn.NewStackDeleteCompleteWaiter(r.Client.CloudFormation)
	if err := w.Wait(ctx, &cfn.DescribeStacksInput{StackName: aws.String(stackName)}, maxWait); err != nil {
		return fmt.Errorf("waiting for stack %s deletion: %w", stackName, err)
	}
	return nil
}

// PhysicalIDs mapeia logical id -> physical id dos recursos do tipo informado.
func (r *StackRepository) PhysicalIDs(ctx context.Context, stackName, resourceType string) (map[string]string, error) {
	out, err := r.Client.CloudFormation.DescribeStackResources(ctx, &cfn.DescribeStackResourcesInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return nil, fmt.Errorf("DescribeStackResources failed: %w", err)
	}
	ids := map[string]string{}
	for _, res := range out.StackResources {
		if aws.ToString(res.ResourceType) == resourceType {
			ids[aws.ToString(res.LogicalResourceId)] = aws.ToString(res.PhysicalResourceId)
		}
	}
	return ids, nil
}

// --- Métodos Privados ---

func parameters(values map[string]string) []cftypes.Parameter {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]cftypes.Parameter, 0, len(keys))
	for _, k := range keys {
		out = append(out, cftypes.Parameter{
			ParameterKey:   aws.String(k),
			ParameterValue: aws.String(values[k]),
		})
	}
	return out
}

func tags(values map[string]string) []cftypes.Tag {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]cftypes.Tag, 0, len(keys))
	for _, k := range keys {
		out = append(out, cftypes.Tag{Key: aws.String(k), Value: aws.String(values[k])})
	}
	return out
}
