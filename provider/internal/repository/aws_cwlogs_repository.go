package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/smithy-go"

	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/client"
)

// CWLogsRepository encapsula operações da AWS CloudWatch Logs.
type CWLogsRepository struct {
	Client *client.AWSClient
}

// CreateLogGroupIfNotExists cria um Log Group e define a retenção.
func (r *CWLogsRepository) CreateLogGroupIfNotExists(ctx context.Context, name string, retentionDays int32) error {
	_, err := r.Client.CWLogs.CreateLogGroup(ctx, &cw.CreateLogGroupInput{
		LogGroupName: aws.String(name),
	})
	if err != nil && !isAPIErrorCode(err, "ResourceAlreadyExistsException") {
		return fmt.Errorf("CreateLogGroup: %w", err)
	}

	_, err = r.Client.CWLogs.PutRetentionPolicy(ctx, &cw.PutRetentionPolicyInput{
		LogGroupName:    aws.String(name),
		RetentionInDays: aws.Int32(retentionDays),
	})
	if err != nil {
		return fmt.Errorf("PutRetentionPolicy: %w", err)
	}
	return nil
}

// DeleteLogGroup deleta o Log Group.
func (r *CWLogsRepository) DeleteLogGroup(ctx context.Context, logGroupName string) error {
	_, err := r.Client.CWLogs.DeleteLogGroup(ctx, &cw.DeleteLogGroupInput{
		LogGroupName: aws.String(logGroupName),
	})
	if err != nil && !isAPIErrorCode(err, "ResourceNotFoundException") {
		return fmt.Errorf("DeleteLogGroup failed: %w", err)
	}
	return nil
}

// --- Métodos Privados ---

// isAPIErrorCode verifica o código de erro smithy APIError
func isAPIErrorCode(err error, code string) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == code
	}
	return false
}

// isAPIErrorMessage verifica código e trecho da mensagem. O CloudFormation
// usa ValidationError para vários casos distintos.
func isAPIErrorMessage(err error, code, fragment string) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == code && strings.Contains(apiErr.ErrorMessage(), fragment)
	}
	return false
}
