package service

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/repository"
)

// CWLogsService manipula a lógica de negócio para CloudWatch Logs.
type CWLogsService struct {
	CWLogsRepo *repository.CWLogsRepository
}

// LogGroupName é o log group que a Lambda usa por padrão.
func LogGroupName(functionName string) string {
	return fmt.Sprintf("/aws/lambda/%s", functionName)
}

// EnsureLogGroup garante que o Log Group da Lambda exista e define a retenção.
func (s *CWLogsService) EnsureLogGroup(ctx context.Context, functionName string, retentionDays int32) (string, error) {
	logGroupName := LogGroupName(functionName)

	err := s.CWLogsRepo.CreateLogGroupIfNotExists(ctx, logGroupName, retentionDays)
	if err != nil {
		return "", err
	}
	return logGroupName, nil
}

// DeleteLogGroups remove os log groups e acumula as falhas.
func (s *CWLogsService) DeleteLogGroups(ctx context.Context, names []string) error {
	var result *multierror.Error
	for _, name := range names {
		if err := s.CWLogsRepo.DeleteLogGroup(ctx, name); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
