package service

import (
	"context"

	"github.com/raywall/terraform-provider-dlfmwrk/internal/stack"
	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/client"
	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/repository"
)

// TemplateService sintetiza e publica o template da stack.
type TemplateService struct {
	TemplateRepo *repository.TemplateRepository
	Client       *client.AWSClient
}

// Synthesize completa a requisição com região e conta do provider.
func (s *TemplateService) Synthesize(req stack.Request) (*stack.Result, error) {
	if s.Client != nil {
		if req.Region == "" {
			req.Region = s.Client.Region
		}
		if req.AccountID == "" {
			req.AccountID = s.Client.AccountID
		}
	}
	return stack.Synthesize(req)
}

// Publish grava o corpo no bucket e retorna chave e URL.
func (s *TemplateService) Publish(ctx context.Context, stackName string, res *stack.Result, ext string) (string, string, error) {
	key, err := s.TemplateRepo.PutTemplate(ctx, stackName, ext, res.Body)
	if err != nil {
		return "", "", err
	}
	return key, s.Client.TemplateURL(key), nil
}

// Discard remove um template publicado anteriormente.
func (s *TemplateService) Discard(ctx context.Context, key string) error {
	return s.TemplateRepo.DeleteTemplate(ctx, key)
}
