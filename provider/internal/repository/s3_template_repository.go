package repository

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/client"
)

// TemplateRepository publica templates no bucket configurado no provider.
// O CloudFormation lê o corpo por TemplateURL, o que evita o limite de
// 51.200 bytes de TemplateBody.
type TemplateRepository struct {
	Client *client.AWSClient
}

// PutTemplate grava body em <prefix>/<stack>/<uuid>.<ext> e retorna a chave.
func (r *TemplateRepository) PutTemplate(ctx context.Context, stackName, ext string, body []byte) (string, error) {
	if r.Client.TemplateBucket == "" {
		return "", fmt.Errorf("template bucket not configured")
	}
	key := r.Client.TemplateKey(stackName, uuid.NewString()+"."+ext)

	contentType := "application/x-yaml"
	if ext == "json" {
		contentType = "application/json"
	}
	_, err := r.Client.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.Client.TemplateBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put failed: %w", err)
	}
	return key, nil
}

// DeleteTemplate remove um template publicado. Chave vazia é ignorada.
func (r *TemplateRepository) DeleteTemplate(ctx context.Context, key string) error {
	if key == "" || r.Client.TemplateBucket == "" {
		return nil
	}
	_, err := r.Client.S3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.Client.TemplateBucket),
		Key:    aws.String(key),
	})
	if err != nil && !isAPIErrorCode(err, "NoSuchKey") {
		return fmt.Errorf("s3 delete failed: %w", err)
	}
	return nil
}
