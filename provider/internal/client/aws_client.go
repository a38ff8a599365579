package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	cfn "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	iam "github.com/aws/aws-sdk-go-v2/service/iam"
	lambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	s3 "github.com/aws/aws-sdk-go-v2/service/s3"
	sts "github.com/aws/aws-sdk-go-v2/service/sts"
)

// AWSClient contém clientes e informações de configuração AWS.
type AWSClient struct {
	Config         aws.Config
	CloudFormation CloudFormationAPI
	S3             S3API // Bucket de templates
	IAM            IAMAPI
	Lambda         LambdaAPI
	CWLogs         CWLogsAPI
	STS            STSAPI
	Region         string
	AccountID      string
	TemplateBucket string
	TemplatePrefix string
}

// New cria um novo AWSClient para a região fornecida.
func New(ctx context.Context, region string) (*AWSClient, error) {
	var cfg aws.Config
	var err error
	if strings.TrimSpace(region) == "" {
		cfg, err = config.LoadDefaultConfig(ctx)
	} else {
		cfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(region))
	}
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := &AWSClient{
		Config:         cfg,
		CloudFormation: cfn.NewFromConfig(cfg),
		S3:             s3.NewFromConfig(cfg),
		IAM:            iam.NewFromConfig(cfg),
		Lambda:         lambda.NewFromConfig(cfg),
		CWLogs:         cw.NewFromConfig(cfg),
		STS:            sts.NewFromConfig(cfg),
		Region:         cfg.Region,
	}
	return client, nil
}

// EnsureAccountID carrega o AccountID via STS na primeira chamada. O data
// source não precisa dele, então o configure não chama a AWS.
func (c *AWSClient) EnsureAccountID(ctx context.Context) (string, error) {
	if c.AccountID != "" {
		return c.AccountID, nil
	}
	if c.STS == nil {
		return "", fmt.Errorf("getting account ID: sts client not configured")
	}
	accountID, err := getAccountID(ctx, c.STS)
	if err != nil {
		return "", err
	}
	c.AccountID = accountID
	return accountID, nil
}

// TemplateKey monta a chave S3 de um template publicado.
func (c *AWSClient) TemplateKey(stackName, name string) string {
	prefix := strings.Trim(c.TemplatePrefix, "/")
	if prefix == "" {
		return stackName + "/" + name
	}
	return prefix + "/" + stackName + "/" + name
}

// TemplateURL é a URL virtual-hosted que o CloudFormation aceita em TemplateURL.
func (c *AWSClient) TemplateURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.TemplateBucket, c.Region, key)
}

func getAccountID(ctx context.Context, stsClient STSAPI) (string, error) {
	result, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("getting account ID: %w", err)
	}
	return aws.ToString(result.Account), nil
}
