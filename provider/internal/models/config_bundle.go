package models

import (
	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/client"
	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/service"
)

// ConfigurationBundle contém os Services e o Cliente AWS para serem injetados nos Resources.
type ConfigurationBundle struct {
	DeployService   *service.StackDeploymentService
	TemplateService *service.TemplateService
	Client          *client.AWSClient
}
