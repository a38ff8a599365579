package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/samber/lo"

	"github.com/raywall/terraform-provider-dlfmwrk/internal/catalog"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/lint"
	"github.com/raywall/terraform-provider-dlfmwrk/internal/stack"
	"github.com/raywall/terraform-provider-dlfmwrk/pkg/types"
	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/client"
	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/repository"
)

var ErrMissingParameters = errors.New("parameters without value")

// DeployRequest descreve um apply do recurso dlfmwrk_lambda_stack.
type DeployRequest struct {
	StackName     string
	Synth         stack.Request
	RetentionDays int32
	Timeout       time.Duration
	Tags          map[string]string
	// PreviousTemplateKey é removido do bucket depois de um deploy bem-sucedido.
	PreviousTemplateKey string
}

// StackDeploymentService Orquestrador de Deploy
type StackDeploymentService struct {
	TemplateService *TemplateService
	IAMService      *IAMService
	CWLogsService   *CWLogsService
	StackRepo       *repository.StackRepository
	LambdaRepo      *repository.LambdaRepository
	Client          *client.AWSClient
}

// EnsureStack orquestra a criação ou atualização da stack.
//
// Quando o CreateStack já aconteceu e a espera falha, o estado parcial é
// retornado junto com o erro para o recurso ficar registrado (tainted) e o
// próximo apply recriar a stack.
func (s *StackDeploymentService) EnsureStack(ctx context.Context, req DeployRequest) (*types.StackState, *types.StackOutputs, error) {
	accountID, err := s.Client.EnsureAccountID(ctx)
	if err != nil {
		return nil, nil, err
	}

	// 1. Resolve a role de execução (nome ou ARN), venha do recurso ou do arquivo de overrides
	params := lo.Assign(req.Synth.Parameters)
	if v := req.Synth.Supplied()[catalog.ParamLambdaRoleArn]; v != "" {
		arn, err := s.IAMService.ResolveRoleArn(ctx, v)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving execution role: %w", err)
		}
		params[catalog.ParamLambdaRoleArn] = arn
	}
	synth := req.Synth
	synth.Parameters = params
	synth.StackName = req.StackName

	// 2. Sintetiza e valida localmente
	res, err := s.TemplateService.Synthesize(synth)
	if err != nil {
		return nil, nil, err
	}
	if err := missingParameters(res); err != nil {
		return nil, nil, err
	}

	current, err := s.StackRepo.GetStack(ctx, req.StackName)
	if err != nil {
		return nil, nil, err
	}
	if current != nil && current.StackStatus == cftypes.StackStatusRollbackComplete {
		return nil, nil, fmt.Errorf("stack %s is %s and must be deleted before it can be created again", req.StackName, current.StackStatus)
	}

	// 3. Publica o template; a cópia nova é removida se a stack não chegar a usá-la
	ext := string(synth.Format)
	if ext == "" {
		ext = "yaml"
	}
	key, url, err := s.TemplateService.Publish(ctx, req.StackName, res, ext)
	if err != nil {
		return nil, nil, fmt.Errorf("publishing template: %w", err)
	}
	discard := func(err error) error {
		if derr := s.TemplateService.Discard(ctx, key); derr != nil {
			tflog.Warn(ctx, "could not remove published template", map[string]interface{}{"key": key, "error": derr.Error()})
		}
		return err
	}
	if err := s.StackRepo.ValidateTemplate(ctx, url); err != nil {
		return nil, nil, discard(err)
	}

	state := &types.StackState{
		StackName:     req.StackName,
		Region:        s.Client.Region,
		AccountID:     accountID,
		TemplateURL:   url,
		TemplateKey:   key,
		Parameters:    res.Parameters,
		FunctionNames: res.FunctionNames,
	}

	// 4. Cria ou atualiza a stack
	in := repository.StackInput{
		StackName:   req.StackName,
		TemplateURL: url,
		Parameters:  res.Parameters,
		Tags:        lo.Assign(map[string]string{"dlfmwrk:environment": res.Parameters[catalog.ParamEnvironment]}, req.Tags),
	}
	if current == nil {
		tflog.Info(ctx, "creating stack", map[string]interface{}{"stack_name": req.StackName, "template_url": url})
		stackID, err := s.StackRepo.CreateStack(ctx, in)
		if err != nil {
			return nil, nil, discard(err)
		}
		state.StackID = stackID
		if err := s.StackRepo.WaitCreate(ctx, req.StackName, req.Timeout); err != nil {
			return state, nil, s.withReason(ctx, req.StackName, err)
		}
	} else {
		tflog.Info(ctx, "updating stack", map[string]interface{}{"stack_name": req.StackName, "status": string(current.StackStatus)})
		changed, err := s.StackRepo.UpdateStack(ctx, in)
		if err != nil {
			return nil, nil, discard(err)
		}
		if !changed {
			tflog.Info(ctx, "stack already up to date", map[string]interface{}{"stack_name": req.StackName})
		} else if err := s.StackRepo.WaitUpdate(ctx, req.StackName, req.Timeout); err != nil {
			// o CloudFormation volta para o template anterior
			return nil, nil, discard(s.withReason(ctx, req.StackName, err))
		}
	}

	// 5. Lê o resultado
	outputs, err := s.describe(ctx, req.StackName, res)
	if err != nil {
		return state, nil, err
	}
	state.StackID = outputs.StackID

	// 6. Retenção dos log groups das funções
	if req.RetentionDays > 0 {
		for _, service := range sortedKeys(res.FunctionNames) {
			lg, err := s.CWLogsService.EnsureLogGroup(ctx, res.FunctionNames[service], req.RetentionDays)
			if err != nil {
				return state, nil, fmt.Errorf("log group setup failed: %w", err)
			}
			state.LogGroups = append(state.LogGroups, lg)
		}
	}

	if req.PreviousTemplateKey != "" && req.PreviousTemplateKey != key {
		if err := s.TemplateService.Discard(ctx, req.PreviousTemplateKey); err != nil {
			tflog.Warn(ctx, "could not remove previous template", map[string]interface{}{"key": req.PreviousTemplateKey, "error": err.Error()})
		}
	}

	return state, outputs, nil
}

// CheckStackExistence lê a stack e as funções registradas no estado. Retorna
// nil quando a stack não existe mais e a lista de funções ausentes. Preenche
// st.FunctionNames quando o estado veio de um import.
func (s *StackDeploymentService) CheckStackExistence(ctx context.Context, st *types.StackState) (*types.StackOutputs, []string, error) {
	current, err := s.StackRepo.GetStack(ctx, st.StackName)
	if err != nil {
		return nil, nil, err
	}
	if current == nil || current.StackStatus == cftypes.StackStatusDeleteComplete {
		return nil, nil, nil
	}

	// Após um import o estado ainda não conhece as funções.
	if len(st.FunctionNames) == 0 {
		physical, err := s.StackRepo.PhysicalIDs(ctx, st.StackName, lint.TypeFunction)
		if err != nil {
			return nil, nil, err
		}
		st.FunctionNames = map[string]string{}
		for _, f := range catalog.Default().Functions {
			if name, ok := physical[f.LogicalID]; ok {
				st.FunctionNames[f.Service] = name
			}
		}
	}

	outputs := stackOutputs(current)
	var missing []string
	for _, service := range sortedKeys(st.FunctionNames) {
		fn, err := s.LambdaRepo.GetFunction(ctx, st.FunctionNames[service])
		if err != nil {
			return nil, nil, err
		}
		if fn == nil {
			missing = append(missing, st.FunctionNames[service])
			continue
		}
		outputs.FunctionArn[service] = aws.ToString(fn.FunctionArn)
	}
	return outputs, missing, nil
}

// DeleteStack orquestra a exclusão completa dos recursos.
func (s *StackDeploymentService) DeleteStack(ctx context.Context, st *types.StackState, timeout time.Duration) error {
	var result *multierror.Error

	// 1. Deletar a stack (funções e layer)
	if err := s.StackRepo.DeleteStack(ctx, st.StackName); err != nil {
		result = multierror.Append(result, err)
	} else if err := s.StackRepo.WaitDelete(ctx, st.StackName, timeout); err != nil {
		result = multierror.Append(result, s.withReason(ctx, st.StackName, err))
	}

	// 2. Log groups não pertencem à stack
	if err := s.CWLogsService.DeleteLogGroups(ctx, st.LogGroups); err != nil {
		result = multierror.Append(result, err)
	}

	// 3. Template publicado
	if err := s.TemplateService.Discard(ctx, st.TemplateKey); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// --- Métodos Privados ---

func (s *StackDeploymentService) describe(ctx context.Context, stackName string, res *stack.Result) (*types.StackOutputs, error) {
	current, err := s.StackRepo.GetStack(ctx, stackName)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("stack %s disappeared after deployment", stackName)
	}
	outputs := stackOutputs(current)

	physical, err := s.StackRepo.PhysicalIDs(ctx, stackName, lint.TypeFunction)
	if err != nil {
		return nil, err
	}
	for _, f := range res.Config.Functions {
		name, ok := physical[f.LogicalID]
		if !ok {
			continue
		}
		fn, err := s.LambdaRepo.GetFunction(ctx, name)
		if err != nil {
			return nil, err
		}
		if fn != nil {
			outputs.FunctionArn[f.Service] = aws.ToString(fn.FunctionArn)
		}
	}
	return outputs, nil
}

// withReason anexa o StackStatusReason ao erro do waiter.
func (s *StackDeploymentService) withReason(ctx context.Context, stackName string, err error) error {
	current, derr := s.StackRepo.GetStack(ctx, stackName)
	if derr != nil || current == nil || current.StackStatusReason == nil {
		return err
	}
	return fmt.Errorf("%w (%s: %s)", err, current.StackStatus, aws.ToString(current.StackStatusReason))
}

func missingParameters(res *stack.Result) error {
	var result *multierror.Error
	for _, name := range res.Missing {
		result = multierror.Append(result, fmt.Errorf("%w: %s", ErrMissingParameters, name))
	}
	return result.ErrorOrNil()
}

func stackOutputs(st *cftypes.Stack) *types.StackOutputs {
	out := &types.StackOutputs{
		StackID:     aws.ToString(st.StackId),
		Status:      string(st.StackStatus),
		Outputs:     map[string]string{},
		FunctionArn: map[string]string{},
	}
	for _, o := range st.Outputs {
		out.Outputs[aws.ToString(o.OutputKey)] = aws.ToString(o.OutputValue)
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
