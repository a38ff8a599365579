package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	cfn "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	iam "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	lambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	s3 "github.com/aws/aws-sdk-go-v2/service/s3"
	sts "github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"

	"github.com/raywall/terraform-provider-dlfmwrk/provider/internal/client"
)

type fakeCFN struct {
	stacks      map[string]*cftypes.Stack
	resources   []cftypes.StackResource
	noChanges   bool
	failStatus  cftypes.StackStatus
	validateErr error
	updateErr   error

	validated  []string
	lastParams []cftypes.Parameter
	calls      []string
}

func (f *fakeCFN) CreateStack(_ context.Context, in *cfn.CreateStackInput, _ ...func(*cfn.Options)) (*cfn.CreateStackOutput, error) {
	name := aws.ToString(in.StackName)
	f.calls = append(f.calls, "create")
	f.lastParams = in.Parameters
	status := cftypes.StackStatusCreateComplete
	if f.failStatus != "" {
		status = f.failStatus
	}
	f.stacks[name] = &cftypes.Stack{
		StackId:           aws.String("arn:aws:cloudformation:us-east-1:123456789012:stack/" + name + "/1"),
		StackName:         aws.String(name),
		StackStatus:       status,
		StackStatusReason: aws.String("Resource creation cancelled"),
		Outputs: []cftypes.Output{
			{OutputKey: aws.String("DeploymentStatus"), OutputValue: aws.String("deployed")},
		},
	}
	return &cfn.CreateStackOutput{StackId: f.stacks[name].StackId}, nil
}

func (f *fakeCFN) UpdateStack(_ context.Context, in *cfn.UpdateStackInput, _ ...func(*cfn.Options)) (*cfn.UpdateStackOutput, error) {
	f.calls = append(f.calls, "update")
	f.lastParams = in.Parameters
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.noChanges {
		return nil, &smithy.GenericAPIError{Code: "ValidationError", Message: "No updates are to be performed."}
	}
	st := f.stacks[aws.ToString(in.StackName)]
	st.StackStatus = cftypes.StackStatusUpdateComplete
	return &cfn.UpdateStackOutput{StackId: st.StackId}, nil
}

func (f *fakeCFN) DeleteStack(_ context.Context, in *cfn.DeleteStackInput, _ ...func(*cfn.Options)) (*cfn.DeleteStackOutput, error) {
	f.calls = append(f.calls, "delete")
	if st, ok := f.stacks[aws.ToString(in.StackName)]; ok {
		st.StackStatus = cftypes.StackStatusDeleteComplete
	}
	return &cfn.DeleteStackOutput{}, nil
}

func (f *fakeCFN) DescribeStacks(_ context.Context, in *cfn.DescribeStacksInput, _ ...func(*cfn.Options)) (*cfn.DescribeStacksOutput, error) {
	name := aws.ToString(in.StackName)
	st, ok := f.stacks[name]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "ValidationError", Message: fmt.Sprintf("Stack with id %s does not exist", name)}
	}
	return &cfn.DescribeStacksOutput{Stacks: []cftypes.Stack{*st}}, nil
}

func (f *fakeCFN) DescribeStackResources(_ context.Context, _ *cfn.DescribeStackResourcesInput, _ ...func(*cfn.Options)) (*cfn.DescribeStackResourcesOutput, error) {
	return &cfn.DescribeStackResourcesOutput{StackResources: f.resources}, nil
}

func (f *fakeCFN) ValidateTemplate(_ context.Context, in *cfn.ValidateTemplateInput, _ ...func(*cfn.Options)) (*cfn.ValidateTemplateOutput, error) {
	f.validated = append(f.validated, aws.ToString(in.TemplateURL))
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	return &cfn.ValidateTemplateOutput{}, nil
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = bytes.Clone(body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

type fakeIAM struct {
	roles map[string]string
}

func (f *fakeIAM) GetRole(_ context.Context, in *iam.GetRoleInput, _ ...func(*iam.Options)) (*iam.GetRoleOutput, error) {
	arn, ok := f.roles[aws.ToString(in.RoleName)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchEntity", Message: "role not found"}
	}
	return &iam.GetRoleOutput{Role: &iamtypes.Role{RoleName: in.RoleName, Arn: aws.String(arn)}}, nil
}

type fakeLambda struct {
	functions map[string]string
}

func (f *fakeLambda) GetFunction(_ context.Context, in *lambda.GetFunctionInput, _ ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error) {
	arn, ok := f.functions[aws.ToString(in.FunctionName)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "function not found"}
	}
	return &lambda.GetFunctionOutput{Configuration: &lambdatypes.FunctionConfiguration{
		FunctionName: in.FunctionName,
		FunctionArn:  aws.String(arn),
	}}, nil
}

type fakeCWLogs struct {
	groups map[string]int32
}

func (f *fakeCWLogs) CreateLogGroup(_ context.Context, in *cw.CreateLogGroupInput, _ ...func(*cw.Options)) (*cw.CreateLogGroupOutput, error) {
	name := aws.ToString(in.LogGroupName)
	if _, ok := f.groups[name]; ok {
		return nil, &smithy.GenericAPIError{Code: "ResourceAlreadyExistsException", Message: "exists"}
	}
	f.groups[name] = 0
	return &cw.CreateLogGroupOutput{}, nil
}

func (f *fakeCWLogs) PutRetentionPolicy(_ context.Context, in *cw.PutRetentionPolicyInput, _ ...func(*cw.Options)) (*cw.PutRetentionPolicyOutput, error) {
	f.groups[aws.ToString(in.LogGroupName)] = aws.ToInt32(in.RetentionInDays)
	return &cw.PutRetentionPolicyOutput{}, nil
}

func (f *fakeCWLogs) DeleteLogGroup(_ context.Context, in *cw.DeleteLogGroupInput, _ ...func(*cw.Options)) (*cw.DeleteLogGroupOutput, error) {
	name := aws.ToString(in.LogGroupName)
	if _, ok := f.groups[name]; !ok {
		return nil, &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "missing"}
	}
	delete(f.groups, name)
	return &cw.DeleteLogGroupOutput{}, nil
}

type fakeSTS struct {
	calls int
}

func (f *fakeSTS) GetCallerIdentity(_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	f.calls++
	return &sts.GetCallerIdentityOutput{Account: aws.String("210987654321")}, nil
}

type fakes struct {
	cfn    *fakeCFN
	s3     *fakeS3
	iam    *fakeIAM
	lambda *fakeLambda
	cw     *fakeCWLogs
	sts    *fakeSTS
	client *client.AWSClient
}

func newFakes() *fakes {
	f := &fakes{
		cfn:    &fakeCFN{stacks: map[string]*cftypes.Stack{}},
		s3:     &fakeS3{objects: map[string][]byte{}},
		iam:    &fakeIAM{roles: map[string]string{}},
		lambda: &fakeLambda{functions: map[string]string{}},
		cw:     &fakeCWLogs{groups: map[string]int32{}},
		sts:    &fakeSTS{},
	}
	f.client = &client.AWSClient{
		CloudFormation: f.cfn,
		S3:             f.s3,
		IAM:            f.iam,
		Lambda:         f.lambda,
		CWLogs:         f.cw,
		STS:            f.sts,
		Region:         "us-east-1",
		AccountID:      "123456789012",
		TemplateBucket: "dl-templates",
		TemplatePrefix: "dlfmwrk/templates",
	}
	return f
}
