package sg

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
)

// ec2APIClient is the narrow EC2 interface used by this package: security
// group listing plus the two ingress mutation calls. It embeds the SDK's
// DescribeSecurityGroups paginator client interface so pagination works
// against fakes in tests.
type ec2APIClient interface {
	ec2svc.DescribeSecurityGroupsAPIClient

	AuthorizeSecurityGroupIngress(
		ctx context.Context,
		params *ec2svc.AuthorizeSecurityGroupIngressInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.AuthorizeSecurityGroupIngressOutput, error)

	RevokeSecurityGroupIngress(
		ctx context.Context,
		params *ec2svc.RevokeSecurityGroupIngressInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.RevokeSecurityGroupIngressOutput, error)
}

// clientFactory creates the EC2 client from an AWS config.
// Injection point: tests replace this with a function returning a fake.
type clientFactory func(cfg aws.Config) ec2APIClient

// newDefaultClient creates the production AWS SDK EC2 client.
func newDefaultClient(cfg aws.Config) ec2APIClient {
	return ec2svc.NewFromConfig(cfg)
}
