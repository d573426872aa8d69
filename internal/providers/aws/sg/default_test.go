package sg

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"

	"github.com/cloudhardening/sgpatrol/internal/awserr"
	"github.com/cloudhardening/sgpatrol/internal/providers/aws/common"
)

// fakeEC2 satisfies ec2APIClient with canned describe pages and recorded
// mutation calls.
type fakeEC2 struct {
	pages       []*ec2svc.DescribeSecurityGroupsOutput
	describeErr error
	page        int

	authorized []*ec2svc.AuthorizeSecurityGroupIngressInput
	revoked    []*ec2svc.RevokeSecurityGroupIngressInput
}

func (f *fakeEC2) DescribeSecurityGroups(ctx context.Context, params *ec2svc.DescribeSecurityGroupsInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeSecurityGroupsOutput, error) {
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	out := f.pages[f.page]
	if f.page < len(f.pages)-1 {
		f.page++
	}
	return out, nil
}

func (f *fakeEC2) AuthorizeSecurityGroupIngress(ctx context.Context, params *ec2svc.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2svc.Options)) (*ec2svc.AuthorizeSecurityGroupIngressOutput, error) {
	f.authorized = append(f.authorized, params)
	return &ec2svc.AuthorizeSecurityGroupIngressOutput{}, nil
}

func (f *fakeEC2) RevokeSecurityGroupIngress(ctx context.Context, params *ec2svc.RevokeSecurityGroupIngressInput, optFns ...func(*ec2svc.Options)) (*ec2svc.RevokeSecurityGroupIngressOutput, error) {
	f.revoked = append(f.revoked, params)
	return &ec2svc.RevokeSecurityGroupIngressOutput{}, nil
}

func testProfile() *common.ProfileConfig {
	return &common.ProfileConfig{
		ProfileName: "test",
		AccountID:   "123456789012",
		Region:      "us-east-1",
	}
}

func collectorFor(fake *fakeEC2) *DefaultCollector {
	return NewDefaultCollectorWithFactory(func(cfg aws.Config) ec2APIClient { return fake })
}

func sdkGroup() ec2types.SecurityGroup {
	return ec2types.SecurityGroup{
		GroupId:     aws.String("sg-1"),
		GroupName:   aws.String("web"),
		Description: aws.String("web tier"),
		VpcId:       aws.String("vpc-1"),
		Tags: []ec2types.Tag{
			{Key: aws.String("env"), Value: aws.String("prod")},
		},
		IpPermissions: []ec2types.IpPermission{
			{
				IpProtocol: aws.String("tcp"),
				FromPort:   aws.Int32(22),
				ToPort:     aws.Int32(22),
				IpRanges: []ec2types.IpRange{
					{CidrIp: aws.String("0.0.0.0/0"), Description: aws.String("ssh")},
					{CidrIp: aws.String("10.0.0.0/8")},
				},
				Ipv6Ranges: []ec2types.Ipv6Range{
					{CidrIpv6: aws.String("::/0")},
				},
			},
			{
				IpProtocol: aws.String("-1"),
				IpRanges:   []ec2types.IpRange{{CidrIp: aws.String("172.16.0.0/12")}},
			},
		},
	}
}

// TestCollect_FlattensPermissions verifies one IngressRule per
// (permission, range) pair, IPv4 and IPv6 alike, with ports and tags
// carried over.
func TestCollect_FlattensPermissions(t *testing.T) {
	fake := &fakeEC2{pages: []*ec2svc.DescribeSecurityGroupsOutput{
		{SecurityGroups: []ec2types.SecurityGroup{sdkGroup()}},
	}}

	groups, err := collectorFor(fake).Collect(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("want 1 group, got %d", len(groups))
	}

	g := groups[0]
	if g.GroupID != "sg-1" || g.GroupName != "web" || g.VpcID != "vpc-1" {
		t.Errorf("group fields: %+v", g)
	}
	if g.Region != "us-east-1" {
		t.Errorf("region: got %q", g.Region)
	}
	if g.Tags["env"] != "prod" {
		t.Errorf("tags: %v", g.Tags)
	}
	if len(g.IngressRules) != 4 {
		t.Fatalf("want 4 flattened rules, got %d", len(g.IngressRules))
	}

	ssh := g.IngressRules[0]
	if ssh.Protocol != "tcp" || ssh.FromPort != 22 || ssh.ToPort != 22 || ssh.CIDR != "0.0.0.0/0" {
		t.Errorf("ssh rule: %+v", ssh)
	}
	if ssh.Description != "ssh" {
		t.Errorf("description: got %q", ssh.Description)
	}

	ipv6 := g.IngressRules[2]
	if ipv6.CIDR != "::/0" {
		t.Errorf("ipv6 rule: %+v", ipv6)
	}

	all := g.IngressRules[3]
	if all.Protocol != "-1" || all.FromPort != 0 || all.ToPort != 0 {
		t.Errorf("all-protocols rule: %+v", all)
	}
}

func TestCollect_FollowsPagination(t *testing.T) {
	fake := &fakeEC2{pages: []*ec2svc.DescribeSecurityGroupsOutput{
		{
			SecurityGroups: []ec2types.SecurityGroup{{GroupId: aws.String("sg-a")}},
			NextToken:      aws.String("page2"),
		},
		{
			SecurityGroups: []ec2types.SecurityGroup{{GroupId: aws.String("sg-b")}},
		},
	}}

	groups, err := collectorFor(fake).Collect(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("want 2 groups across pages, got %d", len(groups))
	}
	if groups[1].GroupID != "sg-b" {
		t.Errorf("second page group: %q", groups[1].GroupID)
	}
}

func TestCollectByID_NotFound(t *testing.T) {
	fake := &fakeEC2{describeErr: &smithy.GenericAPIError{Code: "InvalidGroup.NotFound", Message: "does not exist"}}

	_, err := collectorFor(fake).CollectByID(context.Background(), testProfile(), "sg-missing")
	if !awserr.IsKind(err, awserr.KindNotFound) {
		t.Errorf("got %v; want not-found kind", err)
	}
}

func TestCollectByID_EmptyResultIsNotFound(t *testing.T) {
	fake := &fakeEC2{pages: []*ec2svc.DescribeSecurityGroupsOutput{{}}}

	_, err := collectorFor(fake).CollectByID(context.Background(), testProfile(), "sg-missing")
	if !awserr.IsKind(err, awserr.KindNotFound) {
		t.Errorf("got %v; want not-found kind", err)
	}
}

func TestCollect_PermissionErrorClassified(t *testing.T) {
	fake := &fakeEC2{describeErr: &smithy.GenericAPIError{Code: "UnauthorizedOperation", Message: "denied"}}

	_, err := collectorFor(fake).Collect(context.Background(), testProfile())
	if !awserr.IsKind(err, awserr.KindPermission) {
		t.Errorf("got %v; want permission kind", err)
	}
}
