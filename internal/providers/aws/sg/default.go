package sg

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/cloudhardening/sgpatrol/internal/awserr"
	"github.com/cloudhardening/sgpatrol/internal/models"
	"github.com/cloudhardening/sgpatrol/internal/providers/aws/common"
)

// DefaultCollector is the production Collector backed by the AWS SDK.
type DefaultCollector struct {
	factory clientFactory
}

// NewDefaultCollector returns a collector wired to real SDK clients.
func NewDefaultCollector() *DefaultCollector {
	return &DefaultCollector{factory: newDefaultClient}
}

// NewDefaultCollectorWithFactory returns a collector that uses f to build
// its EC2 client. Pass a fake factory in tests.
func NewDefaultCollectorWithFactory(f clientFactory) *DefaultCollector {
	return &DefaultCollector{factory: f}
}

// Collect lists all security groups in the profile's region, following
// pagination, and flattens each group's permissions into per-CIDR rules.
func (c *DefaultCollector) Collect(ctx context.Context, profile *common.ProfileConfig) ([]models.SecurityGroup, error) {
	client := c.factory(profile.Config)

	var groups []models.SecurityGroup
	paginator := ec2svc.NewDescribeSecurityGroupsPaginator(client, &ec2svc.DescribeSecurityGroupsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, awserr.Wrap(
				fmt.Sprintf("describe security groups in %s", profile.Region), err)
		}
		for _, group := range page.SecurityGroups {
			groups = append(groups, flattenGroup(group, profile.Region))
		}
	}
	return groups, nil
}

// CollectByID fetches one security group by ID. An empty result from the
// API (possible when filters swallow the ID) is normalised to the same
// not-found error the API raises for unknown IDs.
func (c *DefaultCollector) CollectByID(ctx context.Context, profile *common.ProfileConfig, groupID string) (*models.SecurityGroup, error) {
	client := c.factory(profile.Config)

	out, err := client.DescribeSecurityGroups(ctx, &ec2svc.DescribeSecurityGroupsInput{
		GroupIds: []string{groupID},
	})
	if err != nil {
		return nil, awserr.Wrap(fmt.Sprintf("describe security group %s", groupID), err)
	}
	if len(out.SecurityGroups) == 0 {
		return nil, awserr.WrapKind(awserr.KindNotFound, "",
			fmt.Errorf("security group %s not found in %s", groupID, profile.Region))
	}

	group := flattenGroup(out.SecurityGroups[0], profile.Region)
	return &group, nil
}

// flattenGroup converts an SDK security group into the internal model,
// producing one IngressRule per (permission, source range) pair. IPv4 and
// IPv6 ranges are flattened identically.
func flattenGroup(group ec2types.SecurityGroup, region string) models.SecurityGroup {
	out := models.SecurityGroup{
		GroupID:     aws.ToString(group.GroupId),
		GroupName:   aws.ToString(group.GroupName),
		Description: aws.ToString(group.Description),
		VpcID:       aws.ToString(group.VpcId),
		Region:      region,
	}

	if len(group.Tags) > 0 {
		out.Tags = make(map[string]string, len(group.Tags))
		for _, tag := range group.Tags {
			out.Tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
		}
	}

	for _, perm := range group.IpPermissions {
		protocol := aws.ToString(perm.IpProtocol)
		fromPort := int(aws.ToInt32(perm.FromPort))
		toPort := int(aws.ToInt32(perm.ToPort))

		for _, ipRange := range perm.IpRanges {
			out.IngressRules = append(out.IngressRules, models.IngressRule{
				Protocol:    protocol,
				FromPort:    fromPort,
				ToPort:      toPort,
				CIDR:        aws.ToString(ipRange.CidrIp),
				Description: aws.ToString(ipRange.Description),
			})
		}
		for _, ipv6Range := range perm.Ipv6Ranges {
			out.IngressRules = append(out.IngressRules, models.IngressRule{
				Protocol:    protocol,
				FromPort:    fromPort,
				ToPort:      toPort,
				CIDR:        aws.ToString(ipv6Range.CidrIpv6),
				Description: aws.ToString(ipv6Range.Description),
			})
		}
	}
	return out
}
