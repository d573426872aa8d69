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

// DefaultMutator is the production Mutator. Each call performs exactly one
// revoke or authorize API operation; dry-run handling happens upstream in
// the engine, which simply never invokes the mutator.
type DefaultMutator struct {
	factory clientFactory
}

// NewDefaultMutator returns a mutator wired to real SDK clients.
func NewDefaultMutator() *DefaultMutator {
	return &DefaultMutator{factory: newDefaultClient}
}

// NewDefaultMutatorWithFactory returns a mutator that uses f to build its
// EC2 client. Pass a fake factory in tests.
func NewDefaultMutatorWithFactory(f clientFactory) *DefaultMutator {
	return &DefaultMutator{factory: f}
}

// Revoke removes one ingress rule from groupID.
func (m *DefaultMutator) Revoke(ctx context.Context, profile *common.ProfileConfig, groupID string, rule models.IngressRule) error {
	client := m.factory(profile.Config)
	_, err := client.RevokeSecurityGroupIngress(ctx, &ec2svc.RevokeSecurityGroupIngressInput{
		GroupId:       aws.String(groupID),
		IpPermissions: []ec2types.IpPermission{toIPPermission(rule)},
	})
	return awserr.Wrap(fmt.Sprintf("revoke %s from %s", ruleLabel(rule), groupID), err)
}

// Authorize adds one ingress rule to groupID.
func (m *DefaultMutator) Authorize(ctx context.Context, profile *common.ProfileConfig, groupID string, rule models.IngressRule) error {
	client := m.factory(profile.Config)
	_, err := client.AuthorizeSecurityGroupIngress(ctx, &ec2svc.AuthorizeSecurityGroupIngressInput{
		GroupId:       aws.String(groupID),
		IpPermissions: []ec2types.IpPermission{toIPPermission(rule)},
	})
	return awserr.Wrap(fmt.Sprintf("authorize %s on %s", ruleLabel(rule), groupID), err)
}

// toIPPermission converts an internal rule back into the SDK wire shape.
// "-1" protocol rules carry no port range; IPv6 sources go into Ipv6Ranges.
func toIPPermission(rule models.IngressRule) ec2types.IpPermission {
	perm := ec2types.IpPermission{
		IpProtocol: aws.String(rule.Protocol),
	}
	if rule.Protocol != models.ProtocolAll {
		perm.FromPort = aws.Int32(int32(rule.FromPort))
		perm.ToPort = aws.Int32(int32(rule.ToPort))
	}

	if rule.IsIPv6() {
		r := ec2types.Ipv6Range{CidrIpv6: aws.String(rule.CIDR)}
		if rule.Description != "" {
			r.Description = aws.String(rule.Description)
		}
		perm.Ipv6Ranges = []ec2types.Ipv6Range{r}
	} else {
		r := ec2types.IpRange{CidrIp: aws.String(rule.CIDR)}
		if rule.Description != "" {
			r.Description = aws.String(rule.Description)
		}
		perm.IpRanges = []ec2types.IpRange{r}
	}
	return perm
}

// ruleLabel renders a rule for error messages.
func ruleLabel(rule models.IngressRule) string {
	if rule.Protocol == models.ProtocolAll {
		return fmt.Sprintf("all-protocols/%s", rule.CIDR)
	}
	return fmt.Sprintf("%s %d-%d/%s", rule.Protocol, rule.FromPort, rule.ToPort, rule.CIDR)
}
