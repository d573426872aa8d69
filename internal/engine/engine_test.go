package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudhardening/sgpatrol/internal/config"
	"github.com/cloudhardening/sgpatrol/internal/models"
	"github.com/cloudhardening/sgpatrol/internal/providers/aws/common"
)

// fakeProvider satisfies common.AWSClientProvider with a canned profile.
type fakeProvider struct {
	profile *common.ProfileConfig
	err     error
}

func (p *fakeProvider) LoadProfile(ctx context.Context, profile, region string) (*common.ProfileConfig, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.profile, nil
}

// fakeCollector satisfies sg.Collector from in-memory groups. Per-group
// errors for CollectByID are configured via byIDErr.
type fakeCollector struct {
	groups     []models.SecurityGroup
	collectErr error
	byIDErr    map[string]error
}

func (c *fakeCollector) Collect(ctx context.Context, profile *common.ProfileConfig) ([]models.SecurityGroup, error) {
	if c.collectErr != nil {
		return nil, c.collectErr
	}
	return c.groups, nil
}

func (c *fakeCollector) CollectByID(ctx context.Context, profile *common.ProfileConfig, groupID string) (*models.SecurityGroup, error) {
	if err, ok := c.byIDErr[groupID]; ok {
		return nil, err
	}
	for i := range c.groups {
		if c.groups[i].GroupID == groupID {
			return &c.groups[i], nil
		}
	}
	return nil, errors.New("not found")
}

// mutatorCall records one revoke or authorize invocation.
type mutatorCall struct {
	op      string
	groupID string
	rule    models.IngressRule
}

// fakeMutator satisfies sg.Mutator, recording calls. Groups listed in
// failGroups error on every mutation.
type fakeMutator struct {
	calls      []mutatorCall
	failGroups map[string]error
}

func (m *fakeMutator) Revoke(ctx context.Context, profile *common.ProfileConfig, groupID string, rule models.IngressRule) error {
	if err, ok := m.failGroups[groupID]; ok {
		return fmt.Errorf("revoke: %w", err)
	}
	m.calls = append(m.calls, mutatorCall{op: "revoke", groupID: groupID, rule: rule})
	return nil
}

func (m *fakeMutator) Authorize(ctx context.Context, profile *common.ProfileConfig, groupID string, rule models.IngressRule) error {
	if err, ok := m.failGroups[groupID]; ok {
		return fmt.Errorf("authorize: %w", err)
	}
	m.calls = append(m.calls, mutatorCall{op: "authorize", groupID: groupID, rule: rule})
	return nil
}

func testEngine(groups []models.SecurityGroup) (*Engine, *fakeMutator) {
	provider := &fakeProvider{profile: &common.ProfileConfig{
		ProfileName: "test",
		AccountID:   "123456789012",
		Region:      "us-east-1",
	}}
	mutator := &fakeMutator{}
	return New(provider, &fakeCollector{groups: groups}, mutator), mutator
}

func defaultOptions() Options {
	policy := config.DefaultRiskPolicy()
	return Options{
		Policy: policy,
		Ports:  config.FilterFromPolicy(policy),
	}
}

func tcpRule(port int, cidr string) models.IngressRule {
	return models.IngressRule{Protocol: "tcp", FromPort: port, ToPort: port, CIDR: cidr}
}

func sgWith(id string, rules ...models.IngressRule) models.SecurityGroup {
	return models.SecurityGroup{
		GroupID:      id,
		GroupName:    id + "-name",
		Region:       "us-east-1",
		IngressRules: rules,
	}
}
