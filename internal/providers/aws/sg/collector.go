// Package sg implements the EC2 security group provider: read-side
// collection of groups and their flattened ingress rules, and write-side
// application of remediation plans.
//
// Collection never applies business logic: risk grading lives in the risk
// package and mutation decisions in the remediate package. This package
// only translates between SDK shapes and internal models.
package sg

import (
	"context"

	"github.com/cloudhardening/sgpatrol/internal/models"
	"github.com/cloudhardening/sgpatrol/internal/providers/aws/common"
)

// Collector reads security groups from the profile's target region.
type Collector interface {
	// Collect lists every security group in the region.
	Collect(ctx context.Context, profile *common.ProfileConfig) ([]models.SecurityGroup, error)

	// CollectByID fetches a single security group. A missing group
	// surfaces as a not-found error.
	CollectByID(ctx context.Context, profile *common.ProfileConfig, groupID string) (*models.SecurityGroup, error)
}

// Mutator applies individual plan entries against the AWS API. The engine
// drives rule-by-rule application so per-rule failures can be recorded
// without aborting the rest of a plan.
type Mutator interface {
	Revoke(ctx context.Context, profile *common.ProfileConfig, groupID string, rule models.IngressRule) error
	Authorize(ctx context.Context, profile *common.ProfileConfig, groupID string, rule models.IngressRule) error
}
