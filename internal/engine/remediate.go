package engine

import (
	"context"
	"fmt"

	"github.com/cloudhardening/sgpatrol/internal/awserr"
	"github.com/cloudhardening/sgpatrol/internal/models"
	"github.com/cloudhardening/sgpatrol/internal/providers/aws/common"
	"github.com/cloudhardening/sgpatrol/internal/remediate"
	"github.com/cloudhardening/sgpatrol/internal/risk"
)

// Remediate plans and (unless dry-run) applies remediation for a single
// security group. A group that no longer matches the port filter yields a
// result with an empty plan and no API writes.
func (e *Engine) Remediate(ctx context.Context, groupID string, opts Options) (*models.RemediationResult, error) {
	profile, err := e.provider.LoadProfile(ctx, opts.Profile, opts.Region)
	if err != nil {
		return nil, err
	}

	group, err := e.collector.CollectByID(ctx, profile, groupID)
	if err != nil {
		return nil, err
	}

	return e.remediateGroup(ctx, profile, *group, opts), nil
}

// BulkRemediate finds every world-open group matching the port filter and
// remediates each independently. One group's permission, throttling, or
// not-found failure is recorded as an error outcome and never aborts the
// remaining groups; only credential and validation failures are fatal.
// Iteration is sequential: the security group APIs are rate-limited and
// low-volume.
func (e *Engine) BulkRemediate(ctx context.Context, opts Options) ([]models.BulkOutcome, error) {
	profile, err := e.provider.LoadProfile(ctx, opts.Profile, opts.Region)
	if err != nil {
		return nil, err
	}

	groups, err := e.collector.Collect(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("collect security groups: %w", err)
	}

	var outcomes []models.BulkOutcome
	for _, group := range groups {
		if len(risk.ViolatingRules(group, opts.Ports)) == 0 {
			continue
		}

		// Refetch so the plan reflects current state, not the listing
		// snapshot. Failure here is per-group, not batch-fatal.
		current, err := e.collector.CollectByID(ctx, profile, group.GroupID)
		if err != nil {
			if awserr.IsFatal(err) {
				return nil, err
			}
			outcomes = append(outcomes, models.BulkOutcome{
				GroupID: group.GroupID,
				Status:  models.BulkErrored,
				Error:   err.Error(),
			})
			continue
		}

		outcomes = append(outcomes, bulkOutcome(e.remediateGroup(ctx, profile, *current, opts)))
	}
	return outcomes, nil
}

// remediateGroup computes the plan for one group and applies it rule by
// rule unless dry-run. Individual revoke/authorize failures are recorded
// in the result and do not stop the remaining rules.
func (e *Engine) remediateGroup(
	ctx context.Context,
	profile *common.ProfileConfig,
	group models.SecurityGroup,
	opts Options,
) *models.RemediationResult {
	plan := remediate.Plan(group, opts.Ports, opts.replacements())
	result := &models.RemediationResult{
		GroupID:   group.GroupID,
		GroupName: group.GroupName,
		DryRun:    opts.DryRun,
		Plan:      plan,
	}

	if opts.DryRun || plan.Empty() {
		return result
	}

	for _, rule := range plan.Revoke {
		if err := e.mutator.Revoke(ctx, profile, group.GroupID, rule); err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Revoked = append(result.Revoked, rule)
	}
	for _, rule := range plan.Authorize {
		if err := e.mutator.Authorize(ctx, profile, group.GroupID, rule); err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Authorized = append(result.Authorized, rule)
	}
	return result
}

// bulkOutcome derives the batch status for one group's result.
// A result where every attempted write failed counts as an error outcome;
// partial success stays "remediated" with the failures listed.
func bulkOutcome(result *models.RemediationResult) models.BulkOutcome {
	outcome := models.BulkOutcome{
		GroupID: result.GroupID,
		Result:  result,
	}
	switch {
	case result.DryRun:
		outcome.Status = models.BulkPlanned
	case len(result.Errors) > 0 && len(result.Revoked)+len(result.Authorized) == 0:
		outcome.Status = models.BulkErrored
		outcome.Error = result.Errors[0]
	default:
		outcome.Status = models.BulkRemediated
	}
	return outcome
}
