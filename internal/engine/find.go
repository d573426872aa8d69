package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cloudhardening/sgpatrol/internal/config"
	"github.com/cloudhardening/sgpatrol/internal/models"
	"github.com/cloudhardening/sgpatrol/internal/risk"
)

// Find lists every security group with at least one world-open ingress
// rule matching the port filter, graded by risk level. Groups with no
// matching exposure are omitted. Results are ordered most severe first,
// ties broken by group ID for deterministic output.
func (e *Engine) Find(ctx context.Context, opts Options) ([]models.GroupFinding, error) {
	profile, err := e.provider.LoadProfile(ctx, opts.Profile, opts.Region)
	if err != nil {
		return nil, err
	}

	groups, err := e.collector.Collect(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("collect security groups: %w", err)
	}

	var findings []models.GroupFinding
	for _, group := range groups {
		violating := risk.ViolatingRules(group, opts.Ports)
		if len(violating) == 0 {
			continue
		}
		findings = append(findings, models.GroupFinding{
			GroupID:        group.GroupID,
			GroupName:      group.GroupName,
			VpcID:          group.VpcID,
			Region:         group.Region,
			RiskLevel:      risk.Classify(group, opts.Policy),
			ViolatingRules: violating,
		})
	}

	sortFindings(findings)
	return findings, nil
}

// Report classifies every security group in the region, including secure
// ones, and aggregates per-level counts. Findings cover all world-open
// groups regardless of the watched-port list, matching the broadest view
// an operator needs before deciding remediation scope.
func (e *Engine) Report(ctx context.Context, opts Options) (*models.AuditReport, error) {
	profile, err := e.provider.LoadProfile(ctx, opts.Profile, opts.Region)
	if err != nil {
		return nil, err
	}

	groups, err := e.collector.Collect(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("collect security groups: %w", err)
	}

	report := &models.AuditReport{
		ReportID:    uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Profile:     profile.ProfileName,
		AccountID:   profile.AccountID,
		Region:      profile.Region,
		TotalGroups: len(groups),
	}

	allPorts := config.PortFilter{All: true}
	for _, group := range groups {
		level := risk.Classify(group, opts.Policy)
		report.Summary.Add(level)
		if level == models.RiskSecure {
			continue
		}
		report.OpenGroups++
		report.Findings = append(report.Findings, models.GroupFinding{
			GroupID:        group.GroupID,
			GroupName:      group.GroupName,
			VpcID:          group.VpcID,
			Region:         group.Region,
			RiskLevel:      level,
			ViolatingRules: risk.ViolatingRules(group, allPorts),
		})
	}

	sortFindings(report.Findings)
	return report, nil
}

// sortFindings orders findings EXTREME → HIGH → MEDIUM → LOW, ties broken
// by group ID ascending.
func sortFindings(findings []models.GroupFinding) {
	sort.Slice(findings, func(i, j int) bool {
		ri, rj := findings[i].RiskLevel.Rank(), findings[j].RiskLevel.Rank()
		if ri != rj {
			return ri > rj
		}
		return findings[i].GroupID < findings[j].GroupID
	})
}
