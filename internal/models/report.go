package models

import "time"

// GroupFinding is the per-group output unit of a find run: the group's
// computed risk level plus the world-open rules that produced it.
type GroupFinding struct {
	GroupID        string        `json:"group_id"`
	GroupName      string        `json:"group_name,omitempty"`
	VpcID          string        `json:"vpc_id,omitempty"`
	Region         string        `json:"region"`
	RiskLevel      RiskLevel     `json:"risk_level"`
	ViolatingRules []IngressRule `json:"violating_rules"`
}

// RemediationPlan is the computed rule mutation for one security group:
// the world-open rules to revoke and the narrowed replacements to
// authorize. Plans are built fresh per invocation and never persisted.
type RemediationPlan struct {
	GroupID   string        `json:"group_id"`
	Revoke    []IngressRule `json:"revoke"`
	Authorize []IngressRule `json:"authorize"`
}

// Empty reports whether the plan contains no mutations. Planning an
// already-remediated group yields an empty plan.
func (p RemediationPlan) Empty() bool {
	return len(p.Revoke) == 0 && len(p.Authorize) == 0
}

// RemediationResult describes what a remediate invocation did (or, in
// dry-run, would do) to a single security group.
type RemediationResult struct {
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name,omitempty"`
	DryRun    bool   `json:"dry_run"`

	// Plan is the full computed mutation. In dry-run mode it is the whole
	// result; otherwise Revoked/Authorized record what actually succeeded.
	Plan RemediationPlan `json:"plan"`

	Revoked    []IngressRule `json:"revoked,omitempty"`
	Authorized []IngressRule `json:"authorized,omitempty"`

	// Errors holds per-rule failure messages. A failed revoke or authorize
	// is recorded here and does not abort the remaining rules.
	Errors []string `json:"errors,omitempty"`
}

// BulkStatus classifies the outcome of one group within a bulk run.
type BulkStatus string

const (
	BulkRemediated BulkStatus = "remediated"
	BulkPlanned    BulkStatus = "planned"
	BulkErrored    BulkStatus = "error"
)

// BulkOutcome is one entry of a bulk-remediate run. Groups that fail with
// a non-fatal error carry status "error" and an Error message; the batch
// continues past them.
type BulkOutcome struct {
	GroupID string             `json:"group_id"`
	Status  BulkStatus         `json:"status"`
	Result  *RemediationResult `json:"result,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// RiskSummary counts groups per risk level.
type RiskSummary struct {
	Extreme int `json:"extreme"`
	High    int `json:"high"`
	Medium  int `json:"medium"`
	Low     int `json:"low"`
	Secure  int `json:"secure"`
}

// Add increments the counter for level.
func (s *RiskSummary) Add(level RiskLevel) {
	switch level {
	case RiskExtreme:
		s.Extreme++
	case RiskHigh:
		s.High++
	case RiskMedium:
		s.Medium++
	case RiskLow:
		s.Low++
	default:
		s.Secure++
	}
}

// AuditReport is the top-level output of a report run.
type AuditReport struct {
	ReportID    string         `json:"report_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Profile     string         `json:"profile"`
	AccountID   string         `json:"account_id"`
	Region      string         `json:"region"`
	TotalGroups int            `json:"total_groups"`
	OpenGroups  int            `json:"open_groups"`
	Summary     RiskSummary    `json:"summary"`
	Findings    []GroupFinding `json:"findings"`
}
