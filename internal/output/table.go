package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/cloudhardening/sgpatrol/internal/models"
)

// ANSI color codes for risk-level output (used when Colored=true).
const (
	ansiReset   = "\033[0m"
	ansiBoldRed = "\033[1;31m"
	ansiRed     = "\033[0;31m"
	ansiYellow  = "\033[0;33m"
	ansiBlue    = "\033[0;34m"
)

// TableOptions controls table rendering.
type TableOptions struct {
	// Colored wraps risk labels with ANSI codes. Default false (CI-safe).
	Colored bool
}

// riskCell returns the risk level padded to width characters. When colored,
// ANSI codes wrap only the text; trailing padding spaces stay plain so
// subsequent columns align regardless of terminal ANSI support.
func riskCell(level models.RiskLevel, width int, colored bool) string {
	text := string(level)
	if !colored {
		return fmt.Sprintf("%-*s", width, text)
	}
	var code string
	switch level {
	case models.RiskExtreme:
		code = ansiBoldRed
	case models.RiskHigh:
		code = ansiRed
	case models.RiskMedium:
		code = ansiYellow
	case models.RiskLow:
		code = ansiBlue
	default:
		return fmt.Sprintf("%-*s", width, text)
	}
	spaces := width - len(text)
	if spaces < 0 {
		spaces = 0
	}
	return code + text + ansiReset + strings.Repeat(" ", spaces)
}

// truncateField shortens s to at most max bytes for ID/label columns.
func truncateField(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

// ruleSummary renders the violating rules of a finding as a compact
// comma-separated list, e.g. "tcp 22 (0.0.0.0/0), tcp 3306 (::/0)".
func ruleSummary(rules []models.IngressRule) string {
	parts := make([]string, 0, len(rules))
	for _, r := range rules {
		switch {
		case r.Protocol == models.ProtocolAll:
			parts = append(parts, fmt.Sprintf("all (%s)", r.CIDR))
		case r.FromPort == r.ToPort:
			parts = append(parts, fmt.Sprintf("%s %d (%s)", r.Protocol, r.FromPort, r.CIDR))
		default:
			parts = append(parts, fmt.Sprintf("%s %d-%d (%s)", r.Protocol, r.FromPort, r.ToPort, r.CIDR))
		}
	}
	return strings.Join(parts, ", ")
}

// RenderFindingsTable writes a formatted findings table to w. The
// separator line width is derived from the header row so all rows align.
//
// Column order:
//
//	GROUP ID  NAME  VPC  REGION  RISK  OPEN RULES
func RenderFindingsTable(w io.Writer, findings []models.GroupFinding, opts TableOptions) {
	if len(findings) == 0 {
		fmt.Fprintln(w, "No exposed security groups found.")
		return
	}

	const (
		wGroup  = 22
		wName   = 24
		wVpc    = 22
		wRegion = 15
		wRisk   = 8
	)

	header := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %-*s  %s",
		wGroup, "GROUP ID",
		wName, "NAME",
		wVpc, "VPC",
		wRegion, "REGION",
		wRisk, "RISK",
		"OPEN RULES",
	)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)+20))

	for _, f := range findings {
		fmt.Fprintf(w, "%-*s  %-*s  %-*s  %-*s  %s  %s\n",
			wGroup, truncateField(f.GroupID, wGroup),
			wName, truncateField(f.GroupName, wName),
			wVpc, truncateField(f.VpcID, wVpc),
			wRegion, truncateField(f.Region, wRegion),
			riskCell(f.RiskLevel, wRisk, opts.Colored),
			ruleSummary(f.ViolatingRules),
		)
	}
}

// RenderReportSummary writes the per-level counts of an audit report.
func RenderReportSummary(w io.Writer, report *models.AuditReport) {
	fmt.Fprintf(w, "Account:  %s\n", report.AccountID)
	fmt.Fprintf(w, "Profile:  %s\n", report.Profile)
	fmt.Fprintf(w, "Region:   %s\n", report.Region)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Security Groups:  %d total, %d internet-exposed\n", report.TotalGroups, report.OpenGroups)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Risk Breakdown")
	fmt.Fprintf(w, "  %-8s  %d\n", "EXTREME", report.Summary.Extreme)
	fmt.Fprintf(w, "  %-8s  %d\n", "HIGH", report.Summary.High)
	fmt.Fprintf(w, "  %-8s  %d\n", "MEDIUM", report.Summary.Medium)
	fmt.Fprintf(w, "  %-8s  %d\n", "LOW", report.Summary.Low)
	fmt.Fprintf(w, "  %-8s  %d\n", "SECURE", report.Summary.Secure)
}
