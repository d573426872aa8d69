package engine

import (
	"context"
	"testing"

	"github.com/cloudhardening/sgpatrol/internal/config"
	"github.com/cloudhardening/sgpatrol/internal/models"
)

// TestFind_ClassifiesAndSorts verifies matching groups come back graded
// and ordered most severe first, with secure groups omitted.
func TestFind_ClassifiesAndSorts(t *testing.T) {
	eng, _ := testEngine([]models.SecurityGroup{
		sgWith("sg-db", tcpRule(5432, "0.0.0.0/0")),
		sgWith("sg-safe", tcpRule(22, "10.0.0.0/8")),
		sgWith("sg-wide", models.IngressRule{Protocol: "-1", CIDR: "0.0.0.0/0"}),
		sgWith("sg-ssh", tcpRule(22, "0.0.0.0/0")),
	})

	findings, err := eng.Find(context.Background(), defaultOptions())
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	if len(findings) != 3 {
		t.Fatalf("want 3 findings (secure group omitted), got %d", len(findings))
	}

	wantOrder := []struct {
		id    string
		level models.RiskLevel
	}{
		{"sg-wide", models.RiskExtreme},
		{"sg-ssh", models.RiskHigh},
		{"sg-db", models.RiskMedium},
	}
	for i, want := range wantOrder {
		if findings[i].GroupID != want.id || findings[i].RiskLevel != want.level {
			t.Errorf("findings[%d]: got %s/%s; want %s/%s",
				i, findings[i].GroupID, findings[i].RiskLevel, want.id, want.level)
		}
	}
}

// TestFind_PortsAll verifies a group whose only exposure is an unwatched
// port (443) is still returned when the all filter is requested.
func TestFind_PortsAll(t *testing.T) {
	eng, _ := testEngine([]models.SecurityGroup{
		sgWith("sg-web", tcpRule(443, "0.0.0.0/0")),
	})

	opts := defaultOptions()

	// Default watched-port filter: no match.
	findings, err := eng.Find(context.Background(), opts)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("watched filter: want 0 findings, got %d", len(findings))
	}

	// all filter: the 443 exposure matches.
	opts.Ports = config.PortFilter{All: true}
	findings, err = eng.Find(context.Background(), opts)
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("all filter: want 1 finding, got %d", len(findings))
	}
	if findings[0].RiskLevel != models.RiskLow {
		t.Errorf("risk: got %q; want LOW", findings[0].RiskLevel)
	}
	if len(findings[0].ViolatingRules) != 1 || findings[0].ViolatingRules[0].FromPort != 443 {
		t.Errorf("violating rules: %+v", findings[0].ViolatingRules)
	}
}

func TestReport_SummaryCounts(t *testing.T) {
	eng, _ := testEngine([]models.SecurityGroup{
		sgWith("sg-wide", models.IngressRule{Protocol: "-1", CIDR: "::/0"}),
		sgWith("sg-ssh", tcpRule(22, "0.0.0.0/0")),
		sgWith("sg-web", tcpRule(443, "0.0.0.0/0")),
		sgWith("sg-safe", tcpRule(22, "10.0.0.0/8")),
		sgWith("sg-empty"),
	})

	report, err := eng.Report(context.Background(), defaultOptions())
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if report.ReportID == "" {
		t.Error("report ID must be set")
	}
	if report.AccountID != "123456789012" || report.Region != "us-east-1" {
		t.Errorf("report header: %+v", report)
	}
	if report.TotalGroups != 5 || report.OpenGroups != 3 {
		t.Errorf("totals: got %d/%d; want 5 total, 3 open", report.TotalGroups, report.OpenGroups)
	}

	s := report.Summary
	if s.Extreme != 1 || s.High != 1 || s.Medium != 0 || s.Low != 1 || s.Secure != 2 {
		t.Errorf("summary: %+v", s)
	}

	// Report findings include LOW groups outside the watched list: the
	// report view is unfiltered.
	if len(report.Findings) != 3 {
		t.Fatalf("want 3 findings, got %d", len(report.Findings))
	}
	if report.Findings[0].RiskLevel != models.RiskExtreme {
		t.Errorf("findings must be ordered most severe first, got %q", report.Findings[0].RiskLevel)
	}
}
