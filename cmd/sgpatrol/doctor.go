package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudhardening/sgpatrol/internal/config"
	"github.com/cloudhardening/sgpatrol/internal/output"
	"github.com/cloudhardening/sgpatrol/internal/providers/aws/common"
	"github.com/cloudhardening/sgpatrol/internal/providers/aws/sg"
)

// DoctorResult is the structured output of sgpatrol doctor. It can be
// serialised to JSON via --format=json or rendered as a human-readable
// checklist (default).
type DoctorResult struct {
	AWS struct {
		Profile     string `json:"profile,omitempty"`
		Credentials bool   `json:"credentials_ok"`
		AccountID   string `json:"account_id,omitempty"`
		Region      string `json:"region,omitempty"`
		DescribeOK  bool   `json:"describe_security_groups_ok"`
		GroupCount  int    `json:"security_group_count"`
		Error       string `json:"error,omitempty"`
	} `json:"aws"`

	Policy struct {
		Present bool   `json:"present"`
		Valid   bool   `json:"valid"`
		Error   string `json:"error,omitempty"`
	} `json:"policy"`

	OverallHealthy bool `json:"overall_healthy"`
}

func newDoctorCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run environment diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			result, err := runDoctor(
				cmd.Context(),
				common.NewDefaultAWSClientProvider(),
				sg.NewDefaultCollector(),
				cmd.OutOrStdout(),
				format,
				g,
			)
			if err != nil {
				// Rendering failure — let Cobra/main handle it.
				return err
			}
			if !result.OverallHealthy {
				// Exit directly so no error text reaches main's
				// fmt.Fprintln(os.Stderr, err) path.
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().String("format", "table", `Output format: "table" or "json"`)
	return cmd
}

// runDoctor checks credential resolution, EC2 describe permission, and
// policy-file validity, then renders the result to w in the requested
// format. It never returns an error for unhealthy checks — only for
// rendering failures.
func runDoctor(
	ctx context.Context,
	provider common.AWSClientProvider,
	collector sg.Collector,
	w io.Writer,
	format string,
	g *globalOptions,
) (*DoctorResult, error) {
	result := &DoctorResult{}
	result.AWS.Profile = g.profile

	profile, err := provider.LoadProfile(ctx, g.profile, g.region)
	if err != nil {
		result.AWS.Error = err.Error()
	} else {
		result.AWS.Credentials = true
		result.AWS.AccountID = profile.AccountID
		result.AWS.Region = profile.Region

		groups, err := collector.Collect(ctx, profile)
		if err != nil {
			result.AWS.Error = err.Error()
		} else {
			result.AWS.DescribeOK = true
			result.AWS.GroupCount = len(groups)
		}
	}

	if g.policy == "" {
		// No file requested; built-in defaults are always valid.
		result.Policy.Valid = true
	} else {
		result.Policy.Present = true
		if _, err := config.LoadPolicy(g.policy); err != nil {
			result.Policy.Error = err.Error()
		} else {
			result.Policy.Valid = true
		}
	}

	result.OverallHealthy = result.AWS.Credentials && result.AWS.DescribeOK && result.Policy.Valid

	if format == "json" {
		if err := output.WriteJSON(w, result); err != nil {
			return nil, err
		}
		return result, nil
	}

	fmt.Fprintln(w, "sgpatrol doctor")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s AWS credentials", checkMark(result.AWS.Credentials))
	if result.AWS.AccountID != "" {
		fmt.Fprintf(w, " (account %s, region %s)", result.AWS.AccountID, result.AWS.Region)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s EC2 DescribeSecurityGroups", checkMark(result.AWS.DescribeOK))
	if result.AWS.DescribeOK {
		fmt.Fprintf(w, " (%d groups)", result.AWS.GroupCount)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s Risk policy\n", checkMark(result.Policy.Valid))
	if result.AWS.Error != "" {
		fmt.Fprintf(w, "\n  aws error: %s\n", result.AWS.Error)
	}
	if result.Policy.Error != "" {
		fmt.Fprintf(w, "  policy error: %s\n", result.Policy.Error)
	}
	return result, nil
}

func checkMark(ok bool) string {
	if ok {
		return "[ok]"
	}
	return "[FAIL]"
}
