package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/cloudhardening/sgpatrol/internal/config"
	"github.com/cloudhardening/sgpatrol/internal/engine"
	"github.com/cloudhardening/sgpatrol/internal/models"
	"github.com/cloudhardening/sgpatrol/internal/output"
	"github.com/cloudhardening/sgpatrol/internal/providers/aws/common"
	"github.com/cloudhardening/sgpatrol/internal/providers/aws/sg"
	"github.com/cloudhardening/sgpatrol/internal/version"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	region  string
	profile string
	policy  string
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:           "sgpatrol",
		Short:         "Audit and remediate internet-exposed EC2 security groups",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.region, "region", "", "AWS region (default: profile region, then us-east-1)")
	root.PersistentFlags().StringVar(&g.profile, "profile", "", "AWS profile name (default: uses environment / default profile)")
	root.PersistentFlags().StringVar(&g.policy, "policy", "", "Path to a risk policy YAML file (default: built-in policy)")

	root.AddCommand(newFindCmd(g))
	root.AddCommand(newRemediateCmd(g))
	root.AddCommand(newBulkRemediateCmd(g))
	root.AddCommand(newReportCmd(g))
	root.AddCommand(newDoctorCmd(g))
	root.AddCommand(newVersionCmd())
	return root
}

// newDefaultEngine wires the production provider, collector, and mutator.
func newDefaultEngine() *engine.Engine {
	return engine.New(
		common.NewDefaultAWSClientProvider(),
		sg.NewDefaultCollector(),
		sg.NewDefaultMutator(),
	)
}

// buildOptions loads the risk policy and parses the shared --ports/--cidrs
// flag values into fully resolved engine options.
func buildOptions(g *globalOptions, portsFlag, cidrsFlag string, dryRun bool) (engine.Options, error) {
	policy, err := config.LoadPolicyOrDefault(g.policy)
	if err != nil {
		return engine.Options{}, err
	}

	ports, err := config.ParsePortFilter(portsFlag, policy)
	if err != nil {
		return engine.Options{}, err
	}

	cidrs, err := config.ParseCIDRList(cidrsFlag)
	if err != nil {
		return engine.Options{}, err
	}

	return engine.Options{
		Profile:          g.profile,
		Region:           g.region,
		Policy:           policy,
		Ports:            ports,
		ReplacementCIDRs: cidrs,
		DryRun:           dryRun,
	}, nil
}

func newFindCmd(g *globalOptions) *cobra.Command {
	var (
		ports      string
		outputPath string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find security groups with ingress rules open to the internet",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(g, ports, "", false)
			if err != nil {
				return err
			}

			var spinner *pterm.SpinnerPrinter
			if format == "table" {
				spinner, _ = pterm.DefaultSpinner.Start(
					fmt.Sprintf("Collecting security groups, filter %s", opts.Ports))
			}
			findings, err := newDefaultEngine().Find(cmd.Context(), opts)
			if spinner != nil {
				_ = spinner.Stop()
			}
			if err != nil {
				return err
			}

			if outputPath != "" {
				if err := output.WriteJSONFile(outputPath, findings); err != nil {
					return err
				}
			}

			if format == "table" {
				if len(findings) == 0 {
					pterm.Success.Println("No internet-exposed security groups found.")
					return nil
				}
				pterm.Warning.Printf("Found %d internet-exposed security groups:\n\n", len(findings))
				output.RenderFindingsTable(os.Stdout, findings, output.TableOptions{Colored: true})
				return nil
			}
			if findings == nil {
				findings = []models.GroupFinding{}
			}
			return output.WriteJSON(os.Stdout, findings)
		},
	}

	cmd.Flags().StringVar(&ports, "ports", "", `Ports to check: comma-separated list or "all" (default: policy watched ports)`)
	cmd.Flags().StringVar(&outputPath, "output", "", "Write JSON results to this file path (in addition to stdout output)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or table")
	return cmd
}

func newRemediateCmd(g *globalOptions) *cobra.Command {
	var (
		ports  string
		cidrs  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "remediate <group-id>",
		Short: "Replace a group's world-open ingress rules with restricted CIDRs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(g, ports, cidrs, dryRun)
			if err != nil {
				return err
			}

			result, err := newDefaultEngine().Remediate(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return output.WriteJSON(os.Stdout, result)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the plan without applying any change")
	cmd.Flags().StringVar(&cidrs, "cidrs", "", "Comma-separated replacement CIDRs (default: policy replacement_cidrs)")
	cmd.Flags().StringVar(&ports, "ports", "", `Ports to remediate: comma-separated list or "all" (default: policy watched ports)`)
	return cmd
}

func newBulkRemediateCmd(g *globalOptions) *cobra.Command {
	var (
		ports  string
		cidrs  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "bulk-remediate",
		Short: "Remediate every security group with world-open ingress rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(g, ports, cidrs, dryRun)
			if err != nil {
				return err
			}

			outcomes, err := newDefaultEngine().BulkRemediate(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if outcomes == nil {
				outcomes = []models.BulkOutcome{}
			}
			if err := output.WriteJSON(os.Stdout, outcomes); err != nil {
				return err
			}
			return checkBulkOutcomes(outcomes)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show plans without applying any change")
	cmd.Flags().StringVar(&cidrs, "cidrs", "", "Comma-separated replacement CIDRs (default: policy replacement_cidrs)")
	cmd.Flags().StringVar(&ports, "ports", "", `Ports to remediate: comma-separated list or "all" (default: policy watched ports)`)
	return cmd
}

// checkBulkOutcomes returns an error only when every group in the batch
// failed. Partial failures are already reported in the JSON output and
// keep exit code 0.
func checkBulkOutcomes(outcomes []models.BulkOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	for _, outcome := range outcomes {
		if outcome.Status != models.BulkErrored {
			return nil
		}
	}
	return fmt.Errorf("all %d security groups failed remediation", len(outcomes))
}

func newReportCmd(g *globalOptions) *cobra.Command {
	var (
		outputPath string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a full risk report across all security groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(g, "", "", false)
			if err != nil {
				return err
			}

			var spinner *pterm.SpinnerPrinter
			if format == "table" {
				spinner, _ = pterm.DefaultSpinner.Start("Auditing security groups")
			}
			report, err := newDefaultEngine().Report(cmd.Context(), opts)
			if spinner != nil {
				_ = spinner.Stop()
			}
			if err != nil {
				return err
			}

			if outputPath != "" {
				if err := output.WriteJSONFile(outputPath, report); err != nil {
					return err
				}
			}

			if format == "table" {
				output.RenderReportSummary(os.Stdout, report)
				if len(report.Findings) > 0 {
					fmt.Println()
					output.RenderFindingsTable(os.Stdout, report.Findings, output.TableOptions{Colored: true})
				}
				return nil
			}
			return output.WriteJSON(os.Stdout, report)
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "", "Write the JSON report to this file path (in addition to stdout output)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or table")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}
