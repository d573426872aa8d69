// Package engine orchestrates collection, classification, planning, and
// application. It never calls the AWS SDK directly; all cloud access is
// delegated to the provider, collector, and mutator interfaces.
package engine

import (
	"github.com/cloudhardening/sgpatrol/internal/config"
	"github.com/cloudhardening/sgpatrol/internal/providers/aws/common"
	"github.com/cloudhardening/sgpatrol/internal/providers/aws/sg"
)

// Options configures a single engine run. It is the sole input besides
// the context; the engine holds no per-run state.
type Options struct {
	// Profile is the named AWS profile. Empty means the default chain.
	Profile string

	// Region overrides the profile's configured region when non-empty.
	Region string

	// Policy supplies watched ports, management ports, and replacement
	// CIDRs. Callers load it via the config package.
	Policy config.RiskPolicy

	// Ports scopes which world-open rules find and remediation consider.
	Ports config.PortFilter

	// ReplacementCIDRs overrides Policy.ReplacementCIDRs when non-empty.
	ReplacementCIDRs []string

	// DryRun plans mutations without performing any AWS write call.
	DryRun bool
}

// replacements returns the effective replacement CIDR list for a run.
func (o Options) replacements() []string {
	if len(o.ReplacementCIDRs) > 0 {
		return o.ReplacementCIDRs
	}
	return o.Policy.ReplacementCIDRs
}

// Engine wires the provider, collector, and mutator together.
type Engine struct {
	provider  common.AWSClientProvider
	collector sg.Collector
	mutator   sg.Mutator
}

// New constructs an Engine from its collaborators.
func New(provider common.AWSClientProvider, collector sg.Collector, mutator sg.Mutator) *Engine {
	return &Engine{
		provider:  provider,
		collector: collector,
		mutator:   mutator,
	}
}
