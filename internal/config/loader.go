package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cloudhardening/sgpatrol/internal/awserr"
)

// policyFile is the on-disk schema. Only fields present in the file
// override the built-in defaults; absent sections keep their defaults.
type policyFile struct {
	Version          int      `yaml:"version"`
	WatchedPorts     []int    `yaml:"watched_ports"`
	ManagementPorts  []int    `yaml:"management_ports"`
	ReplacementCIDRs []string `yaml:"replacement_cidrs"`
}

// LoadPolicy reads a risk policy YAML file, overlays it on the defaults,
// and validates the result. Schema violations and malformed values are
// returned as ValidationErrors.
func LoadPolicy(path string) (RiskPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RiskPolicy{}, err
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return RiskPolicy{}, awserr.Validationf("parse policy file %s: %v", path, err)
	}
	if file.Version != 1 {
		return RiskPolicy{}, awserr.Validationf("unsupported policy version %d (want 1)", file.Version)
	}

	policy := DefaultRiskPolicy()
	if file.WatchedPorts != nil {
		policy.WatchedPorts = file.WatchedPorts
	}
	if file.ManagementPorts != nil {
		policy.ManagementPorts = file.ManagementPorts
	}
	if file.ReplacementCIDRs != nil {
		policy.ReplacementCIDRs = file.ReplacementCIDRs
	}

	if err := policy.Validate(); err != nil {
		return RiskPolicy{}, err
	}
	return policy, nil
}

// LoadPolicyOrDefault returns the default policy when path is empty,
// otherwise loads and validates the file. A missing file at an explicit
// path is an error; the operator asked for it.
func LoadPolicyOrDefault(path string) (RiskPolicy, error) {
	if path == "" {
		return DefaultRiskPolicy(), nil
	}
	policy, err := LoadPolicy(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return RiskPolicy{}, awserr.Validationf("policy file %s does not exist", path)
	}
	return policy, err
}
