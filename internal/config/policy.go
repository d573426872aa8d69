package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/cloudhardening/sgpatrol/internal/awserr"
)

// RiskPolicy is the explicit configuration passed into classification and
// planning. It is always passed by value into pure functions; nothing in
// this package holds mutable package-level state.
type RiskPolicy struct {
	// WatchedPorts are the service ports considered risky when exposed to
	// the internet (databases, search, dashboards).
	WatchedPorts []int `yaml:"watched_ports"`

	// ManagementPorts are remote-admin ports (SSH, RDP). Internet exposure
	// of any of these is graded HIGH regardless of the watched list.
	ManagementPorts []int `yaml:"management_ports"`

	// ReplacementCIDRs are the narrowed source ranges authorized in place
	// of a revoked world-open rule.
	ReplacementCIDRs []string `yaml:"replacement_cidrs"`
}

// DefaultRiskPolicy returns the built-in policy: common risky service
// ports, SSH/RDP as management ports, and the three RFC 1918 private
// ranges as replacements.
func DefaultRiskPolicy() RiskPolicy {
	return RiskPolicy{
		WatchedPorts:     []int{22, 3389, 1433, 3306, 5432, 6379, 27017, 9200, 5601},
		ManagementPorts:  []int{22, 3389},
		ReplacementCIDRs: []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"},
	}
}

// Validate checks port and CIDR well-formedness. Violations are returned
// as a ValidationError, which is fatal for the whole invocation.
func (p RiskPolicy) Validate() error {
	for _, port := range p.WatchedPorts {
		if port < 1 || port > 65535 {
			return awserr.Validationf("watched port %d out of range 1-65535", port)
		}
	}
	for _, port := range p.ManagementPorts {
		if port < 1 || port > 65535 {
			return awserr.Validationf("management port %d out of range 1-65535", port)
		}
	}
	if len(p.ReplacementCIDRs) == 0 {
		return awserr.Validationf("replacement_cidrs must not be empty")
	}
	for _, cidr := range p.ReplacementCIDRs {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return awserr.Validationf("invalid replacement CIDR %q", cidr)
		}
	}
	return nil
}

// PortFilter scopes which world-open rules find and remediation consider.
// The zero value matches nothing; build it via ParsePortFilter or
// FilterFromPolicy.
type PortFilter struct {
	// All matches any world-open rule regardless of port.
	All bool

	// Ports is the explicit port list when All is false.
	Ports []int
}

// Matches reports whether a port list entry falls inside the rule's range.
// Protocol "-1" rules match every filter: they expose all ports.
func (f PortFilter) Matches(protocol string, fromPort, toPort int) bool {
	if f.All || protocol == "-1" {
		return true
	}
	for _, port := range f.Ports {
		if fromPort <= port && port <= toPort {
			return true
		}
	}
	return false
}

// FilterFromPolicy returns the filter covering every port the policy
// watches, management ports included.
func FilterFromPolicy(p RiskPolicy) PortFilter {
	seen := make(map[int]struct{})
	var ports []int
	for _, port := range append(append([]int{}, p.ManagementPorts...), p.WatchedPorts...) {
		if _, dup := seen[port]; dup {
			continue
		}
		seen[port] = struct{}{}
		ports = append(ports, port)
	}
	return PortFilter{Ports: ports}
}

// ParsePortFilter parses the --ports flag value. An empty string falls
// back to the policy's watched set; "all" matches every port; otherwise
// the value is a comma-separated port list. Malformed input is a
// ValidationError.
func ParsePortFilter(value string, policy RiskPolicy) (PortFilter, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return FilterFromPolicy(policy), nil
	}
	if strings.EqualFold(value, "all") {
		return PortFilter{All: true}, nil
	}

	var ports []int
	for _, field := range strings.Split(value, ",") {
		field = strings.TrimSpace(field)
		port, err := strconv.Atoi(field)
		if err != nil {
			return PortFilter{}, awserr.Validationf("invalid port %q in --ports", field)
		}
		if port < 1 || port > 65535 {
			return PortFilter{}, awserr.Validationf("port %d out of range 1-65535", port)
		}
		ports = append(ports, port)
	}
	if len(ports) == 0 {
		return PortFilter{}, awserr.Validationf("--ports must name at least one port")
	}
	return PortFilter{Ports: ports}, nil
}

// ParseCIDRList parses the --cidrs flag value into replacement CIDRs.
// An empty string returns nil so callers fall back to the policy default.
func ParseCIDRList(value string) ([]string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	var cidrs []string
	for _, field := range strings.Split(value, ",") {
		field = strings.TrimSpace(field)
		if _, _, err := net.ParseCIDR(field); err != nil {
			return nil, awserr.Validationf("invalid CIDR %q in --cidrs", field)
		}
		cidrs = append(cidrs, field)
	}
	return cidrs, nil
}

// describePorts renders a port filter for log messages.
func describePorts(f PortFilter) string {
	if f.All {
		return "all"
	}
	parts := make([]string, len(f.Ports))
	for i, p := range f.Ports {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}

// String implements fmt.Stringer for flag echo and diagnostics output.
func (f PortFilter) String() string {
	return fmt.Sprintf("ports(%s)", describePorts(f))
}
