package models

// ProtocolAll is the EC2 wildcard protocol covering every protocol and port.
const ProtocolAll = "-1"

// World-open source ranges. IPv4 and IPv6 are treated symmetrically
// throughout the engine: a rule reachable from either is internet-exposed.
const (
	WorldCIDRv4 = "0.0.0.0/0"
	WorldCIDRv6 = "::/0"
)

// IngressRule is a single inbound allow-rule flattened to one source range.
// A security group permission with multiple IP ranges produces one
// IngressRule per range, IPv4 and IPv6 alike. Rules are immutable once
// collected; remediation constructs fresh replacement rules.
type IngressRule struct {
	// Protocol is "tcp", "udp", "icmp", or "-1" for all protocols.
	Protocol string `json:"protocol"`

	// FromPort and ToPort bound the destination port range, inclusive.
	// Both are zero for "-1" protocol rules, which cover every port.
	FromPort int `json:"from_port"`
	ToPort   int `json:"to_port"`

	// CIDR is the source range in CIDR notation (IPv4 or IPv6).
	CIDR string `json:"cidr"`

	// Description is the rule description carried on the IP range, if any.
	Description string `json:"description,omitempty"`
}

// OpenToWorld reports whether the rule's source is the whole internet.
func (r IngressRule) OpenToWorld() bool {
	return r.CIDR == WorldCIDRv4 || r.CIDR == WorldCIDRv6
}

// CoversPort reports whether traffic to port would be admitted by this rule.
// "-1" protocol rules cover every port.
func (r IngressRule) CoversPort(port int) bool {
	if r.Protocol == ProtocolAll {
		return true
	}
	return r.FromPort <= port && port <= r.ToPort
}

// IsIPv6 reports whether the rule's source range is an IPv6 CIDR.
func (r IngressRule) IsIPv6() bool {
	for i := 0; i < len(r.CIDR); i++ {
		if r.CIDR[i] == ':' {
			return true
		}
	}
	return false
}

// SecurityGroup is an EC2 security group with its flattened ingress rules.
type SecurityGroup struct {
	GroupID     string            `json:"group_id"`
	GroupName   string            `json:"group_name"`
	Description string            `json:"description,omitempty"`
	VpcID       string            `json:"vpc_id,omitempty"`
	Region      string            `json:"region"`
	Tags        map[string]string `json:"tags,omitempty"`

	// IngressRules holds one entry per (permission, source range) pair.
	// Order carries no meaning; classification is order-independent.
	IngressRules []IngressRule `json:"ingress_rules"`
}
