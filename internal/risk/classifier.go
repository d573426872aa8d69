// Package risk grades the internet exposure of security groups. All
// functions here are pure: same rules in, same level out, no network
// calls, no external state.
package risk

import (
	"github.com/cloudhardening/sgpatrol/internal/config"
	"github.com/cloudhardening/sgpatrol/internal/models"
)

// Classify returns the exposure grade of group under policy:
//
//	EXTREME  a "-1" protocol rule is open to the world
//	HIGH     a management port (SSH/RDP) is open to the world
//	MEDIUM   another watched port is open to the world
//	LOW      world-open rules exist but expose no watched port
//	SECURE   no rule admits the whole internet
//
// The group's level is the maximum across its rules. IPv4 (0.0.0.0/0)
// and IPv6 (::/0) exposure are equivalent.
func Classify(group models.SecurityGroup, policy config.RiskPolicy) models.RiskLevel {
	level := models.RiskSecure
	for _, rule := range group.IngressRules {
		level = models.MaxRisk(level, classifyRule(rule, policy))
	}
	return level
}

// classifyRule grades a single ingress rule.
func classifyRule(rule models.IngressRule, policy config.RiskPolicy) models.RiskLevel {
	if !rule.OpenToWorld() {
		return models.RiskSecure
	}
	if rule.Protocol == models.ProtocolAll {
		return models.RiskExtreme
	}
	if coversAny(rule, policy.ManagementPorts) {
		return models.RiskHigh
	}
	if coversAny(rule, policy.WatchedPorts) {
		return models.RiskMedium
	}
	return models.RiskLow
}

// ViolatingRules returns the world-open rules of group matching filter.
// These are the rules find reports and the planner schedules for revocation.
func ViolatingRules(group models.SecurityGroup, filter config.PortFilter) []models.IngressRule {
	var violating []models.IngressRule
	for _, rule := range group.IngressRules {
		if !rule.OpenToWorld() {
			continue
		}
		if !filter.Matches(rule.Protocol, rule.FromPort, rule.ToPort) {
			continue
		}
		violating = append(violating, rule)
	}
	return violating
}

func coversAny(rule models.IngressRule, ports []int) bool {
	for _, port := range ports {
		if rule.CoversPort(port) {
			return true
		}
	}
	return false
}
