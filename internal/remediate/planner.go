// Package remediate computes the minimal rule mutation that closes a
// security group's internet exposure. Planning is pure and scoped: only
// world-open rules matching the port filter enter the plan; everything
// else is left untouched.
package remediate

import (
	"fmt"

	"github.com/cloudhardening/sgpatrol/internal/config"
	"github.com/cloudhardening/sgpatrol/internal/models"
	"github.com/cloudhardening/sgpatrol/internal/risk"
)

// Plan schedules every world-open ingress rule of group matching filter
// for revocation, and one replacement per CIDR in replacementCIDRs with
// identical protocol and port range. Replacements are deduplicated so a
// rule open on both 0.0.0.0/0 and ::/0 yields one authorize per CIDR,
// not two.
//
// Running Plan against an already-remediated group returns an empty plan.
func Plan(
	group models.SecurityGroup,
	filter config.PortFilter,
	replacementCIDRs []string,
) models.RemediationPlan {
	plan := models.RemediationPlan{GroupID: group.GroupID}
	seen := make(map[string]struct{})

	for _, rule := range risk.ViolatingRules(group, filter) {
		plan.Revoke = append(plan.Revoke, rule)

		for _, cidr := range replacementCIDRs {
			replacement := models.IngressRule{
				Protocol:    rule.Protocol,
				FromPort:    rule.FromPort,
				ToPort:      rule.ToPort,
				CIDR:        cidr,
				Description: fmt.Sprintf("Remediated from %s", rule.CIDR),
			}
			key := replacementKey(replacement)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			plan.Authorize = append(plan.Authorize, replacement)
		}
	}
	return plan
}

// replacementKey identifies an authorize entry by its wire-visible fields.
// Description is excluded: it records provenance, not rule identity.
func replacementKey(r models.IngressRule) string {
	return fmt.Sprintf("%s/%d-%d/%s", r.Protocol, r.FromPort, r.ToPort, r.CIDR)
}
