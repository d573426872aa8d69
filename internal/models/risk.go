package models

// RiskLevel grades a security group's internet exposure.
type RiskLevel string

const (
	RiskSecure  RiskLevel = "SECURE"
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
	RiskExtreme RiskLevel = "EXTREME"
)

// riskRank orders levels for max-severity folding.
// EXTREME > HIGH > MEDIUM > LOW > SECURE.
var riskRank = map[RiskLevel]int{
	RiskSecure:  0,
	RiskLow:     1,
	RiskMedium:  2,
	RiskHigh:    3,
	RiskExtreme: 4,
}

// Rank returns the numeric severity of l. Unknown levels rank as SECURE.
func (l RiskLevel) Rank() int {
	return riskRank[l]
}

// MaxRisk returns the more severe of a and b.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}
