package validation

// Classify maps the final risk factor set and the content-duplicate
// flag to an overall risk level. The policy is deterministic and
// order-independent: a content duplicate or three or more factors is
// high, any factor at all is medium, otherwise low.
func Classify(riskFactors []string, isDuplicateContent bool) RiskLevel {
	switch {
	case isDuplicateContent || len(riskFactors) >= 3:
		return RiskHigh
	case len(riskFactors) >= 1:
		return RiskMedium
	default:
		return RiskLow
	}
}
