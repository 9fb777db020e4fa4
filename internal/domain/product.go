package domain

// Product represents one entry from the product catalog
type Product struct {
	ID          string `json:"productId"`
	Name        string `json:"productName"`
	Description string `json:"description,omitempty"`

	// RiskLevel is free-form but interpreted case-insensitively against
	// "high"/"medium"; anything else falls into the lowest risk bucket.
	RiskLevel string `json:"riskLevel,omitempty"`

	ApplicabilityRules    *ApplicabilityRules `json:"applicabilityRules,omitempty"`
	RequiredRiskTolerance []string            `json:"requiredRiskTolerance,omitempty"`
}

// ApplicabilityRules constrains which customers a product can be offered to
type ApplicabilityRules struct {
	ApplicableCustomerTypes []string `json:"applicableCustomerTypes,omitempty"`
	OpenBankingRequired     bool     `json:"openBankingRequired,omitempty"`
}

// AppliesTo reports whether the given employment type appears in the
// product's applicable customer types. Absent rules match nothing.
func (p *Product) AppliesTo(employmentType string) bool {
	if p == nil || p.ApplicabilityRules == nil {
		return false
	}
	for _, t := range p.ApplicabilityRules.ApplicableCustomerTypes {
		if t == employmentType {
			return true
		}
	}
	return false
}

// RequiresOpenBanking reports whether the product requires linked
// open-banking data
func (p *Product) RequiresOpenBanking() bool {
	return p != nil && p.ApplicabilityRules != nil && p.ApplicabilityRules.OpenBankingRequired
}

// AcceptsRiskTolerance reports whether the given risk tolerance appears in
// the product's required set. An empty set matches nothing.
func (p *Product) AcceptsRiskTolerance(tolerance string) bool {
	if p == nil {
		return false
	}
	for _, t := range p.RequiredRiskTolerance {
		if t == tolerance {
			return true
		}
	}
	return false
}
