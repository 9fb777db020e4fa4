package recommender

import (
	"fmt"

	"github.com/banking/retirement-service/internal/domain"
)

// Point weights for the suitability predicates. The total reachable score is
// 100: 15+20+15+10+10+10 across the predicates plus the 20-point baseline.
const (
	pointsEligibility   = 15 // age + UK residency + employment type match
	pointsRiskTolerance = 20
	pointsCompliance    = 15 // identity + FCA suitability + MiFID II
	pointsOpenBanking   = 10
	pointsIncome        = 10
	pointsLongTermGoal  = 10
	pointsBaseline      = 20 // unconditional award for every scored product
)

// minDisposableIncome is the qualifying disposable income after debts, in
// currency units.
const minDisposableIncome = 500

// Reasons recorded for the two predicates that explain their failure. The
// eligibility, compliance and open-banking checks silently award zero on
// failure with no recorded reason; that asymmetry is observed policy, kept
// as-is.
const (
	reasonRiskTolerance = "Risk tolerance does not match"
	reasonLowIncome     = "Low disposable income"
	reasonAllCriteria   = "Meets all major criteria"
)

// scoreProduct evaluates one non-excluded product against the customer and
// returns the accumulated suitability score with the ordered reason list.
// Missing profile structure degrades to zero awarded points, never an error.
func scoreProduct(customer *domain.CustomerProfile, product *domain.Product) (int, []string) {
	score := 0
	var reasons []string

	if customer.AgeEligibilityMet() && customer.UKResident() && product.AppliesTo(customer.EmploymentType()) {
		score += pointsEligibility
	}

	if product.AcceptsRiskTolerance(customer.RiskTolerance()) {
		score += pointsRiskTolerance
	} else {
		reasons = append(reasons, reasonRiskTolerance)
	}

	if customer.IdentityVerified() && customer.FCASuitabilityPassed() && customer.MiFIDCompliant() {
		score += pointsCompliance
	}

	if product.RequiresOpenBanking() && customer.HasOpenBankingData() {
		score += pointsOpenBanking
	}

	if customer.DisposableIncome() >= minDisposableIncome {
		score += pointsIncome
	} else {
		reasons = append(reasons, reasonLowIncome)
	}

	if customer.HasLongTermGoal() {
		score += pointsLongTermGoal
	}

	score += pointsBaseline

	if len(reasons) == 0 {
		reasons = []string{reasonAllCriteria}
	}

	return score, reasons
}

// formatConfidence renders the integer score as a percentage display string.
func formatConfidence(score int) string {
	return fmt.Sprintf("%d%%", score)
}
