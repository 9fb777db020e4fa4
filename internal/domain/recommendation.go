package domain

import "strings"

// RiskCategory partitions recommended products by declared product risk
type RiskCategory string

const (
	CategoryAggressive RiskCategory = "aggressive"
	CategoryModerate   RiskCategory = "moderate"
	CategoryLowRisk    RiskCategory = "low_risk"
)

// CategorizeRiskLevel maps a product risk level onto a risk category.
// The comparison is case-insensitive; unrecognized or empty input yields
// the lowest risk bucket. Total: every input maps to exactly one category.
func CategorizeRiskLevel(riskLevel string) RiskCategory {
	switch strings.ToLower(riskLevel) {
	case "high":
		return CategoryAggressive
	case "medium":
		return CategoryModerate
	default:
		return CategoryLowRisk
	}
}

// Recommendation is one qualifying product, annotated with its suitability
// score and the reasons it missed criteria (or the sentinel when none apply)
type Recommendation struct {
	ProductID   string   `json:"productId"`
	ProductName string   `json:"productName"`
	Score       int      `json:"score"`
	Confidence  string   `json:"confidence"`
	Reasoning   []string `json:"reasoning"`
}

// RecommendationSet is the fixed three-way partition of qualifying products.
// All three slices are always present in serialized output, each preserving
// catalog order; the type deliberately cannot grow a fourth category.
type RecommendationSet struct {
	Aggressive []Recommendation `json:"aggressive"`
	Moderate   []Recommendation `json:"moderate"`
	LowRisk    []Recommendation `json:"low_risk"`
}

// NewRecommendationSet returns a set with all three categories empty but
// non-nil, so each serializes as [] rather than null
func NewRecommendationSet() *RecommendationSet {
	return &RecommendationSet{
		Aggressive: []Recommendation{},
		Moderate:   []Recommendation{},
		LowRisk:    []Recommendation{},
	}
}

// Add appends a recommendation to the given category
func (s *RecommendationSet) Add(category RiskCategory, rec Recommendation) {
	switch category {
	case CategoryAggressive:
		s.Aggressive = append(s.Aggressive, rec)
	case CategoryModerate:
		s.Moderate = append(s.Moderate, rec)
	default:
		s.LowRisk = append(s.LowRisk, rec)
	}
}

// Total returns the number of recommendations across all categories
func (s *RecommendationSet) Total() int {
	return len(s.Aggressive) + len(s.Moderate) + len(s.LowRisk)
}
