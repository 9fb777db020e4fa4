package domain

import (
	"encoding/json"
	"strings"
)

// CustomerProfile represents a customer record as stored in the profile store.
// Every nested section is optional: a sparsely populated profile is valid and
// each accessor below substitutes a safe default for absent structure.
type CustomerProfile struct {
	ID              string           `json:"id,omitempty"`
	PersonalDetails *PersonalDetails `json:"personal_details,omitempty"`

	FinancialProfile     *FinancialProfile     `json:"financial_profile,omitempty"`
	RiskProfile          *RiskProfile          `json:"risk_profile,omitempty"`
	FinancialGoals       *FinancialGoals       `json:"financial_goals,omitempty"`
	ProductEligibility   *ProductEligibility   `json:"product_eligibility,omitempty"`
	RegulatoryCompliance *RegulatoryCompliance `json:"regulatory_compliance,omitempty"`
	ProductOfferings     *ProductOfferings     `json:"product_offerings,omitempty"`

	// Free-form sections carried through the profile API untouched.
	CognitiveAccessibility map[string]any `json:"cognitive_digital_accessibility,omitempty"`
	TaxEfficiency          map[string]any `json:"tax_efficiency,omitempty"`

	// PasswordHash is the bcrypt hash for registered users. Seed files use the
	// same "password" key, so it round-trips through the store but is never
	// exposed by the API handlers.
	PasswordHash string `json:"password,omitempty"`
}

// PersonalDetails holds identity and KYC information
type PersonalDetails struct {
	FirstName      string          `json:"first_name,omitempty"`
	LastName       string          `json:"last_name,omitempty"`
	ContactDetails *ContactDetails `json:"contact_details,omitempty"`
	KYCStatus      *KYCStatus      `json:"kyc_status,omitempty"`
}

// ContactDetails holds contact information
type ContactDetails struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// KYCStatus holds know-your-customer verification flags
type KYCStatus struct {
	UKResident       bool `json:"uk_resident,omitempty"`
	IdentityVerified bool `json:"identity_verified,omitempty"`
}

// FinancialProfile holds income and banking data
type FinancialProfile struct {
	EmploymentType             string  `json:"employment_type,omitempty"`
	DisposableIncomeAfterDebts float64 `json:"disposable_income_after_debts,omitempty"`

	// OpenBankingData signals linked open-banking data by key presence alone.
	// Any value, including an explicit null, counts as present.
	OpenBankingData json.RawMessage `json:"open_banking_data,omitempty"`
}

// RiskProfile holds the customer's risk appetite
type RiskProfile struct {
	RiskTolerance string `json:"risk_tolerance,omitempty"`
}

// FinancialGoals holds retirement goal data
type FinancialGoals struct {
	Timeline string `json:"timeline,omitempty"`
}

// ProductEligibility holds pre-computed eligibility flags
type ProductEligibility struct {
	AgeEligibilityMet bool `json:"age_eligibility_met,omitempty"`
}

// RegulatoryCompliance holds FCA/MiFID assessment outcomes
type RegulatoryCompliance struct {
	FCASuitabilityAssessment bool `json:"fca_suitability_assessment,omitempty"`
	MiFIDIICompliance        bool `json:"mifid_ii_compliance,omitempty"`
}

// ProductOfferings lists products the customer already holds
type ProductOfferings struct {
	ExistingProducts StringList `json:"existing_products,omitempty"`
}

// StringList is a []string that tolerates malformed JSON: any value that is
// not an array of strings decodes to an empty list instead of failing.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler
func (l *StringList) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		*l = nil
		return nil
	}
	*l = values
	return nil
}

// Email returns the contact email, or "" when absent
func (c *CustomerProfile) Email() string {
	if c == nil || c.PersonalDetails == nil || c.PersonalDetails.ContactDetails == nil {
		return ""
	}
	return c.PersonalDetails.ContactDetails.Email
}

// FirstName returns the first name, or "" when absent
func (c *CustomerProfile) FirstName() string {
	if c == nil || c.PersonalDetails == nil {
		return ""
	}
	return c.PersonalDetails.FirstName
}

// LastName returns the last name, or "" when absent
func (c *CustomerProfile) LastName() string {
	if c == nil || c.PersonalDetails == nil {
		return ""
	}
	return c.PersonalDetails.LastName
}

// AgeEligibilityMet reports whether the age eligibility check passed.
// Absent section means false.
func (c *CustomerProfile) AgeEligibilityMet() bool {
	if c == nil || c.ProductEligibility == nil {
		return false
	}
	return c.ProductEligibility.AgeEligibilityMet
}

// UKResident reports whether KYC confirmed UK residency. Absent means false.
func (c *CustomerProfile) UKResident() bool {
	if c == nil || c.PersonalDetails == nil || c.PersonalDetails.KYCStatus == nil {
		return false
	}
	return c.PersonalDetails.KYCStatus.UKResident
}

// IdentityVerified reports whether KYC identity verification passed.
// Absent means false.
func (c *CustomerProfile) IdentityVerified() bool {
	if c == nil || c.PersonalDetails == nil || c.PersonalDetails.KYCStatus == nil {
		return false
	}
	return c.PersonalDetails.KYCStatus.IdentityVerified
}

// EmploymentType returns the employment type, or "" when absent
func (c *CustomerProfile) EmploymentType() string {
	if c == nil || c.FinancialProfile == nil {
		return ""
	}
	return c.FinancialProfile.EmploymentType
}

// DisposableIncome returns disposable income after debts, or 0 when absent
func (c *CustomerProfile) DisposableIncome() float64 {
	if c == nil || c.FinancialProfile == nil {
		return 0
	}
	return c.FinancialProfile.DisposableIncomeAfterDebts
}

// HasOpenBankingData reports whether the profile carries linked open-banking
// data. Presence of the key counts, whatever the value.
func (c *CustomerProfile) HasOpenBankingData() bool {
	if c == nil || c.FinancialProfile == nil {
		return false
	}
	return len(c.FinancialProfile.OpenBankingData) > 0
}

// RiskTolerance returns the declared risk tolerance, or "" when absent
func (c *CustomerProfile) RiskTolerance() string {
	if c == nil || c.RiskProfile == nil {
		return ""
	}
	return c.RiskProfile.RiskTolerance
}

// FCASuitabilityPassed reports whether the FCA suitability assessment passed.
// Absent means false.
func (c *CustomerProfile) FCASuitabilityPassed() bool {
	if c == nil || c.RegulatoryCompliance == nil {
		return false
	}
	return c.RegulatoryCompliance.FCASuitabilityAssessment
}

// MiFIDCompliant reports whether MiFID II compliance is confirmed.
// Absent means false.
func (c *CustomerProfile) MiFIDCompliant() bool {
	if c == nil || c.RegulatoryCompliance == nil {
		return false
	}
	return c.RegulatoryCompliance.MiFIDIICompliance
}

// GoalTimeline returns the financial goal timeline, or "" when absent
func (c *CustomerProfile) GoalTimeline() string {
	if c == nil || c.FinancialGoals == nil {
		return ""
	}
	return c.FinancialGoals.Timeline
}

// HasLongTermGoal reports whether the goal timeline is "long-term",
// compared case-insensitively
func (c *CustomerProfile) HasLongTermGoal() bool {
	return strings.ToLower(c.GoalTimeline()) == "long-term"
}

// ExistingProducts returns the names of products the customer already holds,
// or an empty list when absent
func (c *CustomerProfile) ExistingProducts() []string {
	if c == nil || c.ProductOfferings == nil {
		return nil
	}
	return c.ProductOfferings.ExistingProducts
}

// HoldsProduct reports whether the customer already holds the named product
func (c *CustomerProfile) HoldsProduct(name string) bool {
	for _, existing := range c.ExistingProducts() {
		if existing == name {
			return true
		}
	}
	return false
}
