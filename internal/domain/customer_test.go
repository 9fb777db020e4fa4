package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessorsOnEmptyProfile(t *testing.T) {
	c := &CustomerProfile{}

	assert.Empty(t, c.Email())
	assert.Empty(t, c.FirstName())
	assert.Empty(t, c.LastName())
	assert.False(t, c.AgeEligibilityMet())
	assert.False(t, c.UKResident())
	assert.False(t, c.IdentityVerified())
	assert.Empty(t, c.EmploymentType())
	assert.Zero(t, c.DisposableIncome())
	assert.False(t, c.HasOpenBankingData())
	assert.Empty(t, c.RiskTolerance())
	assert.False(t, c.FCASuitabilityPassed())
	assert.False(t, c.MiFIDCompliant())
	assert.Empty(t, c.GoalTimeline())
	assert.False(t, c.HasLongTermGoal())
	assert.Empty(t, c.ExistingProducts())
	assert.False(t, c.HoldsProduct("anything"))
}

func TestHasOpenBankingDataKeyPresence(t *testing.T) {
	var c CustomerProfile
	require.NoError(t, json.Unmarshal([]byte(`{"financial_profile":{"open_banking_data":null}}`), &c))
	assert.True(t, c.HasOpenBankingData(), "explicit null still counts as present")

	var absent CustomerProfile
	require.NoError(t, json.Unmarshal([]byte(`{"financial_profile":{}}`), &absent))
	assert.False(t, absent.HasOpenBankingData())
}

func TestHasLongTermGoalCaseInsensitive(t *testing.T) {
	c := &CustomerProfile{FinancialGoals: &FinancialGoals{Timeline: "Long-Term"}}
	assert.True(t, c.HasLongTermGoal())

	c.FinancialGoals.Timeline = "medium-term"
	assert.False(t, c.HasLongTermGoal())
}

func TestHoldsProduct(t *testing.T) {
	c := &CustomerProfile{
		ProductOfferings: &ProductOfferings{
			ExistingProducts: StringList{"Workplace Pension", "Cash ISA"},
		},
	}

	assert.True(t, c.HoldsProduct("Cash ISA"))
	assert.False(t, c.HoldsProduct("cash isa"), "product names match exactly")
	assert.False(t, c.HoldsProduct("SIPP"))
}

func TestStringListTolerantUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"array", `["a","b"]`, []string{"a", "b"}},
		{"empty array", `[]`, []string{}},
		{"string scalar", `"not-a-list"`, nil},
		{"object", `{"k":"v"}`, nil},
		{"number", `42`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l StringList
			require.NoError(t, json.Unmarshal([]byte(tt.input), &l))
			assert.Equal(t, StringList(tt.want), l)
		})
	}
}

func TestProductNilSafeRules(t *testing.T) {
	p := &Product{ID: "p1", Name: "Bare Product"}

	assert.False(t, p.AppliesTo("employed"))
	assert.False(t, p.RequiresOpenBanking())
	assert.False(t, p.AcceptsRiskTolerance("high"))

	p.ApplicabilityRules = &ApplicabilityRules{
		ApplicableCustomerTypes: []string{"retired"},
		OpenBankingRequired:     true,
	}
	p.RequiredRiskTolerance = []string{"low", "medium"}

	assert.True(t, p.AppliesTo("retired"))
	assert.False(t, p.AppliesTo("employed"))
	assert.True(t, p.RequiresOpenBanking())
	assert.True(t, p.AcceptsRiskTolerance("medium"))
}

func TestPasswordRoundTripsButStaysInternal(t *testing.T) {
	raw := `{"id":"u1","password":"$2a$10$hash","personal_details":{"first_name":"Ann"}}`

	var c CustomerProfile
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	assert.Equal(t, "$2a$10$hash", c.PasswordHash)

	out, err := json.Marshal(&c)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"password"`)
}
