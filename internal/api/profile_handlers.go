package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/banking/retirement-service/internal/auth"
	"github.com/banking/retirement-service/internal/domain"
	"github.com/banking/retirement-service/internal/store"
)

// profileResponse is the full profile view returned to the authenticated
// owner. Every section is present, empty when unset, and the password hash
// is never included.
type profileResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	PersonalDetails        any `json:"personal_details"`
	FinancialProfile       any `json:"financial_profile"`
	RiskProfile            any `json:"risk_profile"`
	FinancialGoals         any `json:"financial_goals"`
	ProductEligibility     any `json:"product_eligibility"`
	RegulatoryCompliance   any `json:"regulatory_compliance"`
	CognitiveAccessibility any `json:"cognitive_digital_accessibility"`
	ProductOfferings       any `json:"product_offerings"`
	TaxEfficiency          any `json:"tax_efficiency"`
}

func newProfileResponse(user *domain.CustomerProfile) profileResponse {
	return profileResponse{
		UserID:                 user.ID,
		Email:                  user.Email(),
		FirstName:              user.FirstName(),
		LastName:               user.LastName(),
		PersonalDetails:        sectionOrEmpty(user.PersonalDetails),
		FinancialProfile:       sectionOrEmpty(user.FinancialProfile),
		RiskProfile:            sectionOrEmpty(user.RiskProfile),
		FinancialGoals:         sectionOrEmpty(user.FinancialGoals),
		ProductEligibility:     sectionOrEmpty(user.ProductEligibility),
		RegulatoryCompliance:   sectionOrEmpty(user.RegulatoryCompliance),
		CognitiveAccessibility: mapOrEmpty(user.CognitiveAccessibility),
		ProductOfferings:       sectionOrEmpty(user.ProductOfferings),
		TaxEfficiency:          mapOrEmpty(user.TaxEfficiency),
	}
}

// sectionOrEmpty substitutes an empty object for an absent profile section
// so consumers always see every section key
func sectionOrEmpty[T any](section *T) any {
	if section == nil {
		return map[string]any{}
	}
	return section
}

func mapOrEmpty(section map[string]any) any {
	if section == nil {
		return map[string]any{}
	}
	return section
}

// GetProfile returns the authenticated user's full profile
func (h *Handler) GetProfile(c echo.Context) error {
	user := auth.CurrentUser(c)
	return c.JSON(http.StatusOK, newProfileResponse(user))
}

// GetProfileUnauth returns a profile by ID without authentication; used by
// the internal agent service to read customer context
func (h *Handler) GetProfileUnauth(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing user_id parameter")
	}

	user, err := h.profiles.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load profile")
	}

	return c.JSON(http.StatusOK, newProfileResponse(user))
}

// UpdateProfile merges the allowed sections of the request body into the
// authenticated user's profile
func (h *Handler) UpdateProfile(c echo.Context) error {
	user := auth.CurrentUser(c)

	var patch map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&patch); err != nil || len(patch) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No data provided")
	}

	updated, err := h.profiles.Update(c.Request().Context(), user.ID, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
	}

	h.events.PublishProfileUpdated(user.ID, patchedSections(patch))

	return c.JSON(http.StatusOK, map[string]any{
		"user_id":   updated.ID,
		"email":     updated.Email(),
		"firstName": updated.FirstName(),
		"lastName":  updated.LastName(),
		"message":   "Profile updated successfully",
	})
}

func patchedSections(patch map[string]json.RawMessage) []string {
	sections := make([]string, 0, len(patch))
	for section := range patch {
		sections = append(sections, section)
	}
	return sections
}
