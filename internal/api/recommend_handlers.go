package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/banking/retirement-service/internal/auth"
)

// Recommend scores the product catalog against the authenticated user's
// profile and returns the categorized recommendations. An optional
// "threshold" query parameter overrides the configured qualifying score.
func (h *Handler) Recommend(c echo.Context) error {
	user := auth.CurrentUser(c)

	threshold := h.engine.Threshold()
	if raw := c.QueryParam("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid threshold parameter")
		}
		threshold = parsed
	}

	set := h.engine.RecommendWithThreshold(c.Request().Context(), user, h.catalog.Products(), threshold)
	h.events.PublishRecommendation(user.ID, threshold, set.Total())

	return c.JSON(http.StatusOK, set)
}
