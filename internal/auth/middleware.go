package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/banking/retirement-service/internal/domain"
	"github.com/banking/retirement-service/internal/store"
)

// userContextKey is the echo context key the middleware stores the resolved
// customer under.
const userContextKey = "current_user"

// Middleware returns an echo middleware that requires a valid bearer token
// and resolves the token's user against the profile store.
func Middleware(svc *Service, profiles store.ProfileStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token := ""
			if strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication token is missing")
			}

			userID, err := svc.VerifyToken(token)
			if err != nil {
				if errors.Is(err, ErrExpiredToken) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			user, err := profiles.GetByID(c.Request().Context(), userID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the customer resolved by Middleware, or nil outside an
// authenticated route.
func CurrentUser(c echo.Context) *domain.CustomerProfile {
	user, _ := c.Get(userContextKey).(*domain.CustomerProfile)
	return user
}
