package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/banking/retirement-service/internal/domain"
	"github.com/banking/retirement-service/internal/store"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Token     string `json:"token"`
}

// Register creates a new customer with an empty profile and returns a
// session token
func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}

	hash, err := h.auth.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to register user")
	}

	profile := &domain.CustomerProfile{
		ID: uuid.NewString(),
		PersonalDetails: &domain.PersonalDetails{
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			ContactDetails: &domain.ContactDetails{Email: req.Email},
		},
		PasswordHash: hash,
	}

	if err := h.profiles.Create(c.Request().Context(), profile); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "User with this email already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to register user")
	}

	token, err := h.auth.IssueToken(profile.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue token")
	}

	h.log.UserRegistered(profile.ID, req.Email)

	return c.JSON(http.StatusCreated, sessionResponse{
		UserID:    profile.ID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Token:     token,
	})
}

// Login verifies credentials and returns a session token
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing email or password")
	}

	user, err := h.profiles.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	if err := h.auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.auth.IssueToken(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue token")
	}

	return c.JSON(http.StatusOK, sessionResponse{
		UserID:    user.ID,
		Email:     user.Email(),
		FirstName: user.FirstName(),
		LastName:  user.LastName(),
		Token:     token,
	})
}
