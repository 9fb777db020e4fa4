package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banking/retirement-service/internal/domain"
	"github.com/banking/retirement-service/internal/store"
)

type stubProfileStore struct {
	profiles map[string]*domain.CustomerProfile
}

func (s *stubProfileStore) GetByID(_ context.Context, id string) (*domain.CustomerProfile, error) {
	if p, ok := s.profiles[id]; ok {
		return p, nil
	}
	return nil, store.ErrNotFound
}

func (s *stubProfileStore) GetByEmail(context.Context, string) (*domain.CustomerProfile, error) {
	return nil, store.ErrNotFound
}

func (s *stubProfileStore) Create(context.Context, *domain.CustomerProfile) error {
	return nil
}

func (s *stubProfileStore) Update(context.Context, string, map[string]json.RawMessage) (*domain.CustomerProfile, error) {
	return nil, store.ErrNotFound
}

func invoke(t *testing.T, mw echo.MiddlewareFunc, authorization string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		user := CurrentUser(c)
		require.NotNil(t, user)
		return c.String(http.StatusOK, user.ID)
	})
	return rec, handler(c)
}

func TestMiddlewareResolvesUser(t *testing.T) {
	svc := newTestService(time.Hour)
	profiles := &stubProfileStore{profiles: map[string]*domain.CustomerProfile{
		"user-1": {ID: "user-1"},
	}}

	token, err := svc.IssueToken("user-1")
	require.NoError(t, err)

	rec, err := invoke(t, Middleware(svc, profiles), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestMiddlewareRejections(t *testing.T) {
	svc := newTestService(time.Hour)
	expired := newTestService(-time.Minute)
	profiles := &stubProfileStore{profiles: map[string]*domain.CustomerProfile{}}

	validToken, err := svc.IssueToken("user-unknown")
	require.NoError(t, err)
	expiredToken, err := expired.IssueToken("user-1")
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		wantMessage   string
	}{
		{"missing header", "", "Authentication token is missing"},
		{"wrong scheme", "Basic abc", "Authentication token is missing"},
		{"garbage token", "Bearer garbage", "Invalid token"},
		{"expired token", "Bearer " + expiredToken, "Token has expired"},
		{"unknown user", "Bearer " + validToken, "User not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := invoke(t, Middleware(svc, profiles), tt.authorization)
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
			assert.Equal(t, tt.wantMessage, httpErr.Message)
		})
	}
}
