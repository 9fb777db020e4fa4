package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banking/retirement-service/internal/auth"
	"github.com/banking/retirement-service/internal/chat"
	"github.com/banking/retirement-service/internal/config"
	"github.com/banking/retirement-service/internal/domain"
	"github.com/banking/retirement-service/internal/pkg/logger"
	"github.com/banking/retirement-service/internal/recommender"
	"github.com/banking/retirement-service/internal/store"
)

type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, _ domain.LLMConfig, _ []domain.Message, message string) (string, error) {
	return "You asked: " + message, nil
}

type fixture struct {
	e *echo.Echo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNop()

	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "products.json")
	require.NoError(t, os.WriteFile(catalogPath, []byte(`[
		{"productId":"p-sipp","productName":"SIPP","riskLevel":"High",
		 "applicabilityRules":{"applicableCustomerTypes":["employed"],"openBankingRequired":false},
		 "requiredRiskTolerance":["high"]},
		{"productId":"p-cash","productName":"Cash ISA","riskLevel":"low",
		 "applicabilityRules":{"applicableCustomerTypes":["employed","retired"],"openBankingRequired":false},
		 "requiredRiskTolerance":["low","medium","high"]}
	]`), 0o644))

	catalog, err := store.LoadCatalog(catalogPath, log)
	require.NoError(t, err)

	profiles, err := store.LoadFileProfileStore(filepath.Join(dir, "absent"), log)
	require.NoError(t, err)

	authSvc := auth.NewService(&config.AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: 4,
	})

	chatSvc := chat.NewService(echoGenerator{}, chat.NewMemoryConversationStore(), nil, nil, &config.LLMConfig{
		Provider:    "azure_openai",
		ModelName:   "gpt-4o",
		Temperature: 0.7,
	}, log)

	engine := recommender.NewEngine(50, log)

	e := echo.New()
	NewHandler(profiles, catalog, authSvc, chatSvc, engine, nil, log).RegisterRoutes(e)

	return &fixture{e: e}
}

func (f *fixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) register(t *testing.T, email string) sessionResponse {
	t.Helper()
	rec := f.do(http.MethodPost, "/api/auth/register", "",
		`{"email":"`+email+`","password":"pw123456","firstName":"Ann","lastName":"Smith"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var session sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	return session
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	session := f.register(t, "ann@example.com")
	assert.NotEmpty(t, session.UserID)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "ann@example.com", session.Email)
	assert.Equal(t, "Ann", session.FirstName)

	// Duplicate registration is rejected.
	rec := f.do(http.MethodPost, "/api/auth/register", "",
		`{"email":"ann@example.com","password":"other","firstName":"A","lastName":"B"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodPost, "/api/auth/login", "",
		`{"email":"ann@example.com","password":"pw123456"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, "/api/auth/login", "",
		`{"email":"ann@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/api/auth/register", "", `{"email":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileLifecycle(t *testing.T) {
	f := newFixture(t)
	session := f.register(t, "ann@example.com")

	rec := f.do(http.MethodGet, "/api/profile", session.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var profile map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, session.UserID, profile["user_id"])
	assert.NotContains(t, profile, "password")
	// Every section key is present even on a fresh profile.
	for _, section := range []string{
		"personal_details", "financial_profile", "risk_profile", "financial_goals",
		"product_eligibility", "regulatory_compliance", "cognitive_digital_accessibility",
		"product_offerings", "tax_efficiency",
	} {
		assert.Contains(t, profile, section)
	}

	rec = f.do(http.MethodPut, "/api/profile", session.Token,
		`{"risk_profile":{"risk_tolerance":"high"},"financial_goals":{"timeline":"long-term"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Profile updated successfully")

	rec = f.do(http.MethodPut, "/api/profile", session.Token, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetProfileUnauth(t *testing.T) {
	f := newFixture(t)
	session := f.register(t, "ann@example.com")

	rec := f.do(http.MethodGet, "/api/unauth/profile?user_id="+session.UserID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"password"`)

	rec = f.do(http.MethodGet, "/api/unauth/profile", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/unauth/profile?user_id=ghost", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecommendEndpoint(t *testing.T) {
	f := newFixture(t)
	session := f.register(t, "ann@example.com")

	// Fill in enough profile to qualify the low-risk product at the default
	// threshold: eligibility 15 + tolerance 20 + income 10 + baseline 20 = 65.
	rec := f.do(http.MethodPut, "/api/profile", session.Token, `{
		"personal_details":{"kyc_status":{"uk_resident":true}},
		"product_eligibility":{"age_eligibility_met":true},
		"financial_profile":{"employment_type":"employed","disposable_income_after_debts":800},
		"risk_profile":{"risk_tolerance":"medium"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/recommend", session.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var set domain.RecommendationSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &set))
	assert.Empty(t, set.Aggressive, "tolerance mismatch keeps the SIPP below threshold")
	require.Len(t, set.LowRisk, 1)
	assert.Equal(t, "p-cash", set.LowRisk[0].ProductID)
	assert.Equal(t, 65, set.LowRisk[0].Score)

	// A raised threshold excludes everything.
	rec = f.do(http.MethodGet, "/api/recommend?threshold=90", session.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &set))
	assert.Equal(t, 0, set.Total())

	rec = f.do(http.MethodGet, "/api/recommend?threshold=abc", session.Token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatEndpoints(t *testing.T) {
	f := newFixture(t)
	session := f.register(t, "ann@example.com")

	rec := f.do(http.MethodPost, "/api/chat/message", session.Token,
		`{"message":"How much should I save?"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var reply chatMessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "You asked: How much should I save?", reply.Response)
	assert.Len(t, reply.SuggestedQuestions, 4)

	rec = f.do(http.MethodGet, "/api/chat/history?conversation_id="+reply.ConversationID, session.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "How much should I save?")

	// Another user cannot read the transcript.
	other := f.register(t, "bob@example.com")
	rec = f.do(http.MethodGet, "/api/chat/history?conversation_id="+reply.ConversationID, other.Token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPost, "/api/chat/message", session.Token, `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/chat/history?conversation_id=ghost", session.Token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLLMConfigEndpoints(t *testing.T) {
	f := newFixture(t)
	session := f.register(t, "ann@example.com")

	rec := f.do(http.MethodGet, "/api/config/llm", session.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg domain.LLMConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, "azure_openai", cfg.Provider)

	rec = f.do(http.MethodPut, "/api/config/llm", session.Token,
		`{"provider":"anthropic","temperature":0.3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "gpt-4o", cfg.ModelName)
	assert.Equal(t, 0.3, cfg.Temperature)

	rec = f.do(http.MethodPut, "/api/config/llm", session.Token, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
