// Package api exposes the service over HTTP.
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/banking/retirement-service/internal/auth"
	"github.com/banking/retirement-service/internal/chat"
	"github.com/banking/retirement-service/internal/events"
	"github.com/banking/retirement-service/internal/pkg/logger"
	"github.com/banking/retirement-service/internal/recommender"
	"github.com/banking/retirement-service/internal/store"
)

// Handler carries the collaborators the HTTP routes dispatch into
type Handler struct {
	profiles store.ProfileStore
	catalog  *store.Catalog
	auth     *auth.Service
	chat     *chat.Service
	engine   *recommender.Engine
	events   *events.Publisher
	log      *logger.Logger
}

// NewHandler creates the API handler
func NewHandler(
	profiles store.ProfileStore,
	catalog *store.Catalog,
	authSvc *auth.Service,
	chatSvc *chat.Service,
	engine *recommender.Engine,
	publisher *events.Publisher,
	log *logger.Logger,
) *Handler {
	return &Handler{
		profiles: profiles,
		catalog:  catalog,
		auth:     authSvc,
		chat:     chatSvc,
		engine:   engine,
		events:   publisher,
		log:      log.Named("api"),
	}
}

// RegisterRoutes mounts all API routes on the echo instance
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	authRequired := auth.Middleware(h.auth, h.profiles)

	api := e.Group("/api")

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/unauth/profile", h.GetProfileUnauth)

	api.GET("/profile", h.GetProfile, authRequired)
	api.PUT("/profile", h.UpdateProfile, authRequired)
	api.GET("/recommend", h.Recommend, authRequired)
	api.POST("/chat/message", h.SendMessage, authRequired)
	api.GET("/chat/history", h.GetChatHistory, authRequired)
	api.GET("/config/llm", h.GetLLMConfig, authRequired)
	api.PUT("/config/llm", h.UpdateLLMConfig, authRequired)
}
