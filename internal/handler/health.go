package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/license-admin-console/internal/domain/session"
	"github.com/makkenzo/license-admin-console/internal/service"
	"go.uber.org/zap"
)

// Pinger is implemented by token stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	tokens  session.TokenStore
	session *service.SessionService
	logger  *zap.Logger
}

func NewHealthHandler(tokens session.TokenStore, sess *service.SessionService, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		tokens:  tokens,
		session: sess,
		logger:  logger.Named("HealthHandler"),
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	storeStatus := "ok"
	if p, ok := h.tokens.(Pinger); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			storeStatus = "error"
			h.logger.Error("Health check: token store ping failed", zap.Error(err))
		}
	}

	body := gin.H{
		"status":  "ok",
		"session": h.session.State(),
		"dependencies": gin.H{
			"token_store": storeStatus,
		},
	}
	if storeStatus == "error" {
		body["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
