package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/peterkyalo/stock-inventory-sub002/internal/application"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/errors"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/logging"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/middleware"
)

// AuthService is the application surface the auth handlers depend on
type AuthService interface {
	Login(ctx context.Context, cmd application.LoginCommand) (*application.LoginResultDTO, error)
}

// AuthHandlers contains handlers for operator authentication
type AuthHandlers struct {
	service AuthService
	logger  *logging.Logger
}

// NewAuthHandlers creates a new AuthHandlers
func NewAuthHandlers(service AuthService, logger *logging.Logger) *AuthHandlers {
	return &AuthHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers auth routes on the router
func (h *AuthHandlers) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
	}
}

// Login exchanges operator credentials for a bearer token
func (h *AuthHandlers) Login(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.LoginCommand{
		Username: req.Username,
		Password: req.Password,
	}

	result, err := h.service.Login(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
