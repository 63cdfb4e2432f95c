package authhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kangsive/ai-chat-bot/internal/domain/user"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/metrics"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/requests/userreq"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/responses"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/responses/userres"
)

// AuthHandler handles account registration and login.
type AuthHandler struct {
	users  *user.Service
	tokens user.TokenIssuer
	logger zerolog.Logger
}

func NewAuthHandler(users *user.Service, tokens user.TokenIssuer, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a new account and returns it with a fresh token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req userreq.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleErrorWithStatus(c, http.StatusBadRequest, err, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	u, err := h.users.Register(ctx, req.Email, req.Password)
	if err != nil {
		metrics.RecordAuthRequest("register", "failure")
		responses.HandleError(c, err, "failed to register")
		return
	}

	token, expiresAt, err := h.tokens.Issue(ctx, u)
	if err != nil {
		metrics.RecordAuthRequest("register", "failure")
		responses.HandleError(c, err, "failed to issue token")
		return
	}

	metrics.RecordAuthRequest("register", "success")
	c.JSON(http.StatusCreated, userres.NewAuthResponse(u, token, expiresAt))
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req userreq.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleErrorWithStatus(c, http.StatusBadRequest, err, "invalid request body")
		return
	}

	u, token, expiresAt, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		metrics.RecordAuthRequest("login", "failure")
		responses.HandleError(c, err, "failed to login")
		return
	}

	metrics.RecordAuthRequest("login", "success")
	c.JSON(http.StatusOK, userres.NewAuthResponse(u, token, expiresAt))
}
