package userhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kangsive/ai-chat-bot/internal/domain/user"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/middlewares"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/requests/userreq"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/responses"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/responses/userres"
)

// UserHandler serves the authenticated account's own profile.
type UserHandler struct {
	users *user.Service
}

func NewUserHandler(users *user.Service) *UserHandler {
	return &UserHandler{users: users}
}

// GetMe returns the current account.
func (h *UserHandler) GetMe(c *gin.Context) {
	u, ok := middlewares.CurrentUser(c)
	if !ok {
		responses.HandleErrorWithStatus(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}
	c.JSON(http.StatusOK, userres.NewUserResponse(u))
}

// UpdateMe changes the current account's email or password.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	u, ok := middlewares.CurrentUser(c)
	if !ok {
		responses.HandleErrorWithStatus(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	var req userreq.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleErrorWithStatus(c, http.StatusBadRequest, err, "invalid request body")
		return
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), u.ID, user.ProfileUpdate{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to update profile")
		return
	}
	c.JSON(http.StatusOK, userres.NewUserResponse(updated))
}
