package handlers

import (
	"net/http"

	"machly/services/user"
	"machly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	UserService user.UserService
}

func NewAuthHandler(svc user.UserService) *AuthHandler {
	return &AuthHandler{UserService: svc}
}

// RegisterHandler handles POST /auth/register.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid registration payload", err.Error())
		return
	}

	created, err := h.UserService.Register(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// LoginHandler handles POST /auth/login.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid login payload", err.Error())
		return
	}

	resp, err := h.UserService.Authenticate(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LogoutHandler handles POST /auth/logout; it revokes the presented token.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	token := c.GetString("token")
	if token == "" {
		utils.JSONError(c, http.StatusUnauthorized, "Not authenticated", "")
		return
	}
	if err := h.UserService.Logout(c.Request.Context(), token); err != nil {
		utils.GetLogger().Error("logout failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Logout failed", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
