package handlers

import (
	"net/http"

	"machly/services/user"
	"machly/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the authenticated profile surface.
type UserHandler struct {
	UserService user.UserService
}

func NewUserHandler(svc user.UserService) *UserHandler {
	return &UserHandler{UserService: svc}
}

// MeHandler handles GET /users/me.
func (h *UserHandler) MeHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	usr, err := h.UserService.GetByID(actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usr)
}

// UpdateProfileHandler handles PUT /users/me.
func (h *UserHandler) UpdateProfileHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req user.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid profile payload", err.Error())
		return
	}

	updated, err := h.UserService.UpdateProfile(actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ChangePasswordHandler handles PUT /users/me/password.
func (h *UserHandler) ChangePasswordHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid password payload", err.Error())
		return
	}

	if err := h.UserService.ChangePassword(actor, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// UploadAvatarHandler handles POST /users/me/avatar with a multipart "photo".
func (h *UserHandler) UploadAvatarHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Missing photo file", err.Error())
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Unreadable photo file", err.Error())
		return
	}
	defer file.Close()

	url, err := h.UserService.UploadAvatar(c.Request.Context(), actor, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photoUrl": url})
}
