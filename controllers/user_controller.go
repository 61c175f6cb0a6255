package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	middlewares "staycation/middleware"
	"staycation/services"
)

type UserController struct {
	Users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// GetProfile godoc
// @Summary Own profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /user/profile [get]
func (u *UserController) GetProfile(c *gin.Context) {
	user, err := u.Users.GetByID(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", user)
}

// UpdateProfile godoc
// @Summary Update name and phone
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body services.UpdateProfileInput true "Profile"
// @Success 200 {object} map[string]interface{}
// @Router /user/profile [put]
func (u *UserController) UpdateProfile(c *gin.Context) {
	var in services.UpdateProfileInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := u.Users.UpdateProfile(c.Request.Context(), middlewares.CurrentUserID(c), in)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "profile updated", user)
}

// ChangePassword godoc
// @Summary Change password
// @Tags users
// @Security BearerAuth
// @Accept json
// @Param body body ChangePasswordRequest true "Passwords"
// @Success 200 {object} map[string]interface{}
// @Router /user/password [put]
func (u *UserController) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	err := u.Users.ChangePassword(c.Request.Context(), middlewares.CurrentUserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "password changed", nil)
}

// UploadAvatar godoc
// @Summary Upload avatar image
// @Tags users
// @Security BearerAuth
// @Accept multipart/form-data
// @Param file formData file true "Image"
// @Success 200 {object} map[string]interface{}
// @Router /user/avatar [post]
func (u *UserController) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.Error(services.BadRequest("file is required"))
		return
	}
	user, err := u.Users.UpdateAvatar(c.Request.Context(), middlewares.CurrentUserID(c), file)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "avatar updated", user)
}
