package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	middlewares "staycation/middleware"
	"staycation/models"
	"staycation/services"
)

type AuthController struct {
	Auth         *services.AuthService
	Users        *services.UserService
	SecureCookie bool
}

func NewAuthController(auth *services.AuthService, users *services.UserService, secureCookie bool) *AuthController {
	return &AuthController{Auth: auth, Users: users, SecureCookie: secureCookie}
}

type RegisterEmailRequest struct {
	Email string      `json:"email" binding:"required,email"`
	Name  string      `json:"name" binding:"max=100"`
	Role  models.Role `json:"role"`
}

type VerifyEmailRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type GoogleLoginRequest struct {
	IDToken string      `json:"idToken" binding:"required"`
	Role    models.Role `json:"role"`
}

func (a *AuthController) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.TokenCookie, token, int(a.Auth.TokenTTL().Seconds()), "/", "", a.SecureCookie, true)
}

func (a *AuthController) signedIn(c *gin.Context, mess string, user *models.User, token string) {
	a.setTokenCookie(c, token)
	respond(c, http.StatusOK, mess, gin.H{
		"user_info":   user,
		"accessToken": token,
	})
}

// Register godoc
// @Summary Register with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Account"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /auth/register [post]
func (a *AuthController) Register(c *gin.Context) {
	var in services.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := a.Auth.Register(c.Request.Context(), in)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "registered, check your email to verify the account", user)
}

// RegisterEmail godoc
// @Summary Register with email only, the password is set on verification
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RegisterEmailRequest true "Email"
// @Success 201 {object} map[string]interface{}
// @Router /auth/register/email [post]
func (a *AuthController) RegisterEmail(c *gin.Context) {
	var req RegisterEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := a.Auth.RegisterEmail(c.Request.Context(), req.Email, req.Name, req.Role)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "check your email to finish registration", user)
}

// VerifyEmail godoc
// @Summary Verify an email token and sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body VerifyEmailRequest true "Token"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /auth/verify-email [post]
func (a *AuthController) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	user, token, err := a.Auth.VerifyEmail(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		c.Error(err)
		return
	}
	a.signedIn(c, "email verified", user, token)
}

// ResendVerification godoc
// @Summary Send a new verification email
// @Tags auth
// @Accept json
// @Param body body EmailRequest true "Email"
// @Success 200 {object} map[string]interface{}
// @Router /auth/resend-verification [post]
func (a *AuthController) ResendVerification(c *gin.Context) {
	var req EmailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := a.Auth.ResendVerification(c.Request.Context(), req.Email); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "if the account exists and is unverified, a new email was sent", nil)
}

// Login godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/login [post]
func (a *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	user, token, err := a.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}
	a.signedIn(c, "signed in", user, token)
}

// Logout godoc
// @Summary Clear the auth cookie
// @Tags auth
// @Success 200 {object} map[string]interface{}
// @Router /auth/logout [post]
func (a *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.TokenCookie, "", -1, "/", "", a.SecureCookie, true)
	respond(c, http.StatusOK, "signed out", nil)
}

// ForgotPassword godoc
// @Summary Email a password reset link
// @Tags auth
// @Accept json
// @Param body body EmailRequest true "Email"
// @Success 200 {object} map[string]interface{}
// @Router /auth/forgot-password [post]
func (a *AuthController) ForgotPassword(c *gin.Context) {
	var req EmailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := a.Auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "if the account exists, a reset link was sent", nil)
}

// ResetPassword godoc
// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Param body body ResetPasswordRequest true "Token and password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /auth/reset-password [post]
func (a *AuthController) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := a.Auth.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "password updated", nil)
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /auth/me [get]
func (a *AuthController) Me(c *gin.Context) {
	user, err := a.Users.GetByID(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", user)
}

// GoogleLogin godoc
// @Summary Sign in with a Google ID token
// @Tags oauth
// @Accept json
// @Produce json
// @Param body body GoogleLoginRequest true "ID token"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /oauth/google [post]
func (a *AuthController) GoogleLogin(c *gin.Context) {
	var req GoogleLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	user, token, err := a.Auth.GoogleLogin(c.Request.Context(), req.IDToken, req.Role)
	if err != nil {
		c.Error(err)
		return
	}
	a.signedIn(c, "signed in with google", user, token)
}
