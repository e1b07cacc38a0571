package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vibesync/vibesync/internal/api/http/converter"
	"github.com/vibesync/vibesync/internal/api/http/middleware"
	"github.com/vibesync/vibesync/internal/domain"
	"github.com/vibesync/vibesync/internal/repository"
	"github.com/vibesync/vibesync/internal/service"
)

type AuthController struct {
	auth service.AuthInteractor
}

func NewAuthController(auth service.AuthInteractor) *AuthController {
	return &AuthController{auth: auth}
}

func (c *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	user, token, err := c.auth.Register(ctx.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserEmailExists) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "user already exists"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token, "user": converter.UserToApi(user)})
}

func (c *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, token, err := c.auth.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token, "user": converter.UserToApi(user)})
}

func (c *AuthController) CheckEmail(ctx *gin.Context) {
	type request struct {
		Email string `json:"email" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	exists, err := c.auth.EmailExists(ctx.Request.Context(), req.Email)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (c *AuthController) GetUser(ctx *gin.Context) {
	user, err := c.auth.GetUser(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": converter.UserToApi(user)})
}

func (c *AuthController) UpdateOnboarding(ctx *gin.Context) {
	var req domain.Onboarding
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := c.auth.UpdateOnboarding(ctx.Request.Context(), middleware.UserID(ctx), req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": converter.UserToApi(user)})
}

func (c *AuthController) UpdateMood(ctx *gin.Context) {
	type request struct {
		Mood      domain.Mood `json:"mood"`
		Intensity int         `json:"intensity"`
		Privacy   *bool       `json:"privacy"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := c.auth.UpdateMood(ctx.Request.Context(), middleware.UserID(ctx), req.Mood, req.Intensity, req.Privacy)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMood), errors.Is(err, service.ErrInvalidIntensity):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrUserNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": converter.UserToApi(user)})
}

func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	type request struct {
		Email string `json:"email" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	link, err := c.auth.ForgotPassword(ctx.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "user with this email does not exist"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Demo mode: the link goes straight back in the response instead of
	// out through a mail service.
	ctx.JSON(http.StatusOK, gin.H{"success": true, "msg": "Reset link generated!", "demoLink": link})
}

func (c *AuthController) ResetPassword(ctx *gin.Context) {
	type request struct {
		Password string `json:"password" binding:"required,min=6"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := c.auth.ResetPassword(ctx.Request.Context(), ctx.Param("token"), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid token"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": "Password updated"})
}
