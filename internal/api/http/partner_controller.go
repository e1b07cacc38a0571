package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vibesync/vibesync/internal/api/http/middleware"
	"github.com/vibesync/vibesync/internal/repository"
	"github.com/vibesync/vibesync/internal/service"
)

type PartnerController struct {
	partners service.PartnerInteractor
}

func NewPartnerController(partners service.PartnerInteractor) *PartnerController {
	return &PartnerController{partners: partners}
}

func (c *PartnerController) Connect(ctx *gin.Context) {
	type request struct {
		PartnerCode string `json:"partnerCode" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	partnerName, err := c.partners.Connect(ctx.Request.Context(), middleware.UserID(ctx), req.PartnerCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyLinked),
			errors.Is(err, service.ErrSelfLink),
			errors.Is(err, service.ErrPartnerTaken):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrLinkCodeNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "partner not found"})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"msg": "Partner connected successfully", "partnerName": partnerName})
}

func (c *PartnerController) Status(ctx *gin.Context) {
	status, err := c.partners.Status(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, status)
}
