package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vibesync/vibesync/internal/api/http/middleware"
	"github.com/vibesync/vibesync/internal/service"
)

type ChartController struct {
	insights service.InsightInteractor
}

func NewChartController(insights service.InsightInteractor) *ChartController {
	return &ChartController{insights: insights}
}

func (c *ChartController) Data(ctx *gin.Context) {
	data, err := c.insights.ChartData(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		if errors.Is(err, service.ErrNoPartner) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "no partner connected"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, data)
}
