package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vibesync/vibesync/internal/api/http/middleware"
	"github.com/vibesync/vibesync/internal/repository"
	"github.com/vibesync/vibesync/internal/service"
)

type TaskController struct {
	tasks service.TaskInteractor
}

func NewTaskController(tasks service.TaskInteractor) *TaskController {
	return &TaskController{tasks: tasks}
}

func (c *TaskController) GetDaily(ctx *gin.Context) {
	task, err := c.tasks.GetDaily(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		if errors.Is(err, service.ErrNoPartner) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "no partner connected, please connect with your partner first"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, task)
}

func (c *TaskController) Complete(ctx *gin.Context) {
	taskID, err := uuid.Parse(ctx.Param("taskID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	task, err := c.tasks.Complete(ctx.Request.Context(), middleware.UserID(ctx), taskID)
	if err != nil {
		c.taskError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, task)
}

func (c *TaskController) Respond(ctx *gin.Context) {
	type request struct {
		Text string `json:"text" binding:"required"`
	}

	taskID, err := uuid.Parse(ctx.Param("taskID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := c.tasks.Respond(ctx.Request.Context(), middleware.UserID(ctx), taskID, req.Text)
	if err != nil {
		c.taskError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, task)
}

func (c *TaskController) SubmitFeedback(ctx *gin.Context) {
	type request struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment"`
	}

	taskID, err := uuid.Parse(ctx.Param("taskID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := c.tasks.SubmitFeedback(ctx.Request.Context(), middleware.UserID(ctx), taskID, req.Rating, req.Comment)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRating) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.taskError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, task)
}

func (c *TaskController) taskError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrTaskNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, service.ErrNotAuthorized):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
