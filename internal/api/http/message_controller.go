package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vibesync/vibesync/internal/api/http/middleware"
	"github.com/vibesync/vibesync/internal/service"
)

type MessageController struct {
	chat service.ChatInteractor
}

func NewMessageController(chat service.ChatInteractor) *MessageController {
	return &MessageController{chat: chat}
}

func (c *MessageController) History(ctx *gin.Context) {
	messages, err := c.chat.History(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("room"))
	if err != nil {
		if errors.Is(err, service.ErrRoomForbidden) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized for this chat room"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, messages)
}
