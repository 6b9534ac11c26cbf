// controllers/chat_controller.go
package controllers

import (
	"net/http"

	"github.com/avandorn1/LLM-food-logging/services"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	Svc *services.ChatService
}

func NewChatController(svc *services.ChatService) *ChatController {
	return &ChatController{Svc: svc}
}

// Chat runs one conversation turn. Conversational failures still answer 200
// with error fields in the body; only a malformed request is a 400.
func (cc *ChatController) Chat(c *gin.Context) {
	var req services.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	if req.UserID == nil {
		if uid := c.GetUint("userID"); uid != 0 {
			req.UserID = &uid
		}
	}
	c.JSON(http.StatusOK, cc.Svc.HandleTurn(c.Request.Context(), req))
}
