// controllers/insight_controller.go
package controllers

import (
	"net/http"
	"time"

	"github.com/avandorn1/LLM-food-logging/services"

	"github.com/gin-gonic/gin"
)

type InsightController struct {
	Svc *services.InsightService
}

func NewInsightController(svc *services.InsightService) *InsightController {
	return &InsightController{Svc: svc}
}

func (ic *InsightController) ProgressReview(c *gin.Context) {
	userID := c.GetUint("userID")

	review, err := ic.Svc.GetProgressReview(c.Request.Context(), userID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, review)
}

func (ic *InsightController) Encouragement(c *gin.Context) {
	userID := c.GetUint("userID")

	text, err := ic.Svc.GetEncouragement(c.Request.Context(), userID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": text})
}
