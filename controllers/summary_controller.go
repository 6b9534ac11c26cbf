// controllers/summary_controller.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/avandorn1/LLM-food-logging/services"

	"github.com/gin-gonic/gin"
)

func GetSummary(c *gin.Context) {
	userID := c.GetUint("userID")

	days := 7
	if q := c.Query("days"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 90 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 90"})
			return
		}
		days = n
	}

	series, goal, err := services.GetSummary(userID, days, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": series, "goal": goal})
}
