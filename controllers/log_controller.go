// controllers/log_controller.go
package controllers

import (
	"net/http"
	"time"

	"github.com/avandorn1/LLM-food-logging/services"
	"github.com/avandorn1/LLM-food-logging/utils"

	"github.com/gin-gonic/gin"
)

func GetLogs(c *gin.Context) {
	userID := c.GetUint("userID")

	day := time.Now()
	if q := c.Query("day"); q != "" {
		parsed, err := utils.ParseDay(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	logs, err := services.ListLogsForDay(userID, day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logs":   logs,
		"totals": services.SumLogs(logs),
	})
}

func CreateLogs(c *gin.Context) {
	userID := c.GetUint("userID")

	var req struct {
		Day  *string              `json:"day"`
		Logs []services.ParsedLog `json:"logs" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, l := range req.Logs {
		if l.Item == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "every log needs an item name"})
			return
		}
	}

	day := time.Now()
	if req.Day != nil && *req.Day != "" {
		parsed, err := utils.ParseDay(*req.Day)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	rows, err := services.CreateLogs(userID, day, req.Logs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"logs": rows})
}

func DeleteLog(c *gin.Context) {
	userID := c.GetUint("userID")

	var req struct {
		ID uint `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	if err := services.DeleteLog(userID, req.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": req.ID})
}
