// controllers/goal_controller.go
package controllers

import (
	"net/http"

	"github.com/avandorn1/LLM-food-logging/services"
	"github.com/avandorn1/LLM-food-logging/utils"

	"github.com/gin-gonic/gin"
)

func GetGoals(c *gin.Context) {
	userID := c.GetUint("userID")

	goal, err := services.GetGoal(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	user, err := services.EnsureUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"goal": goal,
		"bio": gin.H{
			"age":           user.Age,
			"biologicalSex": user.BiologicalSex,
			"height":        user.Height,
			"weight":        user.Weight,
			"activityLevel": user.ActivityLevel,
		},
		"macroSplits": utils.MacroSplits,
	})
}

func UpdateGoals(c *gin.Context) {
	userID := c.GetUint("userID")

	var req struct {
		TargetCalories *int    `json:"targetCalories"`
		TargetProtein  *int    `json:"targetProtein"`
		TargetCarbs    *int    `json:"targetCarbs"`
		TargetFat      *int    `json:"targetFat"`
		MacroSplit     *string `json:"macroSplit"`
		Age            *int    `json:"age"`
		BiologicalSex  *string `json:"biologicalSex"`
		Height         *int    `json:"height"`
		Weight         *int    `json:"weight"`
		ActivityLevel  *string `json:"activityLevel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := services.UpdateUserBio(userID, req.Age, req.Height, req.Weight, req.BiologicalSex, req.ActivityLevel)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	goal, err := services.UpsertGoal(userID, services.ParsedGoals{
		TargetCalories: req.TargetCalories,
		TargetProtein:  req.TargetProtein,
		TargetCarbs:    req.TargetCarbs,
		TargetFat:      req.TargetFat,
	}, req.MacroSplit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"goal": goal,
		"bio": gin.H{
			"age":           user.Age,
			"biologicalSex": user.BiologicalSex,
			"height":        user.Height,
			"weight":        user.Weight,
			"activityLevel": user.ActivityLevel,
		},
	})
}

// CalculateGoals derives targets from bio data without persisting anything.
func CalculateGoals(c *gin.Context) {
	var req struct {
		utils.BioInput
		MacroSplit string `json:"macroSplit"`
		Pace       string `json:"pace"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	targets, err := utils.CalculateTargets(req.BioInput, req.MacroSplit, req.Pace)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, targets)
}
