package routes

import (
	"os"
	"strings"
	"time"

	"github.com/avandorn1/LLM-food-logging/controllers"
	"github.com/avandorn1/LLM-food-logging/middlewares"
	"github.com/avandorn1/LLM-food-logging/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(llm services.Completer, hub *services.RealtimeHub) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		corsCfg.AllowOrigins = strings.Split(origins, ",")
	} else {
		corsCfg.AllowOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(corsCfg))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.IdentityMiddleware())

	chatCtl := controllers.NewChatController(services.NewChatService(llm, hub))
	insightCtl := controllers.NewInsightController(services.NewInsightService(llm))
	realtimeCtl := controllers.NewRealtimeController(hub)

	api := r.Group("/api")
	{
		api.POST("/chat", chatCtl.Chat)

		api.GET("/goals", controllers.GetGoals)
		api.POST("/goals", controllers.UpdateGoals)
		api.POST("/goals/calculate", controllers.CalculateGoals)

		api.GET("/logs", controllers.GetLogs)
		api.POST("/logs", controllers.CreateLogs)
		api.DELETE("/logs", controllers.DeleteLog)

		api.GET("/summary", controllers.GetSummary)

		api.GET("/progress-review", insightCtl.ProgressReview)
		api.POST("/encouragement", insightCtl.Encouragement)
	}

	r.GET("/ws", realtimeCtl.LogsWS)

	return r
}
