package main

import (
	"log"
	"os"

	"github.com/avandorn1/LLM-food-logging/config"
	"github.com/avandorn1/LLM-food-logging/routes"
	"github.com/avandorn1/LLM-food-logging/services"
)

func main() {
	config.InitLogger()
	config.InitDB()

	llm, err := services.NewOpenAIService()
	if err != nil {
		log.Fatalf("completion gateway init failed: %v", err)
	}

	hub := services.NewRealtimeHub()
	r := routes.SetupRouter(llm, hub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	config.Log.Infow("starting server", "port", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
