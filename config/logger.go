package config

import (
	"log"
	"os"

	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

func InitLogger() {
	var (
		logger *zap.Logger
		err    error
	)
	if os.Getenv("GIN_MODE") == "release" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	Log = logger.Sugar()
}
