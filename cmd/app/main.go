package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"sanmar-inventory/internal/adapters/cli"
	"sanmar-inventory/internal/config"
)

func main() {
	_ = godotenv.Load()
	settings := config.Load()

	logger := zap.NewNop()
	if os.Getenv("DEBUG") != "" {
		l, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Failed to build logger: %v", err)
		}
		logger = l
	}
	defer logger.Sync()

	os.Exit(cli.Run(context.Background(), settings, logger, os.Args[1:]))
}
