package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mundotea/mundotea-backend/internal/app"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

func main() {
	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, log)
	if err != nil {
		log.Error("App init failed", "error", err)
		log.Sync()
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		log.Error("Server failed", "error", err)
		application.Close()
		os.Exit(1)
	}
	log.Info("Server stopped")
}
