package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"statcore/internal/config"
	"statcore/internal/container"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[API] no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] %v", err)
	}

	c, err := container.New(cfg)
	if err != nil {
		log.Fatalf("[API] %v", err)
	}
	server := c.APIServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		c.Logger.Error("server failed: %v", err)
		os.Exit(1)
	}
}
