package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"avril/internal/config"
	"avril/pkg/log"
	"avril/pkg/notify"
	"avril/pkg/smtp"
	"avril/pkg/telegram"

	"github.com/joho/godotenv"
)

func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded: %v", err)
	}

	cfg := config.LoadAssistantConfig()

	telegramSender, err := telegram.New(logger)
	if err != nil {
		logger.Warnf("Telegram notifications disabled: %v", err)
	}
	notifier := notify.New(logger).
		Add("smtp", smtp.New()).
		Add("telegram", telegramSender)

	server, err := config.NewServer(
		config.WithFiber(config.NewFiber(logger)),
		config.WithLogger(logger),
		config.WithValidator(config.NewValidator()),
		config.WithAssistantConfig(cfg),
		config.WithStore(),
		config.WithNotifier(notifier),
		config.WithMiddleware(),
		config.WithEngine(),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		logger.Fatalf("Server stopped with error: %v", err)
	}

	logger.Info("Server stopped")
}
