package main // records session lifecycle events published by the server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ghani250za/abdelghani-amrani/internal/config"
	"github.com/ghani250za/abdelghani-amrani/internal/logger"
	"github.com/ghani250za/abdelghani-amrani/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	logDir := os.Getenv("EVENT_LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lg.Info("session consumer starting", zap.String("queue", queue.SessionQueue), zap.String("dir", logDir))
	if err := queue.StartSessionConsumer(ctx, cfg.AMQPURL, logDir, lg); err != nil && ctx.Err() == nil {
		lg.Fatal("consumer", zap.Error(err))
	}
}
