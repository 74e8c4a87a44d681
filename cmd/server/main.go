package main // host for the portal's JSON view models

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/ghani250za/abdelghani-amrani/internal/app"
	"github.com/ghani250za/abdelghani-amrani/internal/config"
	"github.com/ghani250za/abdelghani-amrani/internal/handler"
	"github.com/ghani250za/abdelghani-amrani/internal/logger"
	"github.com/ghani250za/abdelghani-amrani/internal/middleware"
	"github.com/ghani250za/abdelghani-amrani/internal/progres"
	"github.com/ghani250za/abdelghani-amrani/internal/repository"
	"github.com/ghani250za/abdelghani-amrani/internal/router"
	"github.com/ghani250za/abdelghani-amrani/internal/service"
	"github.com/ghani250za/abdelghani-amrani/internal/session"
	"github.com/ghani250za/abdelghani-amrani/internal/utils"
)

func main() {
	cfg, err := config.Load() // env + optional .env
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis serves both the session backend and the login limiter
	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	backend, err := repository.Open(ctx, cfg, rdb, lg)
	if err != nil {
		lg.Fatal("session backend", zap.Error(err))
	}
	defer backend.Close()
	go backend.PurgeLoop(ctx, 10*time.Minute, lg)

	// install defaults, never overwritten afterwards
	settings := repository.NewSettingsRepo(backend.KV, cfg.SessionPrefix)
	if n, err := settings.SeedDefaults(ctx, cfg.APIBase); err != nil {
		lg.Warn("seeding defaults failed", zap.Error(err))
	} else if n > 0 {
		lg.Info("defaults seeded", zap.Int("keys", n))
	}
	apiBase := settings.APIBase(ctx, cfg.ExplicitAPIBase(), cfg.APIBase)

	var events service.Publisher = service.Nop{}
	if cfg.EventsEnabled {
		async := service.NewAsync(service.NewAMQPPublisher(cfg.AMQPURL, lg), 256, lg)
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := async.Close(flushCtx); err != nil {
				lg.Warn("session events not flushed", zap.Error(err))
			}
		}()
		events = async
	}

	api := progres.New(apiBase, progres.WithUserAgent(cfg.UserAgent), progres.WithLogger(lg))
	storeOpts := []session.Option{session.WithTTL(cfg.SessionTTL)}
	if sl := utils.NewSealer(cfg.SessionSecret); sl != nil {
		storeOpts = append(storeOpts, session.WithSealer(sl))
	}
	apps := app.NewRegistry(api, backend.KV, cfg.SessionPrefix, events, app.Settings{
		Breakpoint: cfg.NarrowViewport,
		Threshold:  cfg.SwipeThreshold,
		BannerTTL:  cfg.BannerTTL,
		PublicURL:  cfg.PublicURL,
	}, lg, storeOpts...)
	apps.MaxClients = cfg.MaxClients
	apps.Idle = cfg.ClientIdle
	go apps.SweepLoop(ctx, time.Minute)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(lg))

	identity := middleware.Identity(cfg.Env == "prod")
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, lg)

	router.RegisterRoutes(e, &handler.HealthHandler{Backend: backend.Name, Clients: apps.Len})
	router.RegisterAuth(e, handler.NewAuthHandler(apps), identity, limiter)
	router.RegisterPortal(e, identity,
		handler.NewDashboardHandler(apps),
		handler.NewReportHandler(apps),
		handler.NewViewHandler(apps),
	)

	addr := ":" + cfg.Port
	go func() {
		lg.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env),
			zap.String("backend", backend.Name), zap.String("api", apiBase))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("shutdown", zap.Error(err))
	}
}
