// Command progres is the terminal front end: it drives the same per-client
// state as the HTTP host, with the session kept in a local file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ghani250za/abdelghani-amrani/internal/app"
	"github.com/ghani250za/abdelghani-amrani/internal/config"
	"github.com/ghani250za/abdelghani-amrani/internal/logger"
	"github.com/ghani250za/abdelghani-amrani/internal/progres"
	"github.com/ghani250za/abdelghani-amrani/internal/repository"
	"github.com/ghani250za/abdelghani-amrani/internal/service"
	"github.com/ghani250za/abdelghani-amrani/internal/session"
	"github.com/ghani250za/abdelghani-amrani/internal/utils"
)

// cliClient is the fixed client id of the terminal front end.
const cliClient = "cli"

type env struct {
	cfg     config.Config
	log     *zap.Logger
	backend *repository.Backend
	events  *service.Async
	app     *app.App
	json    bool
}

func (e *env) close() {
	if e.events != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := e.events.Close(ctx); err != nil {
			e.log.Warn("session events not flushed", zap.Error(err))
		}
		cancel()
	}
	if e.backend != nil {
		e.backend.Close()
	}
	_ = e.log.Sync()
}

func setup(ctx context.Context, asJSON bool) (*env, error) {
	// the terminal keeps its session on disk unless told otherwise
	if os.Getenv("SESSION_BACKEND") == "" {
		os.Setenv("SESSION_BACKEND", config.BackendFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	lg, err := logger.New(envOr("LOG_LEVEL", "warn"), cfg.Env)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.SessionBackend == config.BackendRedis {
		rdb = config.NewRedisClient()
	}
	backend, err := repository.Open(ctx, cfg, rdb, lg)
	if err != nil {
		return nil, err
	}
	settings := repository.NewSettingsRepo(backend.KV, cfg.SessionPrefix)
	if _, err := settings.SeedDefaults(ctx, cfg.APIBase); err != nil {
		lg.Warn("seeding defaults failed", zap.Error(err))
	}

	var events service.Publisher = service.Nop{}
	var async *service.Async
	if cfg.EventsEnabled {
		async = service.NewAsync(service.NewAMQPPublisher(cfg.AMQPURL, lg), 16, lg)
		events = async
	}
	opts := []session.Option{session.WithTTL(cfg.SessionTTL), session.WithLogger(lg)}
	if sl := utils.NewSealer(cfg.SessionSecret); sl != nil {
		opts = append(opts, session.WithSealer(sl))
	}
	api := progres.New(settings.APIBase(ctx, cfg.ExplicitAPIBase(), cfg.APIBase), progres.WithUserAgent(cfg.UserAgent), progres.WithLogger(lg))
	store := session.New(backend.KV, cfg.SessionPrefix+":client:"+cliClient, opts...)
	a := app.New(cliClient, api, store, events, app.Settings{
		Breakpoint: cfg.NarrowViewport,
		Threshold:  cfg.SwipeThreshold,
		BannerTTL:  cfg.BannerTTL,
		PublicURL:  cfg.PublicURL,
	}, lg)
	return &env{cfg: cfg, log: lg, backend: backend, events: async, app: a, json: asJSON}, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errText(err))
		os.Exit(1)
	}
}
