package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/Checker-Finance/market-radar/internal/api"
	"github.com/Checker-Finance/market-radar/internal/config"
	"github.com/Checker-Finance/market-radar/internal/polymarket"
	"github.com/Checker-Finance/market-radar/internal/publisher"
	"github.com/Checker-Finance/market-radar/internal/rate"
	"github.com/Checker-Finance/market-radar/internal/refresh"
	"github.com/Checker-Finance/market-radar/internal/store"
	"github.com/Checker-Finance/market-radar/pkg/logger"
	"github.com/Checker-Finance/market-radar/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [radar-api]...")

	if err := cfg.Validate(); err != nil {
		logg.Fatalw("invalid configuration", "error", err)
	}

	// --- Rate limiter ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: cfg.GammaRPS,
		Burst:             cfg.GammaBurst,
	})

	// --- Gamma client + service ---
	gammaClient := polymarket.NewClient(logger.Named("gamma"), rateMgr, polymarket.ClientConfig{
		BaseURL:  cfg.GammaBaseURL,
		Timeout:  cfg.GammaTimeout,
		RetryMax: cfg.GammaRetryMax,
	})
	marketSvc := polymarket.NewService(logger.Named("markets"), gammaClient, cfg.DefaultLimit)

	checks := map[string]api.HealthChecker{}
	var sinks []refresh.Sink

	// --- Snapshot cache (optional) ---
	var st *store.SnapshotStore
	if cfg.RedisAddr != "" {
		s, err := store.NewSnapshotStore(cfg.RedisAddr, cfg.RedisDB, cfg.RedisPass, cfg.SnapshotTTL, logger.Named("store"))
		if err != nil {
			logg.Warnw("snapshot cache unavailable, continuing without it", "error", err)
		} else {
			st = s
			checks["store"] = st
			sinks = append(sinks, st)
		}
	}

	// --- NATS publisher (optional) ---
	var nc *nats.Conn
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.ServiceName))
		if err != nil {
			logg.Fatalw("failed to connect to NATS", "url", utils.MaskURL(cfg.NATSURL), "error", err)
		}
		nc = conn
		pub, err := publisher.New(nc, cfg.SnapshotSubject, cfg.ServiceName, logger.Named("publisher"))
		if err != nil {
			logg.Fatalw("failed to init publisher", "error", err)
		}
		checks["nats"] = pub
		sinks = append(sinks, pub)
	}

	// --- Refresher ---
	refresher := refresh.New(logger.Named("refresh"),
		refresh.ServiceSource{Service: marketSvc, Limit: cfg.DefaultLimit},
		refresh.Config{Interval: cfg.RefreshInterval, Timeout: cfg.RefreshTimeout},
		sinks...)

	if st != nil {
		seedCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		snap, err := st.Latest(seedCtx)
		cancel()
		switch {
		case err != nil:
			logg.Warnw("failed to read cached snapshot", "error", err)
		case snap != nil:
			refresher.Seed(*snap)
		}
	}
	refresher.Start(ctx)

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	marketsHandler := api.NewMarketsHandler(logger.Named("api"), marketSvc, cfg.DefaultLimit, cfg.MaxLimit)
	viewsHandler := api.NewViewsHandler(logger.Named("api"), refresher, cfg.MarketURLBase, cfg.DefaultLocale)

	api.RegisterRoutes(app, marketsHandler, viewsHandler, checks)

	// Start HTTP server
	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[radar-api] running",
		"gamma", cfg.GammaBaseURL,
		"nats", utils.MaskURL(cfg.NATSURL),
		"env", cfg.Env,
		"refresh_interval", cfg.RefreshInterval,
		"cache", st != nil,
		"events", nc != nil)

	<-ctx.Done()
	logg.Info("shutting down [radar-api]...")

	refresher.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if nc != nil {
		if err := nc.Drain(); err != nil {
			logg.Warnw("nats.drain_failed", "error", err)
		}
	}
	if st != nil {
		if err := st.Close(); err != nil {
			logg.Warnw("store.close_failed", "error", err)
		}
	}
}
