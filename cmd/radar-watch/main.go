package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Checker-Finance/market-radar/internal/config"
	"github.com/Checker-Finance/market-radar/internal/refresh"
	"github.com/Checker-Finance/market-radar/internal/watch"
	"github.com/Checker-Finance/market-radar/pkg/logger"
	"github.com/Checker-Finance/market-radar/pkg/utils"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadWatch()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()

	loader := refresh.NewLoader(logger.Named("loader"), &http.Client{Timeout: cfg.RequestTimeout})
	refresher := refresh.New(logger.Named("refresh"),
		refresh.URLSource{Loader: loader, URL: cfg.RadarURL},
		refresh.Config{Interval: cfg.RefreshInterval, Timeout: cfg.RequestTimeout})

	opts := watch.Options{View: cfg.View, Query: cfg.Query, Locale: cfg.Locale}

	var mu sync.Mutex
	draw := func(st *refresh.State) {
		var frame bytes.Buffer
		frame.WriteString(clearScreen)
		if err := watch.Render(&frame, st, opts, time.Now()); err != nil {
			logg.Warnw("watch.render_failed", "error", err)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		_, _ = os.Stdout.Write(frame.Bytes())
	}

	draw(refresher.Current())
	refresher.OnUpdate(func(*refresh.State) {
		// cycles can finish out of order, so draw whatever is current
		draw(refresher.Current())
	})
	refresher.Start(ctx)

	logg.Infow("[radar-watch] running",
		"url", utils.MaskURL(cfg.RadarURL),
		"view", cfg.View,
		"locale", cfg.Locale,
		"interval", cfg.RefreshInterval)

	<-ctx.Done()
	refresher.Stop()
}
