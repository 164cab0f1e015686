package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ytakahashi/tasks/internal/config"
	"github.com/ytakahashi/tasks/internal/handlers"
	"github.com/ytakahashi/tasks/internal/logging"
	"github.com/ytakahashi/tasks/internal/notify"
	"github.com/ytakahashi/tasks/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", "err", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		log.Fatal("Failed to create logger", "err", err)
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := services.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open task store", "store", cfg.Store, "err", err)
	}
	defer store.Close()

	var notifier notify.Notifier = notify.Noop{}
	if cfg.LineChannelToken != "" {
		notifier, err = notify.NewLineNotifier(cfg.LineChannelToken, cfg.LineNotifyTo, notify.DefaultPushTimeout)
		if err != nil {
			logger.Fatal("Failed to create LINE notifier", "err", err)
		}
		logger.Info("LINE notifications enabled")
	}

	e := handlers.NewServer(store, notifier, logger)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", "err", err)
		}
	}()

	logger.Info("Server starting", "addr", cfg.Addr(), "store", cfg.Store)
	if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed to start", "err", err)
	}
	logger.Info("Server stopped")
}
