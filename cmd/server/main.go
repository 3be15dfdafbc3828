// Package main is the entry point for the Bitcoin investment tracker.
// It records purchases, caches market data from CoinGecko and Yahoo Finance,
// and serves the PnL and benchmark comparison API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/felixsc1/BoomerBitcoinV2/internal/config"
	"github.com/felixsc1/BoomerBitcoinV2/internal/di"
	"github.com/felixsc1/BoomerBitcoinV2/internal/server"
	"github.com/felixsc1/BoomerBitcoinV2/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting BoomerBitcoin")

	container, err := di.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	// Background jobs: daily cache cleanup, weekly cloud backup
	scheduler := cron.New()
	if _, err := scheduler.AddJob("0 4 * * *", container.CleanupJob); err != nil {
		log.Error().Err(err).Msg("Failed to schedule cache cleanup job")
	}
	if container.CloudBackup != nil {
		retentionDays := cfg.Backup.RetentionDays
		cloudBackup := container.CloudBackup
		if _, err := scheduler.AddFunc("0 3 * * 0", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if err := cloudBackup.CreateAndUploadBackup(ctx); err != nil {
				log.Error().Err(err).Msg("Scheduled backup failed")
				return
			}
			if err := cloudBackup.RotateOldBackups(ctx, retentionDays); err != nil {
				log.Error().Err(err).Msg("Backup rotation failed")
			}
		}); err != nil {
			log.Error().Err(err).Msg("Failed to schedule backup job")
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
