package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dukerupert/ladle/internal/backup"
	"github.com/dukerupert/ladle/internal/database"
	"github.com/dukerupert/ladle/internal/logging"
	"github.com/dukerupert/ladle/internal/push"
	"github.com/dukerupert/ladle/internal/server"
	"github.com/dukerupert/ladle/internal/telemetry"
)

func main() {
	logger := logging.Setup(os.Getenv("LADLE_LOG_LEVEL"), os.Getenv("LADLE_LOG_FORMAT"))

	port := envOr("LADLE_PORT", "8080")
	dbPath := envOr("LADLE_DB_PATH", "ladle.db")

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg := server.Config{
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  os.Getenv("LADLE_S3_ENDPOINT"),
				Bucket:    os.Getenv("LADLE_S3_BUCKET"),
				Region:    envOr("LADLE_S3_REGION", "auto"),
				AccessKey: os.Getenv("LADLE_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("LADLE_S3_SECRET_KEY"),
			},
			DBPath:        dbPath,
			Passphrase:    os.Getenv("LADLE_BACKUP_PASSPHRASE"),
			Hour:          envHour("LADLE_BACKUP_HOUR", 3),
			RetentionDays: envInt("LADLE_BACKUP_RETENTION_DAYS", 30),
		},
		Push: push.Config{
			VAPIDPublicKey:  os.Getenv("LADLE_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("LADLE_VAPID_PRIVATE_KEY"),
			Subscriber:      os.Getenv("LADLE_VAPID_SUBSCRIBER"),
		},
		ReminderHour: envHour("LADLE_REMINDER_HOUR", 16),
	}

	tel := telemetry.NewClient(
		os.Getenv("LADLE_TELEMETRY_KEY"),
		os.Getenv("LADLE_TELEMETRY_URL"),
		logger.With("component", "telemetry"),
	)

	srv := server.New(db, cfg, tel, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.Worker().Start(ctx)
	defer srv.Worker().Stop()
	srv.PushScheduler().Start(ctx)
	defer srv.PushScheduler().Stop()
	srv.BackupManager().Start(ctx)
	defer srv.BackupManager().Stop()

	// Hourly housekeeping: expired sessions and stale rate-limit buckets.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Info("expired sessions removed", "count", n)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Ladle running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envHour(key string, fallback int) int {
	h := envInt(key, fallback)
	if h < 0 || h > 23 {
		return fallback
	}
	return h
}
