package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/kondate-app/kondate/internal/backup"
	"github.com/kondate-app/kondate/internal/billing"
	"github.com/kondate-app/kondate/internal/database"
	"github.com/kondate-app/kondate/internal/logging"
	"github.com/kondate-app/kondate/internal/push"
	"github.com/kondate-app/kondate/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("KONDATE_LOG_LEVEL"))

	port := os.Getenv("KONDATE_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("KONDATE_DB_PATH")
	if dbPath == "" {
		dbPath = "kondate.db"
	}

	baseURL := os.Getenv("KONDATE_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + port
	}

	db, err := database.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg := server.Config{
		SecureCookie: os.Getenv("KONDATE_SECURE_COOKIE") == "true",
		Billing: billing.Config{
			SecretKey:     os.Getenv("KONDATE_STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("KONDATE_STRIPE_WEBHOOK_SECRET"),
			ProPriceID:    os.Getenv("KONDATE_STRIPE_PRO_PRICE_ID"),
			SuccessURL:    baseURL + "/account?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:     baseURL + "/account",
		},
		BillingReturnURL: baseURL + "/account",
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  os.Getenv("KONDATE_S3_ENDPOINT"),
				Bucket:    os.Getenv("KONDATE_S3_BUCKET"),
				Region:    os.Getenv("KONDATE_S3_REGION"),
				AccessKey: os.Getenv("KONDATE_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("KONDATE_S3_SECRET_KEY"),
			},
			DBPath:        dbPath,
			Passphrase:    os.Getenv("KONDATE_BACKUP_PASSPHRASE"),
			ScheduleHour:  envInt("KONDATE_BACKUP_SCHEDULE_HOUR", 3),
			RetentionDays: envInt("KONDATE_BACKUP_RETENTION_DAYS", 30),
		},
		Push: push.Config{
			VAPIDPublicKey:  os.Getenv("KONDATE_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("KONDATE_VAPID_PRIVATE_KEY"),
		},
	}

	srv, err := server.New(db, cfg, logger)
	if err != nil {
		slog.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	// Hourly cleanup of expired sessions and stale rate limit entries.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					slog.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up expired sessions", "count", n)
				}
				srv.RateLimiter().Cleanup()
			case <-bgCtx.Done():
				return
			}
		}
	}()

	srv.BackupManager().Start(bgCtx)
	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(bgCtx)
	}

	go func() {
		slog.Info("kondate starting", "addr", ":"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	bgCancel()
	srv.BackupManager().Stop()
	if sched := srv.PushScheduler(); sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
