package main

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"lotto/internal/config"
	"lotto/internal/handlers"
	"lotto/internal/notify"
	"lotto/internal/services"
	"lotto/internal/store"
)

//go:embed all:templates
var templateFS embed.FS

func main() {
	// 1. Load configuration and set up logging
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	var logFile io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o660)
		if err != nil {
			logger.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		logFile = f
	}
	defer logger.Init("lotto", cfg.Verbose, false, logFile).Close()

	// 2. Open the player store
	var st store.Store
	if cfg.DatabaseURL == "" {
		logger.Warning("DATABASE_URL not set, players are kept in memory")
		st = store.NewMemoryStore()
	} else {
		gs, err := store.OpenGorm(cfg.DatabaseURL, cfg.AutoMigrate)
		if err != nil {
			logger.Fatalf("Failed to open database: %v", err)
		}
		defer gs.Close()
		st = gs
	}
	replicator := store.NewReplicator(st, cfg.ReplicationBuffer, cfg.PersistTimeout)

	// 3. Operator notifications
	var notifier notify.Notifier = notify.Nop{}
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			logger.Warningf("Failed to init Telegram bot: %v", err)
		} else {
			notifier = tg
		}
	}

	// 4. Initialize the Lottery Service
	lotteryService := services.NewLotteryService(st, replicator, services.WithNotifier(notifier))

	// 5. Load HTML templates from the embedded filesystem.
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		logger.Fatalf("Failed to parse templates: %v", err)
	}

	// 6. Set up the router
	gin.SetMode(cfg.GinMode)
	httpHandler := handlers.NewHTTPHandler(lotteryService, templates)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handlers.NewRouter(httpHandler),
	}

	// 7. Start the background janitor to clean up inactive sessions
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-janitorCtx.Done():
				return
			case <-ticker.C:
				n := lotteryService.CleanUpInactiveSessions(cfg.SessionTTL)
				logger.Infof("Performed cleanup of inactive sessions, removed %d.", n)
			}
		}
	}()

	// 8. Run the server
	go func() {
		logger.Infof("Server starting on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to run server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Gracefully shutting down...")
	stopJanitor()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	replicator.Close()
	logger.Info("Server exited cleanly")
}
