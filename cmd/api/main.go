package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // zone names must resolve on hosts without a zoneinfo database

	// Application Layer
	appService "memento/internal/application/service"
	"memento/internal/application/store"
	"memento/internal/domain/constant"
	"memento/internal/domain/repository"

	// Infrastructure Layer
	redisStore "memento/internal/infrastructure/database/redis"
	"memento/internal/infrastructure/database/sqlite"
	"memento/internal/infrastructure/discord"
	lineClient "memento/internal/infrastructure/line"
	"memento/internal/infrastructure/scheduler"

	// Interfaces Layer
	"memento/internal/interfaces/api/handler"
	"memento/internal/interfaces/api/router"

	// Packages
	"memento/internal/pkg/clock"
	"memento/internal/pkg/config"
	appLogger "memento/internal/pkg/logger"
	"memento/internal/pkg/timeparse"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file
)

// persistence bundles the repositories of the configured backend with its closer.
type persistence struct {
	reminders repository.ReminderRepository
	users     repository.UserConfigRepository
	close     func() error
}

func openPersistence(cfg *config.Config, log appLogger.Logger) (*persistence, error) {
	switch cfg.StoreDriver {
	case config.StoreRedis:
		client, err := redisStore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
		if err != nil {
			return nil, err
		}
		return &persistence{
			reminders: redisStore.NewReminderRepository(client, log),
			users:     redisStore.NewUserConfigRepository(client),
			close:     client.Close,
		}, nil
	default:
		db, err := sqlite.NewDB(cfg.DBURL, log)
		if err != nil {
			return nil, err
		}
		return &persistence{
			reminders: sqlite.NewReminderRepository(db, log),
			users:     sqlite.NewUserConfigRepository(db),
			close:     func() error { return sqlite.CloseDB(db) },
		}, nil
	}
}

func gracefulShutdown(apiServer *http.Server, schedulers []appService.SchedulerService, cronScheduler *scheduler.Scheduler, cleanup func(), log appLogger.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info("Shutting down gracefully, press Ctrl+C again to force")

	// Stop polling first so no pass runs against a closed store.
	for _, s := range schedulers {
		s.Stop()
	}
	cronScheduler.Stop()
	log.Info("Schedulers stopped.")

	// The server has 5 seconds to finish the requests it is currently handling.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err)
	}

	cleanup()
	log.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	appLog := appLogger.New(cfg.LogLevel)
	appLog.Info("Logger initialized.")
	ctx := context.Background()

	// --- Infrastructure ---
	backend, err := openPersistence(cfg, appLog)
	if err != nil {
		appLog.Error("Failed to open persistence", err)
		os.Exit(1)
	}
	appLog.Info(fmt.Sprintf("Using %s persistence.", cfg.StoreDriver))

	var (
		notifier   appService.Notifier
		line       *lineClient.Client
		closeBotFn = func() error { return nil }
	)
	switch cfg.Notifier {
	case config.NotifierLine:
		line, err = lineClient.NewClient(cfg.ChannelSecret, cfg.ChannelAccessToken, appLog)
		if err == nil {
			notifier = lineClient.NewNotifier(line)
		}
	default:
		session, openErr := discord.OpenSession(cfg.DiscordToken, appLog)
		err = openErr
		if err == nil {
			notifier = discord.NewNotifier(session)
			closeBotFn = session.Close
		}
	}
	if err != nil {
		appLog.Error("Failed to set up notifier", err)
		backend.close()
		os.Exit(1)
	}

	cleanup := func() {
		if err := closeBotFn(); err != nil {
			appLog.Error("Error closing bot session", err)
		}
		if err := backend.close(); err != nil {
			appLog.Error("Error closing persistence", err)
		} else {
			appLog.Info("Persistence closed.")
		}
	}

	// --- Application Services ---
	clk := clock.New()
	userSvc := appService.NewUserService(backend.users, appLog)
	if err := userSvc.LoadCache(ctx); err != nil {
		appLog.Error("Failed to load user timezones", err)
		cleanup()
		os.Exit(1)
	}

	userStore := store.New(constant.OwnerUser, backend.reminders, clk, appLog)
	roleStore := store.New(constant.OwnerRole, backend.reminders, clk, appLog)
	for _, st := range []*store.ReminderStore{userStore, roleStore} {
		if err := st.Load(ctx); err != nil {
			appLog.Error(fmt.Sprintf("Failed to load %s reminders", st.Kind()), err)
			cleanup()
			os.Exit(1)
		}
	}

	resolver, err := timeparse.New(clk, timeparse.Options{
		DefaultUnit: cfg.DefaultTimeUnit,
		MinDuration: cfg.MinDuration,
		MaxDuration: cfg.MaxDuration,
	})
	if err != nil {
		appLog.Error("Invalid time resolution settings", err)
		cleanup()
		os.Exit(1)
	}
	reminderSvc := appService.NewReminderService(userStore, roleStore, userSvc, resolver, cfg.MaxTextLength, appLog)
	appLog.Info("Application services initialized.")

	// --- Schedulers ---
	cronScheduler := scheduler.NewScheduler(appLog)
	schedulers := []appService.SchedulerService{
		appService.NewSchedulerService(cronScheduler, userStore, notifier, clk, cfg.PollInterval, cfg.StalenessWindow, appLog),
		appService.NewSchedulerService(cronScheduler, roleStore, notifier, clk, cfg.PollInterval, cfg.StalenessWindow, appLog),
	}
	for _, s := range schedulers {
		if err := s.Start(ctx); err != nil {
			appLog.Error("Failed to start scheduler", err)
			cleanup()
			os.Exit(1)
		}
	}
	cronScheduler.Start()

	// --- Router ---
	routerCfg := &router.Config{
		ReminderHandler: handler.NewReminderHandler(userSvc, reminderSvc, appLog),
		Logger:          appLog,
	}
	if line != nil {
		routerCfg.LineHandler = handler.NewLineHandler(line, userSvc, reminderSvc, appLog)
	}
	echoRouter := router.NewRouter(routerCfg)

	// --- HTTP Server ---
	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      echoRouter,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// --- Start Server & Shutdown Handling ---
	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, schedulers, cronScheduler, cleanup, appLog, done)

	appLog.Info(fmt.Sprintf("Server starting on port %d", cfg.Port))
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Error("HTTP server ListenAndServe error", err)
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for graceful shutdown signal
	<-done
	appLog.Info("Graceful shutdown complete.")
}
