package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/hr-hub/internal/api"
	"github.com/xaenox/hr-hub/internal/bot"
	"github.com/xaenox/hr-hub/internal/classifier"
	"github.com/xaenox/hr-hub/internal/conversation"
	"github.com/xaenox/hr-hub/internal/logging"
	"github.com/xaenox/hr-hub/internal/notify"
	"github.com/xaenox/hr-hub/internal/requests"
	"github.com/xaenox/hr-hub/internal/storage"
	"github.com/xaenox/hr-hub/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	// Initialize logger
	logger, logFile, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	var store storage.Storage
	switch cfg.Database.Driver {
	case storage.DriverPostgres, storage.DriverSQLite:
		logger.Info("Using SQL storage", zap.String("driver", cfg.Database.Driver))
		store, err = storage.NewSQLStorage(ctx, storage.DatabaseConfig{
			Driver:   cfg.Database.Driver,
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
			Path:     cfg.Database.Path,
		}, storage.SampleData(), logger)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	default:
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage(storage.SampleData())
	}
	defer store.Close()

	// Rules answer unless an OpenAI key is configured
	var clf classifier.Classifier = classifier.NewRuleClassifier()
	if cfg.OpenAI.APIKey != "" {
		logger.Info("Using OpenAI responder", zap.String("model", cfg.OpenAI.Model))
		clf = classifier.NewGPTClassifier(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.BaseURL,
			cfg.OpenAI.Model,
			cfg.OpenAI.MaxTokens,
			cfg.OpenAI.Temperature,
			cfg.OpenAI.Timeout,
			clf,
			logger,
		)
	}

	feed := notify.NewFeed(50)
	notifier := notify.Multi{feed, notify.NewLogNotifier(logger)}

	submitter := requests.NewSimulatedSubmitter(cfg.Requests.SubmitDelay, cfg.Requests.FailureRate, cfg.Requests.Seed)
	flow := requests.NewFlow(submitter, store, notifier, cfg.Employee.ID, cfg.Requests.DraftRetention, logger)
	chats := conversation.NewManager(clf, store, cfg.Chat.ReplyDelay, cfg.Chat.HistoryLimit, cfg.Chat.MaxSessions, cfg.Chat.SessionIdleTTL, logger)

	handler := api.NewHandler(store, flow, chats, feed, cfg.Employee.ID, cfg.Server.DefaultLocale, logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if cfg.Telegram.Token != "" {
		b, err := bot.New(cfg.Telegram.Token, store, chats, cfg.Employee.ID, cfg.Server.DefaultLocale, logger)
		if err != nil {
			logger.Fatal("Failed to create bot", zap.Error(err))
		}
		go func() {
			if err := b.Start(ctx); err != nil {
				errCh <- fmt.Errorf("telegram bot: %w", err)
			}
		}()
	} else {
		logger.Info("Telegram token not set, bot disabled")
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-errCh:
		logger.Error("Service error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server", zap.Error(err))
	}
}
