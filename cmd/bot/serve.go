package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"interview-bot/internal/config"
	"interview-bot/internal/conversation"
	"interview-bot/internal/logging"
	"interview-bot/internal/questions"
	"interview-bot/internal/scheduler"
	"interview-bot/internal/storage"
	"interview-bot/internal/telegram"
	"interview-bot/internal/users"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := users.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open user store: %w", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	log.Info("user store ready", zap.String("backend", backendName(cfg.DatabaseURL)))

	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	var (
		provider questions.Provider
		watcher  *questions.FileProvider
	)
	if cfg.QuestionsFilePath != "" {
		watcher = questions.NewFileProvider(cfg.QuestionsFilePath, log)
		provider = watcher
	} else {
		pool, err := questions.Default()
		if err != nil {
			return fmt.Errorf("load built-in questions: %w", err)
		}
		provider = pool
	}

	var rec storage.Recorder
	if cfg.EventLogFilePath != "" {
		fr, err := storage.NewFileRecorder(cfg.EventLogFilePath)
		if err != nil {
			log.Warn("interaction log disabled", zap.String("path", cfg.EventLogFilePath), zap.Error(err))
		} else {
			rec = fr
		}
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = cfg.TelegramDebug
	log.Info("authorized", zap.String("bot", api.Self.UserName))

	gateway := telegram.NewGateway(api)
	machineOpts := []conversation.Option{
		conversation.WithSessionStore(sessions),
		conversation.WithLogger(log.Named("conversation")),
	}
	if rec != nil {
		machineOpts = append(machineOpts, conversation.WithRecorder(rec))
	}
	machine := conversation.NewMachine(store, provider, gateway, machineOpts...)

	bot := telegram.New(api, machine, gateway, telegram.Options{
		Recorder:    rec,
		AdminUserID: cfg.AdminUserID,
		Logger:      log.Named("telegram"),
	})

	g, ctx := errgroup.WithContext(ctx)
	if cfg.UseWebhook() {
		g.Go(func() error { return bot.ServeWebhook(ctx, cfg.ListenAddr(), cfg.WebhookURL) })
	} else {
		g.Go(func() error { return bot.Start(ctx) })
	}
	if cfg.AdminUserID != 0 && rec != nil {
		sched := scheduler.New(cfg.ReportSchedule, log.Named("scheduler"))
		sched.SetReportFunction(bot.SendDailyReport)
		g.Go(func() error { return sched.Run(ctx) })
	}
	if watcher != nil {
		g.Go(func() error { return watcher.Watch(ctx) })
	}

	err = g.Wait()
	log.Info("shutting down")
	return err
}

// openSessions prefers Redis when REDIS_URL is set so sessions survive restarts.
func openSessions(ctx context.Context, cfg *config.Config) (conversation.SessionStore, func(), error) {
	if cfg.RedisURL == "" {
		return conversation.NewMemoryStore(cfg.SessionTTL), func() {}, nil
	}
	rs, err := conversation.NewRedisStoreFromURL(ctx, cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}
	return rs, func() { _ = rs.Close() }, nil
}

func backendName(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}
