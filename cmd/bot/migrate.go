package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"interview-bot/internal/config"
	"interview-bot/internal/logging"
	"interview-bot/internal/users"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the users table in DATABASE_URL and exit",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log, err := logging.New("info")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	dsn, err := config.DatabaseURL()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	store, err := users.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("open user store: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	log.Info("users table ready", zap.String("backend", backendName(dsn)))
	return nil
}
