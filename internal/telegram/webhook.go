package telegram

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// webhookPath embeds the bot token so only Telegram knows the endpoint.
func webhookPath(token string) string {
	return "/webhook/" + token
}

// Router serves the webhook endpoint and a /health heartbeat.
func (b *Bot) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	r.Post("/webhook/{token}", b.handleWebhook)
	return r
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(b.token)) != 1 {
		http.NotFound(w, r)
		return
	}

	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.log.Warn("bad webhook payload", zap.Error(err))
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}

	b.handleUpdate(r.Context(), *update)
	w.WriteHeader(http.StatusOK)
}

// ServeWebhook registers publicURL with Telegram and serves updates on addr until ctx is cancelled.
func (b *Bot) ServeWebhook(ctx context.Context, addr, publicURL string) error {
	wh, err := tgbotapi.NewWebhook(strings.TrimRight(publicURL, "/") + webhookPath(b.token))
	if err != nil {
		return fmt.Errorf("build webhook: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      b.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		b.log.Info("webhook server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("webhook server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown webhook server: %w", err)
	}
	b.log.Info("webhook server stopped")
	return nil
}
