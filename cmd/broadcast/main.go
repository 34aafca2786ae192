package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/RiskForecast/internal/config"
	"github.com/Alias1177/RiskForecast/internal/forecast"
	"github.com/Alias1177/RiskForecast/internal/notify"
	"github.com/Alias1177/RiskForecast/internal/platform/http"
	"github.com/Alias1177/RiskForecast/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if cfg.TelegramBotToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN not set in environment")
	}
	if len(cfg.TelegramChatIDs) == 0 {
		log.Fatal().Msg("TELEGRAM_CHAT_IDS not set in environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("Failed to open forecast store")
	}
	defer store.Close()

	forecasts, err := store.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load forecasts")
	}

	now := time.Now().UTC()
	due := forecast.Due(forecasts, now, false)
	log.Info().Int("forecasts", len(forecasts)).Int("due", len(due)).Msg("Checked forecast horizons")
	if len(due) == 0 {
		fmt.Println("Nothing is due, no reminder sent")
		return
	}

	client := http.NewClient(http.ClientOptions{
		Timeout:        time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec: cfg.RequestsPerSec,
	})
	api, err := tgbotapi.NewBotAPIWithClient(cfg.TelegramBotToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}

	res := notify.Broadcast(ctx, api, cfg.TelegramChatIDs, notify.ReminderText(due, now))

	log.Info().Int("sent", res.Sent).Int("failed", res.Failed).Msg("Broadcast completed")
	fmt.Printf("Reminder for %d forecast(s): %d sent, %d failed out of %d chats\n",
		len(due), res.Sent, res.Failed, len(cfg.TelegramChatIDs))
	if res.Failed > 0 {
		os.Exit(1)
	}
}
