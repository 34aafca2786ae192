// Package bot answers Telegram commands against the forecast store.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/RiskForecast/internal/forecast"
	"github.com/Alias1177/RiskForecast/internal/notify"
	"github.com/Alias1177/RiskForecast/internal/scoring"
	"github.com/Alias1177/RiskForecast/internal/storage"
	"github.com/Alias1177/RiskForecast/models"
)

const helpText = "Forecast bot commands:\n" +
	"/due - forecasts waiting for an outcome\n" +
	"/show <id> - forecast details\n" +
	"/resolve <id> <0|1> - record the observed outcome\n" +
	"/scores [author|team] - mean Brier score per group"

const errorText = "Sorry, there was an error. Please try again later."

// Handler turns chat commands into store reads and writes. Commands are
// handled one at a time so read-modify-write cycles never interleave.
type Handler struct {
	store  models.ForecastStore
	sender notify.Sender
	policy scoring.Policy
	now    func() time.Time
	logger zerolog.Logger

	mu sync.Mutex
}

// NewHandler creates a Handler. The policy decides which forecasts /scores counts.
func NewHandler(store models.ForecastStore, sender notify.Sender, policy scoring.Policy) *Handler {
	return &Handler{
		store:  store,
		sender: sender,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
		logger: log.With().Str("component", "bot").Logger(),
	}
}

// HandleMessage answers one incoming message. Non-command text is ignored.
func (h *Handler) HandleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message == nil || message.Chat == nil {
		return
	}
	reply := h.Respond(ctx, message.Text)
	if reply == "" {
		return
	}
	if _, err := h.sender.Send(tgbotapi.NewMessage(message.Chat.ID, reply)); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", message.Chat.ID).Msg("Failed to send reply")
	}
}

// Respond returns the reply to a command line, or "" for text that is not a command.
func (h *Handler) Respond(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	command, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]

	h.mu.Lock()
	defer h.mu.Unlock()

	switch command {
	case "/start", "/help":
		return helpText
	case "/due":
		return h.due(ctx)
	case "/show":
		if len(args) != 1 {
			return "Usage: /show <id>"
		}
		return h.show(ctx, args[0])
	case "/resolve":
		if len(args) != 2 {
			return "Usage: /resolve <id> <0|1>"
		}
		return h.resolve(ctx, args[0], args[1])
	case "/scores":
		by := scoring.GroupByAuthor
		if len(args) > 0 {
			by = scoring.GroupBy(strings.ToLower(args[0]))
		}
		if !by.Valid() {
			return "Usage: /scores [author|team]"
		}
		return h.scores(ctx, by)
	}
	return "Unknown command. Send /help for the list of commands."
}

func (h *Handler) due(ctx context.Context) string {
	forecasts, err := h.store.Load(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Error loading forecasts")
		return errorText
	}
	now := h.now()
	text := notify.ReminderText(forecast.Due(forecasts, now, true), now)
	if text == "" {
		return "No forecasts are waiting for an outcome."
	}
	return text
}

func (h *Handler) show(ctx context.Context, id string) string {
	f, err := storage.Find(ctx, h.store, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Sprintf("Forecast %s not found.", id)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("forecast_id", id).Msg("Error loading forecast")
		return errorText
	}
	return notify.Details(f, h.policy)
}

func (h *Handler) resolve(ctx context.Context, id, value string) string {
	outcome, err := strconv.Atoi(value)
	if err != nil || (outcome != 0 && outcome != 1) {
		return "The outcome must be 0 or 1."
	}

	f, err := storage.Find(ctx, h.store, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Sprintf("Forecast %s not found.", id)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("forecast_id", id).Msg("Error loading forecast")
		return errorText
	}

	if err := forecast.Resolve(&f, outcome); err != nil {
		return err.Error()
	}
	if err := storage.Replace(ctx, h.store, f); err != nil {
		h.logger.Error().Err(err).Str("forecast_id", id).Msg("Error saving outcome")
		return errorText
	}
	h.logger.Info().Str("forecast_id", id).Int("outcome", outcome).Str("level", string(f.ComparisonLevel)).Msg("Outcome recorded")

	reply := fmt.Sprintf("Outcome %d recorded for %s. Level: %s.", outcome, f.DisplayName(), f.ComparisonLevel)
	if scoring.IsScorable(f, h.policy) {
		reply += fmt.Sprintf(" Brier score: %.4f.", scoring.BrierScore(*f.Probability, *f.Outcome))
	}
	return reply
}

func (h *Handler) scores(ctx context.Context, by scoring.GroupBy) string {
	forecasts, err := h.store.Load(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Error loading forecasts")
		return errorText
	}

	mean, ok := scoring.Mean(forecasts, h.policy)
	if !ok {
		return "No forecast is scorable yet."
	}

	groups := scoring.Aggregate(forecasts, h.policy, by)
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Mean Brier score: %.4f (%d scored)\n", mean, len(scoring.Evaluate(forecasts, h.policy)))
	if len(names) == 0 {
		fmt.Fprintf(&b, "No scored forecast has a %s.", by)
	}
	for _, name := range names {
		fmt.Fprintf(&b, "\n%s: %.4f", name, groups[name])
	}
	return strings.TrimRight(b.String(), "\n")
}
