// Package notify sends outcome reminders for forecasts whose horizon has passed.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/RiskForecast/models"
)

// Sender is the part of the Telegram bot API used to deliver messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Result counts delivered and failed messages of one broadcast.
type Result struct {
	Sent   int
	Failed int
}

// ReminderText lists the due forecasts with the command that resolves each one.
// It returns "" when nothing is due.
func ReminderText(due []models.Forecast, now time.Time) string {
	if len(due) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d forecast(s) are waiting for an outcome:\n", len(due))
	for _, f := range due {
		b.WriteString("\n")
		b.WriteString(Line(f, now))
		fmt.Fprintf(&b, "\n  /resolve %s <0|1>", f.ID)
	}
	return b.String()
}

// Line is a one-line summary of f for chat messages.
func Line(f models.Forecast, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "• %s [%s/%s, %s]", f.DisplayName(), f.Type, f.OutcomeClass, f.ComparisonLevel)
	if f.Probability != nil {
		fmt.Fprintf(&b, " p=%.2f", *f.Probability)
	}
	if f.EvaluationMode == models.ModeFixed && f.HorizonEnd != nil {
		days := int(now.Sub(*f.HorizonEnd).Hours() / 24)
		switch {
		case days > 0:
			fmt.Fprintf(&b, ", horizon ended %d day(s) ago", days)
		case !f.HorizonEnd.After(now):
			b.WriteString(", horizon ended today")
		default:
			fmt.Fprintf(&b, ", horizon ends %s", f.HorizonEnd.Format("2006-01-02"))
		}
	} else {
		fmt.Fprintf(&b, ", %s horizon", strings.ToLower(string(f.EvaluationMode)))
	}
	return b.String()
}

// Broadcast sends text to every chat. A failed chat is logged and counted;
// the remaining chats are still tried. Cancelling ctx stops the loop.
func Broadcast(ctx context.Context, sender Sender, chatIDs []int64, text string) Result {
	logger := log.With().Str("component", "notify").Logger()

	var res Result
	for i, chatID := range chatIDs {
		if ctx.Err() != nil {
			res.Failed += len(chatIDs) - i
			break
		}
		if _, err := sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send reminder")
			res.Failed++
			continue
		}
		logger.Debug().Int64("chat_id", chatID).Msgf("Reminder sent [%d/%d]", i+1, len(chatIDs))
		res.Sent++
	}
	return res
}
