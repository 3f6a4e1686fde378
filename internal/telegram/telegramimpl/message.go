package telegramimpl

import (
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/v2ex-feed-telegram-bot/internal/telegram"
)

// SendChannelMessage sends an HTML message to the configured channel chat.
// Flood-control responses surface as *telegram.FloodError carrying the wait
// the API mandated; everything else is wrapped and returned as-is.
func (tg *TelegramImpl) SendChannelMessage(text string) error {
	msg := tgbotapi.NewMessage(tg.Config.Telegram.ChatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	_, err := tg.TgBot.Send(msg)
	if err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
			return &telegram.FloodError{
				RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second,
				Err:        err,
			}
		}
		return fmt.Errorf("failed to send channel message: %w", err)
	}

	return nil
}

// SendMessageToUser sends a text message to the configured admin user
func (tg *TelegramImpl) SendMessageToUser(message string) {
	msg := tgbotapi.NewMessage(tg.Config.Telegram.User, message)
	_, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending message to user",
			"userID", tg.Config.Telegram.User,
			"error", err)
		return
	}

	tg.Logger.Info("Message sent to user",
		"userID", tg.Config.Telegram.User)
}
