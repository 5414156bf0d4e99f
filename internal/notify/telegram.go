// Package notify sends operator notifications.
package notify

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/logger"
)

// Notifier delivers a text message to the operator.
type Notifier interface {
	Notify(text string)
}

// Nop discards every message.
type Nop struct{}

func (Nop) Notify(string) {}

// Telegram posts messages to a single chat through a bot.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram authorizes the bot behind token.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	logger.Infof("Telegram bot authorized as %s", bot.Self.UserName)
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Notify(text string) {
	if t.chatID == 0 {
		logger.Warningf("Telegram chat id not configured, dropping notification")
		return
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		logger.Errorf("Error sending notification: %v", err)
	}
}
