package telegram

import (
	"context"
	"os"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type ITelegram interface {
	Send(ctx context.Context, subject, body string) error
}

type telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *logrus.Logger
}

// New connects with TELEGRAM_BOT_TOKEN and sends to TELEGRAM_CHAT_ID. It
// returns nil, nil when the channel is not configured.
func New(log *logrus.Logger) (ITelegram, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	rawChat := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || rawChat == "" {
		return nil, nil
	}

	chatID, err := strconv.ParseInt(rawChat, 10, 64)
	if err != nil {
		return nil, err
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"bot":     bot.Self.UserName,
		"chat_id": chatID,
	}).Info("Telegram notifications enabled")

	return &telegram{bot: bot, chatID: chatID, log: log}, nil
}

func (t *telegram) Send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, "*"+tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, subject)+"*\n"+
		tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, body))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	_, err := t.bot.Send(msg)
	return err
}
