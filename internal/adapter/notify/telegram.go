package notify

import (
	"context"
	"fmt"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/semmidev/vigil/internal/config"
)

// Telegram bot API caps document uploads at 50MB.
const maxFileSizeMB = 50

// Telegram delivers backup outcome notifications, optionally attaching the
// artifact itself when it fits under the bot API size cap.
type Telegram struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	sendFile bool
}

func NewTelegram(cfg *config.TelegramConfig) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	var chatID int64
	if _, err := fmt.Sscanf(cfg.ChatID, "%d", &chatID); err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", cfg.ChatID, err)
	}

	return &Telegram{
		bot:      bot,
		chatID:   chatID,
		sendFile: cfg.SendFile,
	}, nil
}

func (t *Telegram) Notify(ctx context.Context, message string) error {
	msg := tgbotapi.NewMessage(t.chatID, message)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	return nil
}

func (t *Telegram) SendFile(ctx context.Context, path, caption string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	sizeMB := float64(info.Size()) / (1024 * 1024)
	if !t.sendFile || sizeMB > maxFileSizeMB {
		return t.Notify(ctx, fmt.Sprintf("%s\nSize: %.2f MB", caption, sizeMB))
	}

	doc := tgbotapi.NewDocument(t.chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	if _, err := t.bot.Send(doc); err != nil {
		return fmt.Errorf("failed to send telegram file: %w", err)
	}

	return nil
}
