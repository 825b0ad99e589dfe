package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// messageSender часть API бота, нужная для отправки
type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramSender отправляет уведомление в личный чат получателя
type TelegramSender struct {
	bot messageSender
}

func NewTelegramSender(token string) (*TelegramSender, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramSender{bot: b}, nil
}

func (s *TelegramSender) Name() string {
	return "telegram"
}

func (s *TelegramSender) Send(ctx context.Context, event Event) error {
	if event.Recipient.TelegramID == nil {
		// Не ошибка канала: просто некому писать
		return nil
	}

	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: *event.Recipient.TelegramID,
		Text:   FormatMessage(event),
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// FormatMessage текст уведомления для мессенджеров
func FormatMessage(event Event) string {
	title := event.Context[CtxPostTitle]
	switch event.Kind {
	case KindApplicationAccepted:
		msg := fmt.Sprintf("✅ Your application for \"%s\" has been approved.", title)
		if phone := event.Context[CtxPosterPhone]; phone != "" {
			msg += "\nContact: " + phone
		}
		return msg
	case KindApplicationPaid:
		return fmt.Sprintf("💳 %s paid for the application to \"%s\". The post is now active.",
			event.Context[CtxTutorName], title)
	}
	return fmt.Sprintf("Notification: %s", event.Kind)
}
