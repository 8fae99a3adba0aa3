package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier отправляет события workflow в служебный чат
// администраторов. Канал опциональный и включается конфигурацией.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier создаёт нотификатор поверх Telegram Bot API.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// Emit отправляет сообщение о событии в чат администраторов.
func (n *TelegramNotifier) Emit(_ context.Context, event Event) error {
	text := fmt.Sprintf("%s\nuser: %s\nrequest: %s\namount: %s %s",
		eventTitle(event.Type),
		event.UserID,
		event.RequestID,
		event.Amount.StringFixed(2),
		event.Currency,
	)

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	return nil
}

func eventTitle(t EventType) string {
	switch t {
	case EventWithdrawalCreated:
		return "Новая заявка на вывод средств"
	case EventWithdrawalApproved:
		return "Заявка на вывод одобрена"
	case EventWithdrawalRejected:
		return "Заявка на вывод отклонена"
	case EventWithdrawalCompleted:
		return "Вывод средств завершён"
	case EventWalletCredited:
		return "Зачисление на кошелёк"
	default:
		return string(t)
	}
}
