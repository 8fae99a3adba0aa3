package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EventType - тип доменного события workflow.
type EventType string

const (
	EventWithdrawalCreated   EventType = "withdrawal.created"
	EventWithdrawalApproved  EventType = "withdrawal.approved"
	EventWithdrawalRejected  EventType = "withdrawal.rejected"
	EventWithdrawalCompleted EventType = "withdrawal.completed"
	EventWalletCredited      EventType = "wallet.credited"
)

// Event - доменное событие, испускаемое после коммита транзакции.
type Event struct {
	Type       EventType
	UserID     uuid.UUID
	RequestID  uuid.UUID
	Amount     decimal.Decimal
	Currency   string
	OccurredAt time.Time
}

// Notifier доставляет доменные события внешним получателям.
type Notifier interface {
	Emit(ctx context.Context, event Event) error
}

// Dispatcher рассылает события сконфигурированным нотификаторам
// в отдельной горутине. Доставка best-effort: ошибки логируются
// и никогда не влияют на уже закоммиченную транзакцию.
type Dispatcher struct {
	notifiers []Notifier
	logger    *zap.Logger
	timeout   time.Duration
}

// NewDispatcher создаёт диспетчер событий.
func NewDispatcher(logger *zap.Logger, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		logger:    logger,
		timeout:   5 * time.Second,
	}
}

// Emit отправляет событие всем нотификаторам и сразу возвращает управление.
// Контекст запроса не используется: доставка переживает ответ клиенту.
func (d *Dispatcher) Emit(_ context.Context, event Event) error {
	go d.deliver(event)
	return nil
}

func (d *Dispatcher) deliver(event Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notifier panic recovered",
				zap.String("event", string(event.Type)),
				zap.Any("panic", r),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	for _, n := range d.notifiers {
		if err := n.Emit(ctx, event); err != nil {
			d.logger.Warn("notification delivery failed",
				zap.String("event", string(event.Type)),
				zap.String("user_id", event.UserID.String()),
				zap.Error(err),
			)
		}
	}
}

// LogNotifier пишет события в лог. Всегда включён - события workflow
// попадают в журнал приложения даже без внешних каналов доставки.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier создаёт лог-нотификатор.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Emit пишет событие в лог.
func (n *LogNotifier) Emit(_ context.Context, event Event) error {
	n.logger.Info("domain event",
		zap.String("event", string(event.Type)),
		zap.String("user_id", event.UserID.String()),
		zap.String("request_id", event.RequestID.String()),
		zap.String("amount", event.Amount.String()),
		zap.String("currency", event.Currency),
	)
	return nil
}
