package notify

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/metrics"
	"go.uber.org/zap"
)

// Dispatcher очередь уведомлений с одним воркером.
// Notify никогда не блокирует вызывающего: при полной очереди событие отбрасывается.
type Dispatcher struct {
	sender  Sender
	queue   chan Event
	timeout time.Duration
	logger  *zap.Logger
}

func NewDispatcher(sender Sender, queueSize int, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Dispatcher{
		sender:  sender,
		queue:   make(chan Event, queueSize),
		timeout: timeout,
		logger:  logger,
	}
}

// Notify ставит событие в очередь
func (d *Dispatcher) Notify(event Event) {
	select {
	case d.queue <- event:
	default:
		metrics.RecordNotification(d.sender.Name(), metrics.OutcomeDropped)
		d.logger.Warn("Notification queue is full, event dropped",
			zap.String("event_id", event.ID.String()),
			zap.String("kind", string(event.Kind)),
		)
	}
}

// Run обрабатывает очередь до отмены ctx, затем дорабатывает то, что уже в очереди
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("Starting notification dispatcher")

	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		case <-ctx.Done():
			d.drain()
			d.logger.Info("Notification dispatcher stopped")
			return nil
		}
	}
}

func (d *Dispatcher) drain() {
	for n := len(d.queue); n > 0; n-- {
		select {
		case event := <-d.queue:
			d.deliver(event)
		default:
			return
		}
	}
}

// deliver не зависит от контекста Run: при остановке очередь дорабатывается с тем же таймаутом
func (d *Dispatcher) deliver(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sender.Send(ctx, event); err != nil {
		d.logger.Warn("Failed to deliver notification",
			zap.String("event_id", event.ID.String()),
			zap.String("kind", string(event.Kind)),
			zap.String("recipient_id", event.Recipient.UserID.String()),
			zap.Error(err),
		)
		return
	}

	d.logger.Debug("Notification delivered",
		zap.String("event_id", event.ID.String()),
		zap.String("kind", string(event.Kind)),
	)
}
