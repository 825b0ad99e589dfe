package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutorhub/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sender канал доставки (лог, email, telegram, брокер)
type Sender interface {
	Name() string
	Send(ctx context.Context, event Event) error
}

// Fanout рассылает событие во все каналы параллельно
type Fanout struct {
	senders []Sender
	logger  *zap.Logger
}

func NewFanout(logger *zap.Logger, senders ...Sender) *Fanout {
	return &Fanout{senders: senders, logger: logger}
}

func (f *Fanout) Name() string {
	return "fanout"
}

// Send ошибка одного канала не отменяет остальные
func (f *Fanout) Send(ctx context.Context, event Event) error {
	errs := make([]error, len(f.senders))

	var g errgroup.Group
	for i, s := range f.senders {
		g.Go(func() error {
			if err := s.Send(ctx, event); err != nil {
				metrics.RecordNotification(s.Name(), metrics.OutcomeFailed)
				errs[i] = fmt.Errorf("%s: %w", s.Name(), err)
				return nil
			}
			metrics.RecordNotification(s.Name(), metrics.OutcomeOK)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// Close закрывает каналы, которые держат соединения
func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.senders {
		if c, ok := s.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", s.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
