package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Pruner чистит состояние, не использованное дольше idle
type Pruner interface {
	Prune(idle time.Duration) int
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	limiter  Pruner
	interval time.Duration
	idle     time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(limiter Pruner, interval, idle time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		limiter:  limiter,
		interval: interval,
		idle:     idle,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))

	go s.runPruneTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runPruneTask периодически удаляет лимитеры неактивных клиентов
func (s *Scheduler) runPruneTask(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.prune()
		case <-s.stopChan:
			s.logger.Info("Rate limiter cleanup task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Rate limiter cleanup task cancelled")
			return
		}
	}
}

func (s *Scheduler) prune() {
	if removed := s.limiter.Prune(s.idle); removed > 0 {
		s.logger.Debug("Idle rate limiters pruned", zap.Int("removed", removed))
	}
}
