package llm

import (
	"context"
	"sync"
)

type HealthScheduler struct {
	mu      sync.Mutex
	monitor *HealthMonitor
	workers map[int64]context.CancelFunc
}

func NewHealthScheduler(monitor *HealthMonitor) *HealthScheduler {
	return &HealthScheduler{monitor: monitor, workers: map[int64]context.CancelFunc{}}
}

func (s *HealthScheduler) EnsureUser(ctx context.Context, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workers[userID]; ok {
		return
	}
	workerCtx, cancel := context.WithCancel(ctx)
	s.workers[userID] = cancel
	go s.monitor.Run(workerCtx, userID)
}
