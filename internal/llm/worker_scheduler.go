package llm

import (
	"context"
	"sync"

	"mindwell/internal/db"
	"mindwell/internal/realtime"
)

// WorkerScheduler starts one analysis worker per active user, on demand.
type WorkerScheduler struct {
	mu      sync.Mutex
	queue   *Queue
	service *Service
	store   *db.Store
	hub     *realtime.Hub
	workers map[int64]context.CancelFunc
}

func NewWorkerScheduler(queue *Queue, service *Service, store *db.Store, hub *realtime.Hub) *WorkerScheduler {
	return &WorkerScheduler{
		queue:   queue,
		service: service,
		store:   store,
		hub:     hub,
		workers: map[int64]context.CancelFunc{},
	}
}

func (s *WorkerScheduler) EnsureUser(ctx context.Context, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workers[userID]; ok {
		return
	}
	workerCtx, cancel := context.WithCancel(ctx)
	s.workers[userID] = cancel
	worker := &Worker{Queue: s.queue, Service: s.service, DB: s.store, Hub: s.hub, BatchSize: 100}
	go worker.Start(workerCtx, userID)
}

func (s *WorkerScheduler) Stop(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.workers[userID]; ok {
		cancel()
		delete(s.workers, userID)
	}
}
