package workers

import (
	"sync"

	"github.com/rs/zerolog"
)

// Task is a unit of background work tied to a chat session.
type Task struct {
	SessionID string
	Run       func()
}

// Pool runs background tasks on a fixed set of workers. Tasks for the same
// session hash to the same worker, so per-session work stays ordered.
type Pool struct {
	numWorkers int
	queues     []chan Task
	wg         sync.WaitGroup
	log        zerolog.Logger
}

func NewPool(n int, log zerolog.Logger) *Pool {
	if n <= 0 {
		n = 1
	}
	p := &Pool{
		numWorkers: n,
		queues:     make([]chan Task, n),
		log:        log,
	}

	for i := 0; i < n; i++ {
		ch := make(chan Task, 100)
		p.queues[i] = ch

		p.wg.Add(1)
		go func(id int, q chan Task) {
			defer p.wg.Done()
			for task := range q {
				p.log.Debug().Int("worker", id).Str("session_id", task.SessionID).Msg("processing task")
				if task.Run != nil {
					task.Run()
				}
			}
		}(i, ch)
	}

	return p
}

func (p *Pool) Dispatch(sessionID string, fn func()) {
	workerID := int(hashString(sessionID)) % p.numWorkers
	p.queues[workerID] <- Task{SessionID: sessionID, Run: fn}
}

func (p *Pool) Stop() {
	for _, q := range p.queues {
		close(q)
	}
	p.wg.Wait()
}

// FNV-1a.
func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
