package processor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"aichess/internal/server/engine"
)

const defaultTaskTimeout = 30 * time.Second

// EngineTask contains a computer move request and its response channel
type EngineTask struct {
	GameID   string
	Request  engine.Request
	Response chan<- EngineResult
}

// EngineResult contains the outcome of a proposal
type EngineResult struct {
	GameID   string
	Proposal engine.Proposal
	Error    error
}

// EngineQueue runs proposals on a fixed pool of workers
type EngineQueue struct {
	tasks   chan EngineTask
	workers int
	factory engine.Factory
	timeout time.Duration
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.RWMutex
	closed  bool
}

// NewEngineQueue creates a queue whose workers each own a proposer from factory
func NewEngineQueue(workerCount int, factory engine.Factory) *EngineQueue {
	if workerCount < 1 {
		workerCount = 2
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &EngineQueue{
		tasks:   make(chan EngineTask, 100),
		workers: workerCount,
		factory: factory,
		timeout: defaultTaskTimeout,
		ctx:     ctx,
		cancel:  cancel,
	}

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	return q
}

func (q *EngineQueue) worker(id int) {
	defer q.wg.Done()

	eng, err := q.factory()
	if err != nil {
		log.Printf("Worker %d failed to initialize engine: %v", id, err)
		// Fail tasks instead of leaving them queued forever
		for {
			select {
			case task, ok := <-q.tasks:
				if !ok {
					return
				}
				q.reply(task, EngineResult{GameID: task.GameID, Error: fmt.Errorf("engine unavailable: %w", err)})
			case <-q.ctx.Done():
				return
			}
		}
	}
	defer eng.Close()

	for {
		select {
		case task, ok := <-q.tasks:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(q.ctx, q.timeout)
			proposal, err := eng.Propose(ctx, task.Request)
			cancel()
			q.reply(task, EngineResult{GameID: task.GameID, Proposal: proposal, Error: err})

		case <-q.ctx.Done():
			return
		}
	}
}

// reply delivers a result unless the receiver abandoned it
func (q *EngineQueue) reply(task EngineTask, result EngineResult) {
	select {
	case task.Response <- result:
	case <-time.After(100 * time.Millisecond):
	}
}

// Submit adds a task to the queue
func (q *EngineQueue) Submit(task EngineTask) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is shutting down")
	}

	select {
	case q.tasks <- task:
		return nil
	default:
		return fmt.Errorf("queue is full")
	}
}

// SubmitAsync submits a request and invokes callback with the result or a timeout error
func (q *EngineQueue) SubmitAsync(gameID string, req engine.Request, callback func(EngineResult)) error {
	respChan := make(chan EngineResult, 1)

	if err := q.Submit(EngineTask{GameID: gameID, Request: req, Response: respChan}); err != nil {
		return err
	}

	go func() {
		wait := q.timeout + req.MoveTime + time.Second
		select {
		case result := <-respChan:
			callback(result)
		case <-time.After(wait):
			callback(EngineResult{GameID: gameID, Error: fmt.Errorf("engine timeout")})
		}
	}()

	return nil
}

// Propose runs a request synchronously through the pool
func (q *EngineQueue) Propose(ctx context.Context, gameID string, req engine.Request) (engine.Proposal, error) {
	respChan := make(chan EngineResult, 1)
	if err := q.Submit(EngineTask{GameID: gameID, Request: req, Response: respChan}); err != nil {
		return engine.Proposal{}, err
	}

	select {
	case result := <-respChan:
		return result.Proposal, result.Error
	case <-ctx.Done():
		return engine.Proposal{}, ctx.Err()
	}
}

// Shutdown stops the workers and closes their proposers
func (q *EngineQueue) Shutdown(timeout time.Duration) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.cancel()
		close(q.tasks)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
