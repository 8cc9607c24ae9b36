// Package service hosts the application services that sit between the
// served surfaces and the apply runner.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"autoapply-agent/internal/application/port/input"
	"autoapply-agent/internal/application/port/output"
	"autoapply-agent/internal/domain/entity"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

var (
	ErrQueueClosed = errors.New("run queue is closed")
	ErrRunNotFound = errors.New("run not found")
)

const defaultWorkers = 2

// RunHandle tracks one submitted run. It can be polled through Status and
// Result or awaited through Wait.
type RunHandle struct {
	ID      string
	Request entity.RunRequest

	mu     sync.RWMutex
	status entity.RunStatus
	result *entity.AgentResult
	done   chan struct{}
}

func newRunHandle(req entity.RunRequest) *RunHandle {
	return &RunHandle{
		ID:      uuid.NewString(),
		Request: req,
		status:  entity.RunStatusPending,
		done:    make(chan struct{}),
	}
}

func (h *RunHandle) Status() entity.RunStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// Result returns the final result once the run has completed.
func (h *RunHandle) Result() (*entity.AgentResult, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.result, h.result != nil
}

// Done is closed when the result is available.
func (h *RunHandle) Done() <-chan struct{} {
	return h.done
}

func (h *RunHandle) Wait(ctx context.Context) (*entity.AgentResult, error) {
	select {
	case <-h.done:
		res, _ := h.Result()
		return res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *RunHandle) setRunning() {
	h.mu.Lock()
	h.status = entity.RunStatusRunning
	h.mu.Unlock()
}

func (h *RunHandle) complete(res *entity.AgentResult) {
	h.mu.Lock()
	h.status = entity.RunStatusCompleted
	h.result = res
	h.mu.Unlock()
	close(h.done)
}

// RunQueue executes submitted runs exactly once each, with at most
// workers runs in flight.
type RunQueue struct {
	runner input.ApplyRunner
	logger output.LoggerPort
	sem    *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	runs   map[string]*RunHandle
	closed bool
}

func NewRunQueue(runner input.ApplyRunner, logger output.LoggerPort, workers int) *RunQueue {
	if workers <= 0 {
		workers = defaultWorkers
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RunQueue{
		runner: runner,
		logger: logger,
		sem:    semaphore.NewWeighted(int64(workers)),
		ctx:    ctx,
		cancel: cancel,
		runs:   make(map[string]*RunHandle),
	}
}

// Submit validates req and schedules it. The returned handle is pending
// until a worker slot is free.
func (q *RunQueue) Submit(req entity.RunRequest) (*RunHandle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrQueueClosed
	}

	h := newRunHandle(req)
	q.runs[h.ID] = h
	q.wg.Add(1)
	go q.execute(h)

	q.logger.Info("Run submitted", "run_id", h.ID, "job_url", req.JobURL)
	return h, nil
}

func (q *RunQueue) execute(h *RunHandle) {
	defer q.wg.Done()

	if err := q.sem.Acquire(q.ctx, 1); err != nil {
		q.logger.Warn("Run cancelled before start", "run_id", h.ID, "error", err)
		h.complete(&entity.AgentResult{
			Status: entity.StatusError,
			Log:    []string{},
			Error:  fmt.Sprintf("run cancelled before start: %v", err),
		})
		return
	}
	defer q.sem.Release(1)

	h.setRunning()
	res := q.runner.Run(q.ctx, h.Request)
	if res == nil {
		res = &entity.AgentResult{Status: entity.StatusError, Log: []string{}, Error: "runner returned no result"}
	}
	h.complete(res)

	q.logger.Info("Run completed", "run_id", h.ID, "status", res.Status, "success", res.Success)
}

func (q *RunQueue) Get(id string) (*RunHandle, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	h, ok := q.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return h, nil
}

// Close stops accepting runs and waits for in-flight ones. When ctx expires
// first, running sessions are cancelled and Close still waits for them to
// return before reporting ctx.Err().
func (q *RunQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-finished
		return ctx.Err()
	}
}
