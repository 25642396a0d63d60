package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const localQueueName = "local"

// LocalQueue runs tasks in process when no Redis is available. Tasks are
// not persisted or retried and are lost on restart.
type LocalQueue struct {
	handler asynq.Handler
	sem     chan struct{}
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *zap.Logger
}

func NewLocalQueue(concurrency int, logger *zap.Logger) *LocalQueue {
	if concurrency < 1 {
		concurrency = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &LocalQueue{
		sem:    make(chan struct{}, concurrency),
		ctx:    ctx,
		cancel: cancel,
		logger: logger.Named("local-queue"),
	}
}

// SetHandler sets the handler that processes every task. It must be called
// before the first EnqueueContext.
func (q *LocalQueue) SetHandler(h asynq.Handler) {
	q.handler = h
}

// EnqueueContext starts task in the background and returns immediately.
func (q *LocalQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.handler == nil {
		return nil, errors.New("local queue has no handler")
	}
	if q.ctx.Err() != nil {
		return nil, errors.New("local queue is shut down")
	}

	info := &asynq.TaskInfo{
		ID:      uuid.New().String(),
		Queue:   localQueueName,
		Type:    task.Type(),
		Payload: task.Payload(),
		State:   asynq.TaskStatePending,
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()

		select {
		case q.sem <- struct{}{}:
		case <-q.ctx.Done():
			return
		}
		defer func() { <-q.sem }()

		if err := q.handler.ProcessTask(q.ctx, task); err != nil {
			q.logger.Warn("task failed",
				zap.String("taskId", info.ID),
				zap.String("type", info.Type),
				zap.Error(err),
			)
		}
	}()

	return info, nil
}

// Shutdown cancels running tasks and waits for them to return.
func (q *LocalQueue) Shutdown() {
	q.cancel()
	q.wg.Wait()
}
