package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codecamp/internal/domain/model"
	"codecamp/internal/platform/logger"
	"codecamp/internal/platform/queue"

	"go.uber.org/zap"
)

// TaskSource is the consumer side of the notification queue.
type TaskSource interface {
	Name() string
	Pop(ctx context.Context, timeout time.Duration, dst any) error
	Requeue(ctx context.Context, task any) error
}

type Deliverer interface {
	Deliver(ctx context.Context, task model.AchievementTask) error
	RecordFailure(ctx context.Context, task model.AchievementTask, stage string, cause error)
}

type NotificationWorker struct {
	source      TaskSource
	deliverer   Deliverer
	maxAttempts int
	popTimeout  time.Duration
	errBackoff  time.Duration
}

func NewNotificationWorker(source TaskSource, deliverer Deliverer, maxAttempts int) *NotificationWorker {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &NotificationWorker{
		source:      source,
		deliverer:   deliverer,
		maxAttempts: maxAttempts,
		popTimeout:  5 * time.Second,
		errBackoff:  5 * time.Second,
	}
}

// Start consumes tasks until ctx is cancelled.
func (w *NotificationWorker) Start(ctx context.Context) {
	logger.Info(ctx, "notification worker started", zap.String("queue", w.source.Name()))
	for {
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "notification worker stopping")
			return
		default:
		}

		_, err := w.RunOnce(ctx)
		if err == nil || errors.Is(err, queue.ErrEmpty) {
			continue
		}
		if ctx.Err() != nil {
			continue
		}
		logger.Error(ctx, "failed to pop notification task", zap.String("queue", w.source.Name()), zap.Error(err))
		select {
		case <-ctx.Done():
		case <-time.After(w.errBackoff):
		}
	}
}

// RunOnce pops and handles at most one task. It reports whether a task was
// taken off the queue.
func (w *NotificationWorker) RunOnce(ctx context.Context) (bool, error) {
	var task model.AchievementTask
	if err := w.source.Pop(ctx, w.popTimeout, &task); err != nil {
		return false, err
	}
	w.handle(ctx, task)
	return true, nil
}

func (w *NotificationWorker) handle(ctx context.Context, task model.AchievementTask) {
	ctx = logger.WithUserID(ctx, task.UserID)
	err := w.deliverer.Deliver(ctx, task)
	if err == nil {
		logger.Debug(ctx, "achievement notification delivered", zap.String("task_id", task.ID))
		return
	}

	task.Attempts++
	if task.Attempts < w.maxAttempts {
		logger.Warn(ctx, "notification delivery failed, requeueing",
			zap.String("task_id", task.ID),
			zap.Int("attempt", task.Attempts),
			zap.Error(err))
		rqErr := w.source.Requeue(ctx, task)
		if rqErr == nil {
			return
		}
		err = fmt.Errorf("%w (requeue: %v)", err, rqErr)
	}

	logger.Error(ctx, "notification delivery abandoned",
		zap.String("task_id", task.ID),
		zap.Int("attempts", task.Attempts),
		zap.Error(err))
	w.deliverer.RecordFailure(ctx, task, model.FailureStageDeliver, err)
}
