package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codecamp/internal/common"
	"codecamp/internal/domain/model"
	"codecamp/internal/domain/repository"
	"codecamp/internal/platform/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskPusher is the producer side of the notification queue.
type TaskPusher interface {
	Push(ctx context.Context, task any) error
}

const enqueueTimeout = 2 * time.Second

type NotificationService struct {
	queue     TaskPusher
	notifRepo repository.NotificationRepository
	failures  repository.FailureLog
	now       func() time.Time
}

func NewNotificationService(queue TaskPusher, notifRepo repository.NotificationRepository, failures repository.FailureLog) *NotificationService {
	return &NotificationService{
		queue:     queue,
		notifRepo: notifRepo,
		failures:  failures,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// EmitAchievement queues a first-solve notification. It never fails the
// caller: enqueue errors go to the failure log.
func (s *NotificationService) EmitAchievement(ctx context.Context, userID string, problem *model.Problem, points int) {
	task := model.AchievementTask{
		ID:           uuid.NewString(),
		UserID:       userID,
		ProblemID:    problem.ID,
		ProblemTitle: problem.Title,
		Points:       points,
		CreatedAt:    s.now(),
	}

	// the submission response may already be on its way; don't inherit its cancellation
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
	defer cancel()

	if err := s.queue.Push(ctx, task); err != nil {
		logger.Error(ctx, "failed to enqueue achievement notification",
			zap.String("task_id", task.ID),
			zap.String("problem_id", problem.ID),
			zap.Error(err))
		s.RecordFailure(ctx, task, model.FailureStageEnqueue, err)
		return
	}
	logger.Debug(ctx, "achievement notification queued", zap.String("task_id", task.ID))
}

// Deliver turns a task into a stored notification. Redelivery of an already
// stored task is a no-op.
func (s *NotificationService) Deliver(ctx context.Context, task model.AchievementTask) error {
	n := &model.Notification{
		ID:        task.ID,
		UserID:    task.UserID,
		Type:      model.NotificationTypeAchievement,
		Title:     "Problem solved!",
		Message:   fmt.Sprintf("You solved %q and earned %d points.", task.ProblemTitle, task.Points),
		Points:    task.Points,
		CreatedAt: s.now(),
	}
	if err := s.notifRepo.Create(ctx, n); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil
		}
		return err
	}
	return nil
}

func (s *NotificationService) RecordFailure(ctx context.Context, task model.AchievementTask, stage string, cause error) {
	entry := &model.TaskFailure{
		ID:       uuid.NewString(),
		Task:     task,
		Stage:    stage,
		Error:    cause.Error(),
		FailedAt: s.now(),
	}
	if err := s.failures.Record(ctx, entry); err != nil {
		// last resort: the log line is the only trace left
		logger.Error(ctx, "failed to record notification failure",
			zap.String("task_id", task.ID),
			zap.String("stage", stage),
			zap.NamedError("cause", cause),
			zap.Error(err))
	}
}

func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	return s.notifRepo.ListByUser(ctx, userID, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.notifRepo.MarkRead(ctx, userID, id)
}

func (s *NotificationService) RecentFailures(ctx context.Context, limit int) ([]model.TaskFailure, error) {
	return s.failures.Recent(ctx, limit)
}
