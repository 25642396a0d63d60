package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/storyboarder/ai-service/internal/model"
)

const (
	TaskTypeStoryboard = "storyboard:process"
	QueueStoryboard    = "storyboard"
)

// Enqueuer hands tasks to a queue. *asynq.Client satisfies it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// StoryboardTaskPayload is the body of a storyboard:process task.
type StoryboardTaskPayload struct {
	JobID   string                  `json:"jobId"`
	Request model.StoryboardRequest `json:"request"`
}

// StoryboardService manages scene-to-storyboard jobs.
type StoryboardService struct {
	store    JobStore
	queue    Enqueuer
	maxRetry int
	logger   *zap.Logger
}

func NewStoryboardService(store JobStore, queue Enqueuer, maxRetry int, logger *zap.Logger) *StoryboardService {
	return &StoryboardService{
		store:    store,
		queue:    queue,
		maxRetry: maxRetry,
		logger:   logger.Named("storyboard"),
	}
}

// Start records a queued job and enqueues it.
func (s *StoryboardService) Start(ctx context.Context, req *model.StoryboardRequest) (*model.StoryboardStartResponse, error) {
	jobID := uuid.New().String()
	now := time.Now().UTC()

	payload, err := json.Marshal(StoryboardTaskPayload{JobID: jobID, Request: *req})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	job := &model.Job{
		ID:        jobID,
		Type:      model.JobTypeStoryboard,
		Status:    model.JobStatusQueued,
		Payload:   payload,
		CreatedAt: now,
	}
	if err := s.store.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	_, err = s.queue.EnqueueContext(ctx, asynq.NewTask(TaskTypeStoryboard, payload),
		asynq.Queue(QueueStoryboard),
		asynq.MaxRetry(s.maxRetry),
		asynq.Retention(jobTTL),
	)
	if err != nil {
		_ = s.Fail(ctx, jobID, "Failed to enqueue job")
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	s.logger.Info("storyboard job queued", zap.String("jobId", jobID), zap.String("sceneId", req.SceneID))
	return &model.StoryboardStartResponse{
		JobID:     jobID,
		Status:    model.JobStatusQueued,
		CreatedAt: now,
	}, nil
}

// Status returns the current state of a job.
func (s *StoryboardService) Status(ctx context.Context, jobID string) (*model.StoryboardStatusResponse, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return &model.StoryboardStatusResponse{
		JobID:       job.ID,
		Status:      job.Status,
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
		RetryCount:  job.RetryCount,
	}, nil
}

// Result returns the frames of a succeeded job.
func (s *StoryboardService) Result(ctx context.Context, jobID string) (*model.StoryboardResult, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusSucceeded {
		return nil, ErrJobNotCompleted
	}

	var result model.StoryboardResult
	if err := json.Unmarshal(job.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &result, nil
}

// Cancel marks a queued or running job canceled. The worker notices on its
// next progress update and stops.
func (s *StoryboardService) Cancel(ctx context.Context, jobID string) (*model.StoryboardCancelResponse, error) {
	_, err := s.store.Update(ctx, jobID, func(job *model.Job) error {
		if job.Status.Terminal() {
			return ErrJobAlreadyFinished
		}
		now := time.Now().UTC()
		job.Status = model.JobStatusCanceled
		job.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("storyboard job canceled", zap.String("jobId", jobID))
	return &model.StoryboardCancelResponse{
		Success: true,
		JobID:   jobID,
		Status:  model.JobStatusCanceled,
	}, nil
}

// UpdateProgress records progress (called by worker). It returns
// ErrJobAlreadyFinished once the job was canceled.
func (s *StoryboardService) UpdateProgress(ctx context.Context, jobID string, progress int, step string) error {
	return s.update(ctx, jobID, func(job *model.Job) {
		job.Progress = progress
		job.CurrentStep = step
		if job.Status == model.JobStatusQueued {
			now := time.Now().UTC()
			job.Status = model.JobStatusRunning
			job.StartedAt = &now
		}
	})
}

// Complete stores the result and marks the job succeeded (called by worker).
func (s *StoryboardService) Complete(ctx context.Context, jobID string, result *model.StoryboardResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return s.update(ctx, jobID, func(job *model.Job) {
		now := time.Now().UTC()
		job.Status = model.JobStatusSucceeded
		job.Progress = 100
		job.CurrentStep = ""
		job.Error = nil
		job.Result = data
		job.CompletedAt = &now
	})
}

// Fail marks the job failed (called by worker).
func (s *StoryboardService) Fail(ctx context.Context, jobID, errMsg string) error {
	return s.update(ctx, jobID, func(job *model.Job) {
		now := time.Now().UTC()
		job.Status = model.JobStatusFailed
		job.Error = &errMsg
		job.CompletedAt = &now
	})
}

// RecordRetry notes a failed attempt that the queue will retry.
func (s *StoryboardService) RecordRetry(ctx context.Context, jobID string, attempt int, errMsg string) error {
	return s.update(ctx, jobID, func(job *model.Job) {
		job.RetryCount = attempt
		job.Error = &errMsg
		job.CurrentStep = "Retrying..."
	})
}

// update applies fn to a job that has not finished yet.
func (s *StoryboardService) update(ctx context.Context, jobID string, fn func(job *model.Job)) error {
	_, err := s.store.Update(ctx, jobID, func(job *model.Job) error {
		if job.Status.Terminal() {
			return ErrJobAlreadyFinished
		}
		fn(job)
		return nil
	})
	return err
}

// Canceled reports whether the job was canceled.
func (s *StoryboardService) Canceled(ctx context.Context, jobID string) bool {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return false
	}
	return job.Status == model.JobStatusCanceled
}
