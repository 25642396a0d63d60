package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/storyboarder/ai-service/internal/apperr"
	"github.com/storyboarder/ai-service/internal/metrics"
	"github.com/storyboarder/ai-service/internal/model"
	"github.com/storyboarder/ai-service/internal/service"
)

const errCodeStoryboardFailed = "STORYBOARD_FAILED"

// Broadcaster pushes job events to live subscribers.
type Broadcaster interface {
	BroadcastProgress(jobID string, progress int, status model.JobStatus, step string)
	BroadcastFrame(jobID string, index int, frame model.StoryboardFrame)
	BroadcastComplete(jobID string, result interface{})
	BroadcastError(jobID string, code, message string)
}

// StoryboardWorker processes storyboard jobs
type StoryboardWorker struct {
	storyboards *service.StoryboardService
	pipeline    *Pipeline
	hub         Broadcaster
	logger      *zap.Logger
}

// NewStoryboardWorker creates a new storyboard worker
func NewStoryboardWorker(storyboards *service.StoryboardService, pipeline *Pipeline, hub Broadcaster, logger *zap.Logger) *StoryboardWorker {
	return &StoryboardWorker{
		storyboards: storyboards,
		pipeline:    pipeline,
		hub:         hub,
		logger:      logger.Named("storyboard-worker"),
	}
}

// ProcessTask handles storyboard task processing
func (w *StoryboardWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload service.StoryboardTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %v: %w", err, asynq.SkipRetry)
	}

	jobID := payload.JobID
	log := w.logger.With(zap.String("jobId", jobID))

	if w.storyboards.Canceled(ctx, jobID) {
		log.Info("skipping canceled storyboard job")
		return nil
	}
	log.Info("starting storyboard job")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress := func(pct int, step string) error {
		if err := w.storyboards.UpdateProgress(ctx, jobID, pct, step); err != nil {
			if errors.Is(err, service.ErrJobAlreadyFinished) {
				cancel()
				return err
			}
			log.Warn("failed to update progress", zap.Error(err))
		}
		w.hub.BroadcastProgress(jobID, pct, model.JobStatusRunning, step)
		return nil
	}
	onFrame := func(index int, frame model.StoryboardFrame) {
		w.hub.BroadcastFrame(jobID, index, frame)
	}

	result, err := w.pipeline.Run(runCtx, jobID, payload.Request, progress, onFrame)
	if err != nil {
		if w.storyboards.Canceled(ctx, jobID) {
			log.Info("storyboard job canceled")
			metrics.StoryboardJobsTotal.WithLabelValues(string(model.JobStatusCanceled)).Inc()
			return nil
		}
		return w.handleFailure(ctx, jobID, err)
	}

	if err := w.storyboards.Complete(ctx, jobID, result); err != nil {
		if errors.Is(err, service.ErrJobAlreadyFinished) {
			log.Info("storyboard job canceled before completion")
			metrics.StoryboardJobsTotal.WithLabelValues(string(model.JobStatusCanceled)).Inc()
			return nil
		}
		return w.handleFailure(ctx, jobID, fmt.Errorf("failed to save result: %w", err))
	}

	metrics.StoryboardJobsTotal.WithLabelValues(string(model.JobStatusSucceeded)).Inc()
	w.hub.BroadcastComplete(jobID, result)
	log.Info("storyboard job completed",
		zap.Int("frames", len(result.Frames)),
		zap.Int("failed", result.FailedCount),
	)
	return nil
}

// handleFailure records a retry while attempts remain and fails the job
// otherwise. Errors the next attempt cannot fix skip the remaining retries.
func (w *StoryboardWorker) handleFailure(ctx context.Context, jobID string, err error) error {
	msg := apperr.Message(err, "Storyboard generation failed")
	permanent := errors.Is(err, apperr.ErrUnsupportedProvider) || errors.Is(err, apperr.ErrValidation)

	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	if !permanent && retried < maxRetry {
		w.logger.Warn("storyboard attempt failed, will retry",
			zap.String("jobId", jobID),
			zap.Int("attempt", retried+1),
			zap.Error(err),
		)
		if rerr := w.storyboards.RecordRetry(ctx, jobID, retried+1, msg); rerr != nil {
			w.logger.Warn("failed to record retry", zap.String("jobId", jobID), zap.Error(rerr))
		}
		w.hub.BroadcastProgress(jobID, 0, model.JobStatusRunning, "Retrying...")
		return err
	}

	w.logger.Error("storyboard job failed", zap.String("jobId", jobID), zap.Error(err))
	if ferr := w.storyboards.Fail(ctx, jobID, msg); ferr != nil {
		w.logger.Warn("failed to mark job as failed", zap.String("jobId", jobID), zap.Error(ferr))
	}
	metrics.StoryboardJobsTotal.WithLabelValues(string(model.JobStatusFailed)).Inc()
	w.hub.BroadcastError(jobID, errCodeStoryboardFailed, msg)

	if permanent {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return err
}
