package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storyboarder/ai-service/internal/model"
)

const (
	jobTTL = 24 * time.Hour

	maxUpdateAttempts = 10
)

// JobMutation changes a job in place. Returning an error aborts the update
// and leaves the stored job untouched.
type JobMutation func(job *model.Job) error

// JobStore persists job records. Update applies mutate atomically with
// respect to other updates of the same job.
type JobStore interface {
	Save(ctx context.Context, job *model.Job) error
	Get(ctx context.Context, jobID string) (*model.Job, error)
	Update(ctx context.Context, jobID string, mutate JobMutation) (*model.Job, error)
}

var errJobContention = errors.New("job update contention")

// RedisJobStore keeps each job as a JSON document that expires after a day.
type RedisJobStore struct {
	redis *redis.Client
}

func NewRedisJobStore(redisClient *redis.Client) *RedisJobStore {
	return &RedisJobStore{redis: redisClient}
}

func (s *RedisJobStore) Save(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, jobKey(job.ID), data, jobTTL).Err()
}

func (s *RedisJobStore) Get(ctx context.Context, jobID string) (*model.Job, error) {
	return readJob(ctx, s.redis, jobID)
}

// Update runs mutate under WATCH on the job key and writes the result in a
// MULTI block, retrying when another writer got there first.
func (s *RedisJobStore) Update(ctx context.Context, jobID string, mutate JobMutation) (*model.Job, error) {
	key := jobKey(jobID)
	var updated *model.Job

	txf := func(tx *redis.Tx) error {
		job, err := readJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if err := mutate(job); err != nil {
			return err
		}
		data, err := json.Marshal(job)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, jobTTL)
			return nil
		})
		if err == nil {
			updated = job
		}
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := s.redis.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("%w: %s", errJobContention, jobID)
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readJob(ctx context.Context, c stringGetter, jobID string) (*model.Job, error) {
	data, err := c.Get(ctx, jobKey(jobID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func jobKey(jobID string) string {
	return fmt.Sprintf("storyboard:job:%s", jobID)
}

// MemoryJobStore keeps jobs in process. It backs the in-process queue used
// when Redis is disabled.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]model.Job
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]model.Job)}
}

func (s *MemoryJobStore) Save(_ context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *MemoryJobStore) Get(_ context.Context, jobID string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return &job, nil
}

func (s *MemoryJobStore) Update(_ context.Context, jobID string, mutate JobMutation) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	if err := mutate(&job); err != nil {
		return nil, err
	}
	s.jobs[jobID] = job
	return &job, nil
}
