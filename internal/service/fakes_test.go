package service

import (
	"context"
	"io"
	"sync"

	"github.com/hibiken/asynq"

	"github.com/storyboarder/ai-service/internal/client"
)

type fakeText struct {
	out string
	err error
}

func (f *fakeText) Complete(_ context.Context, _ client.TextRequest) (string, error) {
	return f.out, f.err
}

func (f *fakeText) IsConfigured() bool { return true }

type fakeImages struct {
	mu    sync.Mutex
	calls []client.ImageRequest
	url   string
	err   error
}

func (f *fakeImages) GenerateImage(_ context.Context, req client.ImageRequest) (*client.ImageResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &client.ImageResult{URL: f.url}, nil
}

func (f *fakeImages) IsConfigured() bool { return true }

type fakeArchiver struct {
	url string
	err error
}

func (f *fakeArchiver) Archive(_ context.Context, _ string) (string, error) {
	return f.url, f.err
}

type fakeStore struct {
	key         string
	contentType string
	body        []byte
}

func (f *fakeStore) Upload(_ context.Context, key string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.key = key
	f.contentType = contentType
	f.body = data
	return f.PublicURL(key), nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueStoryboard}, nil
}
