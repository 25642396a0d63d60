package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storyboarder/ai-service/internal/config"
)

func newTestOpenAIClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIClient(&config.OpenAIConfig{
		APIKey:       "sk-test",
		BaseURL:      srv.URL + "/v1",
		TextTimeout:  5 * time.Second,
		ImageTimeout: 5 * time.Second,
	}, zap.NewNop())
}

func TestOpenAIClient_Complete(t *testing.T) {
	var got map[string]interface{}
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"gpt-4-turbo",
			"choices":[{"index":0,"message":{"role":"assistant","content":"{\"suggestions\":[]}"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	})

	out, err := c.Complete(context.Background(), TextRequest{
		Model:       "gpt-4-turbo",
		System:      "system prompt",
		User:        "user prompt",
		Temperature: 0.7,
		JSONOutput:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"suggestions":[]}`, out)

	assert.Equal(t, "gpt-4-turbo", got["model"])
	assert.InDelta(t, 0.7, got["temperature"], 0.0001)
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, got["response_format"])
	messages := got["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "user prompt", messages[1].(map[string]interface{})["content"])
}

func TestOpenAIClient_CompleteEmpty(t *testing.T) {
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[]}`))
	})

	_, err := c.Complete(context.Background(), TextRequest{Model: "gpt-3.5-turbo", User: "x"})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
	msg, ok := ProviderMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "No response from AI service", msg)
}

func TestOpenAIClient_GenerateImage(t *testing.T) {
	var got map[string]interface{}
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[{"url":"https://img.example.com/a.png","revised_prompt":"revised"}]}`))
	})

	res, err := c.GenerateImage(context.Background(), ImageRequest{
		Model:   "dall-e-3",
		Prompt:  "a storyboard frame",
		Size:    "1792x1024",
		Quality: "hd",
		Style:   "natural",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/a.png", res.URL)
	assert.Equal(t, "revised", res.RevisedPrompt)

	assert.Equal(t, "dall-e-3", got["model"])
	assert.Equal(t, "hd", got["quality"])
	assert.Equal(t, "natural", got["style"])
	assert.Equal(t, "1792x1024", got["size"])
	assert.EqualValues(t, 1, got["n"])
}

func TestOpenAIClient_GenerateImageNoData(t *testing.T) {
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[]}`))
	})

	res, err := c.GenerateImage(context.Background(), ImageRequest{Model: "dall-e-3", Prompt: "p"})
	require.NoError(t, err)
	assert.Empty(t, res.URL)
}

func TestOpenAIClient_APIErrorMessage(t *testing.T) {
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Your request was rejected by the safety system.","type":"invalid_request_error","code":"content_policy_violation"}}`))
	})

	_, err := c.GenerateImage(context.Background(), ImageRequest{Model: "dall-e-3", Prompt: "p"})
	require.Error(t, err)

	msg, ok := ProviderMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Your request was rejected by the safety system.", msg)
}

func TestProviderMessage_Unknown(t *testing.T) {
	_, ok := ProviderMessage(context.DeadlineExceeded)
	assert.False(t, ok)
}

func TestGeminiClient_Unconfigured(t *testing.T) {
	c, err := NewGeminiClient(context.Background(), &config.GeminiConfig{}, 0, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, c.IsConfigured())

	_, err = c.Complete(context.Background(), TextRequest{Model: "gemini-1.5-flash", User: "x"})
	assert.ErrorIs(t, err, ErrGeminiNotConfigured)
}

func TestMockClients(t *testing.T) {
	text, err := MockTextCompleter{}.Complete(context.Background(), TextRequest{})
	require.NoError(t, err)
	assert.Contains(t, text, `"suggestions"`)

	a, err := MockImageGenerator{}.GenerateImage(context.Background(), ImageRequest{Model: "dall-e-3", Prompt: "one", Size: "1792x1024"})
	require.NoError(t, err)
	b, err := MockImageGenerator{}.GenerateImage(context.Background(), ImageRequest{Model: "dall-e-3", Prompt: "one", Size: "1792x1024"})
	require.NoError(t, err)
	assert.Equal(t, a.URL, b.URL)
	assert.Contains(t, a.URL, "https://placehold.co/1792x1024/")
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := withTimeout(context.Background(), 0)
	defer cancel()
	_, ok := ctx.Deadline()
	assert.False(t, ok)

	ctx, cancel = withTimeout(context.Background(), time.Minute)
	defer cancel()
	_, ok = ctx.Deadline()
	assert.True(t, ok)
}

func TestOpenAIClient_ConfiguredTimeoutBoundsCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := NewOpenAIClient(&config.OpenAIConfig{
		APIKey:       "sk-test",
		BaseURL:      srv.URL + "/v1",
		ImageTimeout: 50 * time.Millisecond,
	}, zap.NewNop())

	_, err := c.GenerateImage(context.Background(), ImageRequest{Model: "dall-e-3", Prompt: "p"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
