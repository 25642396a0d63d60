package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storyboarder/ai-service/internal/model"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)
	return hub
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHub_BroadcastToJobSubscribers(t *testing.T) {
	hub := startHub(t)

	a := NewClient("job-a", nil)
	b := NewClient("job-b", nil)
	hub.Register(a)
	hub.Register(b)

	hub.BroadcastProgress("job-a", 40, model.JobStatusRunning, "Generating panel 2 of 5")

	var msg model.WSProgressMessage
	require.NoError(t, json.Unmarshal(receive(t, a), &msg))
	assert.Equal(t, model.WSMessageTypeProgress, msg.Type)
	assert.Equal(t, 40, msg.Progress)
	assert.Equal(t, "Generating panel 2 of 5", msg.CurrentStep)

	assert.Empty(t, b.Send)
}

func TestHub_BroadcastFrame(t *testing.T) {
	hub := startHub(t)

	c := NewClient("job-1", nil)
	hub.Register(c)

	hub.BroadcastFrame("job-1", 2, model.StoryboardFrame{
		Shot:     model.ShotSuggestion{ShotNumber: 3, ShotType: "CU"},
		ImageURL: "https://img/3.png",
	})

	var msg model.WSFrameMessage
	require.NoError(t, json.Unmarshal(receive(t, c), &msg))
	assert.Equal(t, model.WSMessageTypeFrame, msg.Type)
	assert.Equal(t, 2, msg.Index)
	assert.Equal(t, 3, msg.Frame.Shot.ShotNumber)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)

	c := NewClient("job-1", nil)
	hub.Register(c)
	hub.Unregister(c)

	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed")
	}
	assert.Equal(t, 0, hub.Subscribers("job-1"))
}

func TestHub_BroadcastAfterStopDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zap.NewNop())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		for i := 0; i < 2*sendBuffer; i++ {
			hub.BroadcastProgress("job-a", i%100, model.JobStatusRunning, "Generating")
		}
		hub.Register(NewClient("job-a", nil))
		hub.Unregister(NewClient("job-a", nil))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub calls blocked after Run returned")
	}
}
