package notify

import (
	"testing"

	"cash4edu/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHubFanOut(t *testing.T) {
	hub := NewHub(zap.NewNop())
	_, a, cancelA := hub.Subscribe()
	_, b, cancelB := hub.Subscribe()
	defer cancelB()
	require.Equal(t, 2, hub.Subscribers())

	Error(hub, "Network Error", "offline")

	assert.Equal(t, models.Toast{Type: models.ToastError, Text1: "Network Error", Text2: "offline"}, <-a)
	assert.Equal(t, "Network Error", (<-b).Text1)

	cancelA()
	cancelA()
	assert.Equal(t, 1, hub.Subscribers())
	_, open := <-a
	assert.False(t, open)
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	hub := NewHub(zap.NewNop())
	_, ch, cancel := hub.Subscribe()
	defer cancel()

	for i := 0; i < 40; i++ {
		Success(hub, "ok", "")
	}
	assert.Len(t, ch, cap(ch))
}

func TestRecorderAndMulti(t *testing.T) {
	var r1, r2 Recorder
	m := Multi{&r1, nil, &r2}
	Error(m, "Error 500", "")
	Success(m, "Saved", "")

	assert.Equal(t, 1, r1.Count(models.ToastError))
	assert.Equal(t, 1, r2.Count(models.ToastSuccess))
	assert.Len(t, r1.Toasts(), 2)

	// nil notifier is a no-op
	Error(nil, "ignored", "")
}
