package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"cash4edu/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSession(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})
}

func TestRunLoadsImmediatelyWhenPersisted(t *testing.T) {
	f := &fakeFetcher{resp: profileEnvelope(`{"id":"u1"}`)}
	s := New(newMemStore("tok", models.UserRecord{"id": "u1"}), f, Options{PollInterval: time.Hour})
	runSession(t, s)

	require.Eventually(t, func() bool { return s.Profile() != nil }, time.Second, time.Millisecond)
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestRunWithoutTokenMakesNoCall(t *testing.T) {
	f := &fakeFetcher{resp: profileEnvelope(`{"id":"u1"}`)}
	s := New(newMemStore("", models.UserRecord{"id": "u1"}), f, Options{PollInterval: 5 * time.Millisecond})
	runSession(t, s)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, f.calls.Load())
	assert.Nil(t, s.Profile())
}

func TestRunRetriesUntilLoadedThenStops(t *testing.T) {
	f := &fakeFetcher{}
	f.answer(nil, errors.New("token not accepted yet"))
	s := New(newMemStore("tok", models.UserRecord{"id": "u1"}), f, Options{PollInterval: 5 * time.Millisecond})
	runSession(t, s)

	require.Eventually(t, func() bool { return f.calls.Load() >= 3 }, time.Second, time.Millisecond)
	f.answer(profileEnvelope(`{"id":"u1"}`), nil)
	require.Eventually(t, func() bool { return s.Profile() != nil }, time.Second, time.Millisecond)

	settled := f.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, f.calls.Load(), "no polling once a profile is loaded")
}

func TestRunResumesAfterClear(t *testing.T) {
	store := newMemStore("tok", models.UserRecord{"id": "u1"})
	f := &fakeFetcher{resp: profileEnvelope(`{"id":"u1"}`)}
	s := New(store, f, Options{PollInterval: 5 * time.Millisecond})
	runSession(t, s)

	require.Eventually(t, func() bool { return s.Profile() != nil }, time.Second, time.Millisecond)
	require.EqualValues(t, 1, f.calls.Load())

	// logout
	s.ClearWith(store.clear)
	time.Sleep(30 * time.Millisecond)
	assert.EqualValues(t, 1, f.calls.Load())
	assert.Nil(t, s.Profile())

	// login again
	store.mu.Lock()
	store.user = models.UserRecord{"id": "u1"}
	store.mu.Unlock()
	store.setToken("tok-2")

	require.Eventually(t, func() bool { return s.Profile() != nil }, time.Second, time.Millisecond)
	assert.EqualValues(t, 2, f.calls.Load())
}

func TestRunTokenSignalWithoutPolling(t *testing.T) {
	store := newMemStore("", models.UserRecord{"id": "u1"})
	f := &fakeFetcher{resp: profileEnvelope(`{"id":"u1"}`)}
	s := New(store, f, Options{PollInterval: -1})
	runSession(t, s)

	time.Sleep(20 * time.Millisecond)
	require.Zero(t, f.calls.Load())

	store.setToken("tok")
	require.Eventually(t, func() bool { return s.Profile() != nil }, time.Second, time.Millisecond)
	assert.EqualValues(t, 1, f.calls.Load())
}
