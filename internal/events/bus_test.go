package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skilltrack/internal/badges"
	"github.com/abhisek/skilltrack/internal/logger"
	"github.com/abhisek/skilltrack/internal/roadmap"
)

type fakeCompleter struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeCompleter) AutoCompleteSkill(_ context.Context, userID, badgeName, badgeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID+"|"+badgeName+"|"+badgeID)
	return f.err == nil, f.err
}

func (f *fakeCompleter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []roadmap.CompletionEvent
}

func (f *fakeNotifier) NotifyRoadmapCompleted(_ context.Context, ev roadmap.CompletionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func startBus(t *testing.T, ac AutoCompleter, n Notifier) *Bus {
	t.Helper()
	bus, err := NewBus(logger.Nop(), Options{MaxRetries: 2, RetryInterval: time.Millisecond})
	require.NoError(t, err)
	bus.Handle(ac, n)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(func() {
		cancel()
		_ = bus.Close()
	})
	require.NoError(t, bus.Start(ctx))
	return bus
}

func TestBadgeIssuedReachesAutoCompleter(t *testing.T) {
	ac := &fakeCompleter{}
	bus := startBus(t, ac, nil)

	err := bus.PublishBadgeIssued(context.Background(), badges.IssuedEvent{
		UserID: "u1", BadgeID: "b1", BadgeName: "Skillion React Basics Badge", CourseID: "c1",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"u1|Skillion React Basics Badge|b1"}, ac.calls)
}

func TestMissingTrackerIsAcked(t *testing.T) {
	ac := &fakeCompleter{err: roadmap.ErrNotFound}
	bus := startBus(t, ac, nil)

	require.NoError(t, bus.PublishBadgeIssued(context.Background(), badges.IssuedEvent{UserID: "nobody", BadgeName: "x"}))
	assert.Equal(t, 1, ac.count())
}

func TestFailingHandlerIsRetriedThenDropped(t *testing.T) {
	ac := &fakeCompleter{err: errors.New("database is locked")}
	bus := startBus(t, ac, nil)

	require.NoError(t, bus.PublishBadgeIssued(context.Background(), badges.IssuedEvent{UserID: "u1", BadgeName: "x"}))
	assert.Equal(t, 3, ac.count())
}

func TestRoadmapCompletedReachesNotifier(t *testing.T) {
	n := &fakeNotifier{}
	bus := startBus(t, nil, n)

	at := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	ev := roadmap.CompletionEvent{
		UserID:         "u1",
		Goal:           "frontend",
		GoalLabel:      "Frontend Developer",
		VerificationID: "SKL-FRONTEND-1234-5678",
		CompletedAt:    at,
		ContactEmail:   "ada@example.com",
	}
	require.NoError(t, bus.PublishRoadmapCompleted(context.Background(), ev))

	require.Len(t, n.events, 1)
	assert.Equal(t, ev, n.events[0])
}

func TestPublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	bus, err := NewBus(nil, Options{})
	require.NoError(t, err)
	defer bus.Close()

	done := make(chan error, 1)
	go func() {
		done <- bus.PublishBadgeIssued(context.Background(), badges.IssuedEvent{UserID: "u1"})
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked with no subscribers")
	}
}
