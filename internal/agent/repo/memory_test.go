package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestMemorySessionStore_TTLSlidesOnPut(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := NewMemorySessionStore(30 * time.Minute).WithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s1", model.NewSession("s1", clock.t)))
	clock.t = clock.t.Add(20 * time.Minute)
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, store.Put(ctx, "s1", got))
	clock.t = clock.t.Add(20 * time.Minute)
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.NotNil(t, got, "put refreshes expiry")

	clock.t = clock.t.Add(31 * time.Minute)
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemorySessionStore_ReturnsCopies(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	ctx := context.Background()

	s := model.NewSession("s1", time.Now())
	require.NoError(t, store.Put(ctx, "s1", s))
	s.Conversation.LastStrategicTrigger = "changed after put"

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got.Conversation.LastStrategicTrigger)
}

func TestMemorySessionStore_SweepAndEvict(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	store := NewMemorySessionStore(time.Minute).WithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "old", model.NewSession("old", clock.t)))
	clock.t = clock.t.Add(50 * time.Second)
	require.NoError(t, store.Put(ctx, "new", model.NewSession("new", clock.t)))
	require.NoError(t, store.Put(ctx, "gone", model.NewSession("gone", clock.t)))
	require.NoError(t, store.Evict(ctx, "gone"))

	clock.t = clock.t.Add(20 * time.Second)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())
}

func TestMemorySessionStore_RunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := NewMemorySessionStore(time.Millisecond)
	require.NoError(t, store.Put(context.Background(), "s1", model.NewSession("s1", time.Now())))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestMemoryTurnLogAndProfiles(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryTurnLog()
	require.NoError(t, log.Append(ctx, model.TurnRecord{SessionID: "s1", UserID: "u1", Content: "a"}))
	require.NoError(t, log.Append(ctx, model.TurnRecord{SessionID: "s2", UserID: "u1", Content: "b"}))

	turns, err := log.BySession(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, turns, 1)
	turns, err = log.ByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, turns, 2)

	profiles := NewMemoryProfileStore()
	require.NoError(t, profiles.Upsert(ctx, model.Profile{UserID: "u1", SessionID: "s1", Email: "a@b.co"}))
	require.NoError(t, profiles.Upsert(ctx, model.Profile{UserID: "u1", SessionID: "s1", Name: "Al"}))
	p, err := profiles.Get(ctx, "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", p.Email)
	assert.Equal(t, "Al", p.Name)
}
