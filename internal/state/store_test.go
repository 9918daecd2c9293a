package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"booking-dialogue/internal/common/config"
	"booking-dialogue/internal/common/database"
	"booking-dialogue/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState(id string) models.ConversationState {
	days := 3
	return models.ConversationState{
		ConversationID: id,
		AgentType:      "car-rental",
		WorkflowType:   "car-rental",
		CurrentStep:    models.StepAskLocations,
		Entities:       models.Entities{Service: "suv", Date: "2026-07-01", Days: &days},
	}
}

func TestStores(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	stores := map[string]Store{
		"redis":  NewRedisStore(rdb, time.Hour),
		"memory": NewMemoryStore(time.Hour),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			empty, err := store.Get(ctx, "conv-1")
			require.NoError(t, err)
			assert.Equal(t, "conv-1", empty.ConversationID)
			assert.Empty(t, empty.CurrentStep)

			require.NoError(t, store.Save(ctx, sampleState("conv-1")))

			got, err := store.Get(ctx, "conv-1")
			require.NoError(t, err)
			assert.Equal(t, models.StepAskLocations, got.CurrentStep)
			require.NotNil(t, got.Entities.Days)
			assert.Equal(t, 3, *got.Entities.Days)
			assert.False(t, got.UpdatedAt.IsZero())

			require.NoError(t, store.Clear(ctx, "conv-1"))
			got, err = store.Get(ctx, "conv-1")
			require.NoError(t, err)
			assert.Empty(t, got.CurrentStep)

			assert.Error(t, store.Save(ctx, models.ConversationState{}))
		})
	}
}

func TestRedisStore_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer rdb.Close()

	store := NewRedisStore(rdb, 30*time.Minute)
	require.NoError(t, store.Save(context.Background(), sampleState("conv-2")))
	assert.Equal(t, 30*time.Minute, mr.TTL("dialogue:conv:conv-2"))

	mr.FastForward(31 * time.Minute)
	got, err := store.Get(context.Background(), "conv-2")
	require.NoError(t, err)
	assert.Empty(t, got.CurrentStep)
}

func TestRedisStore_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(database.NewRedisFromClient(db), time.Hour)

	mock.ExpectGet("dialogue:conv:conv-3").SetErr(errors.New("READONLY"))
	_, err := store.Get(context.Background(), "conv-3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conv-3")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Nanosecond)
	require.NoError(t, store.Save(context.Background(), sampleState("conv-4")))
	time.Sleep(time.Millisecond)

	got, err := store.Get(context.Background(), "conv-4")
	require.NoError(t, err)
	assert.Empty(t, got.CurrentStep)
}

func TestMemoryStore_SweepDropsAbandonedConversations(t *testing.T) {
	clock := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Hour)
	store.now = func() time.Time { return clock }

	ctx := context.Background()
	for _, id := range []string{"old-1", "old-2", "old-3"} {
		require.NoError(t, store.Save(ctx, sampleState(id)))
	}
	clock = clock.Add(50 * time.Minute)
	require.NoError(t, store.Save(ctx, sampleState("fresh")))
	assert.Equal(t, 4, store.Len())

	clock = clock.Add(20 * time.Minute)
	assert.Equal(t, 3, store.Sweep())
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, models.StepAskLocations, got.CurrentStep)
}

func TestMemoryStore_RunStopsWithContext(t *testing.T) {
	store := NewMemoryStore(time.Nanosecond)
	require.NoError(t, store.Save(context.Background(), sampleState("conv-5")))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
