// Package state keeps conversation state between chat turns.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"booking-dialogue/internal/common/database"
	"booking-dialogue/internal/models"
)

const keyPrefix = "dialogue:conv:"

// Store loads and saves conversation state. Get returns a zero state with
// the requested ID when nothing is stored.
type Store interface {
	Get(ctx context.Context, conversationID string) (models.ConversationState, error)
	Save(ctx context.Context, state models.ConversationState) error
	Clear(ctx context.Context, conversationID string) error
}

type RedisStore struct {
	redis *database.RedisClient
	ttl   time.Duration
}

func NewRedisStore(redis *database.RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: redis, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, conversationID string) (models.ConversationState, error) {
	var st models.ConversationState
	err := s.redis.GetJSON(ctx, keyPrefix+conversationID, &st)
	if errors.Is(err, database.ErrCacheMiss) {
		return models.ConversationState{ConversationID: conversationID}, nil
	}
	if err != nil {
		return models.ConversationState{}, fmt.Errorf("load conversation %s: %w", conversationID, err)
	}
	st.ConversationID = conversationID
	return st, nil
}

func (s *RedisStore) Save(ctx context.Context, st models.ConversationState) error {
	if st.ConversationID == "" {
		return errors.New("conversation id is required")
	}
	st.UpdatedAt = time.Now().UTC()
	if err := s.redis.SetJSON(ctx, keyPrefix+st.ConversationID, st, s.ttl); err != nil {
		return fmt.Errorf("save conversation %s: %w", st.ConversationID, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, conversationID string) error {
	return s.redis.Del(ctx, keyPrefix+conversationID)
}

// MemoryStore is an in-process Store for the CLI and single-node runs.
// Expired conversations are dropped on read and by Sweep; servers call Run
// so abandoned conversations do not pile up.
type MemoryStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	states map[string]models.ConversationState
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, states: map[string]models.ConversationState{}}
}

func (s *MemoryStore) Get(_ context.Context, conversationID string) (models.ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[conversationID]
	if !ok || s.expired(st, s.now()) {
		delete(s.states, conversationID)
		return models.ConversationState{ConversationID: conversationID}, nil
	}
	st.Entities = st.Entities.Clone()
	return st, nil
}

func (s *MemoryStore) Save(_ context.Context, st models.ConversationState) error {
	if st.ConversationID == "" {
		return errors.New("conversation id is required")
	}
	st.UpdatedAt = s.now().UTC()
	st.Entities = st.Entities.Clone()

	s.mu.Lock()
	s.states[st.ConversationID] = st
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, conversationID string) error {
	s.mu.Lock()
	delete(s.states, conversationID)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored conversations, expired ones included
// until the next sweep.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// Sweep removes expired conversations and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dropped := 0
	for id, st := range s.states {
		if s.expired(st, now) {
			delete(s.states, id)
			dropped++
		}
	}
	return dropped
}

// Run sweeps every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *MemoryStore) expired(st models.ConversationState, now time.Time) bool {
	return s.ttl > 0 && now.Sub(st.UpdatedAt) > s.ttl
}
