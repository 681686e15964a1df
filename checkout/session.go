package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps one State per user.
type SessionStore interface {
	// Load returns the saved state, or NewState when none exists.
	Load(ctx context.Context, userID string) (State, error)
	Save(ctx context.Context, userID string, s State) error
}

// SessionTTL is how long an idle checkout survives.
const SessionTTL = 30 * time.Minute

// RedisSessions stores states as JSON under checkout:state:<user>.
type RedisSessions struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisSessions(c *redis.Client) *RedisSessions {
	return &RedisSessions{Client: c, TTL: SessionTTL}
}

func stateKey(userID string) string {
	return "checkout:state:" + userID
}

func (r *RedisSessions) Load(ctx context.Context, userID string) (State, error) {
	raw, err := r.Client.Get(ctx, stateKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewState(), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("load checkout state: %w", err)
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return State{}, fmt.Errorf("decode checkout state: %w", err)
	}
	return s, nil
}

func (r *RedisSessions) Save(ctx context.Context, userID string, s State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := r.Client.Set(ctx, stateKey(userID), raw, r.TTL).Err(); err != nil {
		return fmt.Errorf("save checkout state: %w", err)
	}
	return nil
}

// MemorySessions is a process-local SessionStore.
type MemorySessions struct {
	mu     sync.Mutex
	states map[string]State
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{states: make(map[string]State)}
}

func (m *MemorySessions) Load(_ context.Context, userID string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.states[userID]; ok {
		return s, nil
	}
	return NewState(), nil
}

func (m *MemorySessions) Save(_ context.Context, userID string, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = s
	return nil
}
