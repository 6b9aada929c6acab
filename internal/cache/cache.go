package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/kjstillabower/weather-outfit-service/internal/session"
)

const keyPrefix = "session:"

// InMemoryStore implements session.Store with a mutex-guarded map and TTL expiry.
// Entries are stored encoded so callers never share a *session.State.
type InMemoryStore struct {
	mu   sync.Mutex
	data map[string]cacheEntry
	now  func() time.Time
}

// cacheEntry stores an encoded session with its expiration timestamp.
type cacheEntry struct {
	raw       []byte
	expiresAt time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		data: make(map[string]cacheEntry),
		now:  time.Now,
	}
}

// Get returns (state, true, nil) on hit and (nil, false, nil) on miss or expiry.
// Expired entries are removed on access.
func (c *InMemoryStore) Get(ctx context.Context, id string) (*session.State, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	c.mu.Lock()
	entry, ok := c.data[id]
	if ok && c.now().After(entry.expiresAt) {
		delete(c.data, id)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return nil, false, nil
	}
	s, err := decode(entry.raw)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Set stores s until ttl elapses.
func (c *InMemoryStore) Set(ctx context.Context, id string, s *session.State, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := encode(s)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[id] = cacheEntry{raw: raw, expiresAt: c.now().Add(ttl)}
	return nil
}

// Delete removes id. Deleting a missing id is not an error.
func (c *InMemoryStore) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, id)
	return nil
}

// Sweep drops every expired entry and returns how many were removed.
func (c *InMemoryStore) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for k, e := range c.data {
		if now.After(e.expiresAt) {
			delete(c.data, k)
			n++
		}
	}
	return n
}

// Len is the number of stored entries, expired or not.
func (c *InMemoryStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

func encode(s *session.State) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return raw, nil
}

func decode(raw []byte) (*session.State, error) {
	var s session.State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// expirySeconds clamps ttl to what memcached accepts as a relative expiry.
func expirySeconds(ttl time.Duration) int32 {
	expSec := int32(ttl.Seconds())
	const maxRelativeExp = 30 * 24 * 60 * 60 // 30 days
	if expSec <= 0 || expSec > maxRelativeExp {
		expSec = 3600
	}
	return expSec
}
