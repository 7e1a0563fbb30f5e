package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists wizard sessions between requests, keyed by the
// staff subject so each staff member has at most one session.
type Store interface {
	// Load returns the stored session for a staff subject, or nil
	// when none exists.
	Load(ctx context.Context, subject string) (*Session, error)
	// Save stores the session for a staff subject.
	Save(ctx context.Context, subject string, s *Session) error
	// Clear removes the stored session for a staff subject.
	Clear(ctx context.Context, subject string) error
}

// RedisStore keeps sessions in Redis with a TTL so abandoned
// sessions disappear on their own.  Sessions are small JSON blobs;
// one key per staff subject.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a store bound to the given client.  TTL
// values at or below zero default to four hours, roughly one service.
func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "wizard"
	}
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (st *RedisStore) key(subject string) string {
	return fmt.Sprintf("%s:session:%s", st.prefix, subject)
}

// Load implements Store.
func (st *RedisStore) Load(ctx context.Context, subject string) (*Session, error) {
	bs, err := st.rdb.Get(ctx, st.key(subject)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load wizard session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(bs, &s); err != nil {
		// A corrupt blob is treated as no session rather than a
		// permanently stuck wizard.
		return nil, nil
	}
	return &s, nil
}

// Save implements Store.
func (st *RedisStore) Save(ctx context.Context, subject string, s *Session) error {
	bs, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal wizard session: %w", err)
	}
	if err := st.rdb.Set(ctx, st.key(subject), bs, st.ttl).Err(); err != nil {
		return fmt.Errorf("save wizard session: %w", err)
	}
	return nil
}

// Clear implements Store.
func (st *RedisStore) Clear(ctx context.Context, subject string) error {
	if err := st.rdb.Del(ctx, st.key(subject)).Err(); err != nil {
		return fmt.Errorf("clear wizard session: %w", err)
	}
	return nil
}

// MemoryStore is the in-process fallback used when Redis is not
// reachable at startup.  Good enough for a single instance; sessions
// do not survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Load implements Store.
func (st *MemoryStore) Load(_ context.Context, subject string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[subject]
	if !ok {
		return nil, nil
	}
	// Hand out a copy so callers cannot mutate the stored session
	// without going through Save.
	cp := *s
	cp.Selected = append([]uint64{}, s.Selected...)
	return &cp, nil
}

// Save implements Store.
func (st *MemoryStore) Save(_ context.Context, subject string, s *Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	cp := *s
	cp.Selected = append([]uint64{}, s.Selected...)
	st.sessions[subject] = &cp
	return nil
}

// Clear implements Store.
func (st *MemoryStore) Clear(_ context.Context, subject string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, subject)
	return nil
}
