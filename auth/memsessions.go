package auth

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/cespare/xxhash/v2"
)

type (
	// MemSessions is a SessionStore that lives inside the process.
	// Sessions do not survive a restart and are not shared between
	// instances.
	MemSessions struct {
		cache *bigcache.BigCache
		ttl   time.Duration
		now   Clock
	}

	shardHasher struct{}
)

const memEntrySize = 16

func (shardHasher) Sum64(key string) uint64 {
	return xxhash.Sum64String(key)
}

// NewMemSessions returns an in-memory store whose sessions last ttl,
// expired entries are purged every sweep.
func NewMemSessions(ttl, sweep time.Duration) (*MemSessions, error) {
	return newMemSessions(ttl, sweep, time.Now)
}

func newMemSessions(ttl, sweep time.Duration, now Clock) (*MemSessions, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	cfg := bigcache.DefaultConfig(ttl)
	cfg.CleanWindow = sweep
	cfg.Hasher = shardHasher{}
	cfg.Verbose = false
	cache, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create session cache, cause %w", err)
	}
	return &MemSessions{
		cache: cache,
		ttl:   ttl,
		now:   now,
	}, nil
}

func (m *MemSessions) Create(ctx context.Context, accountID int64) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}
	var entry [memEntrySize]byte
	binary.BigEndian.PutUint64(entry[:8], uint64(accountID))
	binary.BigEndian.PutUint64(entry[8:], uint64(m.now().Add(m.ttl).UnixNano()))
	if err := m.cache.Set(id, entry[:]); err != nil {
		return "", fmt.Errorf("unable to store session, cause %w", err)
	}
	return id, nil
}

func (m *MemSessions) Read(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, ErrSessionNotFound
	}
	buf, err := m.cache.Get(sessionID)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return 0, ErrSessionNotFound
	} else if err != nil {
		return 0, fmt.Errorf("unable to read session, cause %w", err)
	}
	accountID, expires, ok := decodeMemEntry(buf)
	if !ok || !m.now().Before(expires) {
		return 0, ErrSessionNotFound
	}
	return accountID, nil
}

func (m *MemSessions) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	err := m.cache.Delete(sessionID)
	if err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return fmt.Errorf("unable to destroy session, cause %w", err)
	}
	return nil
}

// Sweep removes every expired session and returns how many were removed.
func (m *MemSessions) Sweep(ctx context.Context) (int, error) {
	now := m.now()
	var expired []string
	it := m.cache.Iterator()
	for it.SetNext() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		info, err := it.Value()
		if err != nil {
			continue
		}
		_, expires, ok := decodeMemEntry(info.Value())
		if !ok || !now.Before(expires) {
			expired = append(expired, info.Key())
		}
	}
	removed := 0
	for _, k := range expired {
		if err := m.cache.Delete(k); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (m *MemSessions) Len() int {
	return m.cache.Len()
}

func (m *MemSessions) Close() error {
	return m.cache.Close()
}

func decodeMemEntry(buf []byte) (accountID int64, expires time.Time, ok bool) {
	if len(buf) != memEntrySize {
		return 0, time.Time{}, false
	}
	accountID = int64(binary.BigEndian.Uint64(buf[:8]))
	expires = time.Unix(0, int64(binary.BigEndian.Uint64(buf[8:])))
	return accountID, expires, true
}
