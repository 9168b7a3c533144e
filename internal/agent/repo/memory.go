// Package repo holds the storage backends for sessions, the turn log and
// user profiles: in-memory, Redis and SQL (SQLite or Postgres).
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process with a sliding TTL. Values
// are stored encoded so callers never share mutable state with the store.
type MemorySessionStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the store's time source.
func (s *MemorySessionStore) WithClock(now func() time.Time) *MemorySessionStore {
	s.now = now
	return s
}

func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (*model.Session, error) {
	s.mu.Lock()
	e, ok := s.entries[sessionID]
	if ok && s.expired(e) {
		delete(s.entries, sessionID)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}

	var session model.Session
	if err := json.Unmarshal(e.data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	session.Normalize()
	return &session, nil
}

func (s *MemorySessionStore) Put(_ context.Context, sessionID string, session *model.Session) error {
	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memoryEntry{data: b}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[sessionID] = e
	return nil
}

func (s *MemorySessionStore) Evict(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// Len returns the number of stored sessions, expired or not.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *MemorySessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *MemorySessionStore) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logx.Debug().Int("evicted", n).Msg("expired sessions swept")
			}
		}
	}
}

func (s *MemorySessionStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}

// MemoryTurnLog is a process-local TurnLog.
type MemoryTurnLog struct {
	mu    sync.RWMutex
	turns []model.TurnRecord
}

func NewMemoryTurnLog() *MemoryTurnLog {
	return &MemoryTurnLog{}
}

func (l *MemoryTurnLog) Append(_ context.Context, turn model.TurnRecord) error {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, turn)
	return nil
}

func (l *MemoryTurnLog) BySession(_ context.Context, sessionID string) ([]model.TurnRecord, error) {
	return l.filter(func(t model.TurnRecord) bool { return t.SessionID == sessionID }), nil
}

func (l *MemoryTurnLog) ByUser(_ context.Context, userID string) ([]model.TurnRecord, error) {
	return l.filter(func(t model.TurnRecord) bool { return t.UserID == userID }), nil
}

func (l *MemoryTurnLog) filter(keep func(model.TurnRecord) bool) []model.TurnRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []model.TurnRecord{}
	for _, t := range l.turns {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// MemoryProfileStore is a process-local ProfileStore.
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]model.Profile
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]model.Profile)}
}

func profileKey(userID, sessionID string) string {
	return userID + "\x00" + sessionID
}

func (m *MemoryProfileStore) Get(_ context.Context, userID, sessionID string) (*model.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[profileKey(userID, sessionID)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MemoryProfileStore) Upsert(_ context.Context, p model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := profileKey(p.UserID, p.SessionID)
	cur, ok := m.profiles[key]
	if !ok {
		cur = model.Profile{UserID: p.UserID, SessionID: p.SessionID}
	}
	cur.Merge(p)
	cur.UpdatedAt = p.UpdatedAt
	if cur.UpdatedAt.IsZero() {
		cur.UpdatedAt = time.Now()
	}
	m.profiles[key] = cur
	return nil
}

var (
	_ model.SessionStore = (*MemorySessionStore)(nil)
	_ model.TurnLog      = (*MemoryTurnLog)(nil)
	_ model.ProfileStore = (*MemoryProfileStore)(nil)
)
