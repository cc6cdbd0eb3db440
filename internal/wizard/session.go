package wizard

import (
	"sync"
	"time"

	"github.com/geocoder89/planhub/internal/draft"
	"github.com/google/uuid"
)

// Session ties one wizard run to its controller and scoped draft store.
type Session struct {
	ID         string
	Controller *Controller
	CreatedAt  time.Time
}

type sessionEntry struct {
	session *Session
	exp     time.Time
}

// StoreFactory builds the draft store scoped to one session.
type StoreFactory func(sessionID string) draft.Store

// SessionManager owns the live wizard sessions of this process. Abandoned
// sessions expire after the TTL; expiry is checked lazily on access.
type SessionManager struct {
	mu      sync.RWMutex
	ttl     time.Duration
	m       map[string]*sessionEntry
	stores  StoreFactory
	planner Planner
	cfg     AggregatorConfig
}

func NewSessionManager(ttl time.Duration, stores StoreFactory, planner Planner, cfg AggregatorConfig) *SessionManager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	return &SessionManager{
		ttl:     ttl,
		m:       make(map[string]*sessionEntry),
		stores:  stores,
		planner: planner,
		cfg:     cfg,
	}
}

func (sm *SessionManager) Open() *Session {
	id := uuid.NewString()

	s := &Session{
		ID:         id,
		Controller: NewController(sm.stores(id), sm.planner, sm.cfg),
		CreatedAt:  time.Now(),
	}

	sm.mu.Lock()
	sm.m[id] = &sessionEntry{session: s, exp: time.Now().Add(sm.ttl)}
	sm.mu.Unlock()

	return s
}

func (sm *SessionManager) Get(id string) (*Session, bool) {
	now := time.Now()

	sm.mu.RLock()
	e, ok := sm.m[id]
	sm.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if now.After(e.exp) {
		sm.mu.Lock()
		delete(sm.m, id)
		sm.mu.Unlock()

		return nil, false
	}

	// any access keeps the session alive
	sm.mu.Lock()
	e.exp = now.Add(sm.ttl)
	sm.mu.Unlock()

	return e.session, true
}

func (sm *SessionManager) Close(id string) {
	sm.mu.Lock()
	delete(sm.m, id)
	sm.mu.Unlock()
}

func (sm *SessionManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return len(sm.m)
}
