package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/hr-hub/internal/classifier"
	"github.com/xaenox/hr-hub/internal/storage"
)

const (
	defaultMaxSessions = 1000
	defaultIdleTTL     = 30 * time.Minute
)

type managedSession struct {
	session  *Session
	lastUsed time.Time
}

// Manager keeps one session per conversation id, rehydrating a session
// from stored turns the first time it is requested. Sessions idle longer
// than idleTTL are dropped, and at most maxSessions are held; a session
// with a reply in flight is never dropped.
type Manager struct {
	classifier   classifier.Classifier
	store        storage.TurnStorage
	delay        time.Duration
	historyLimit int
	maxSessions  int
	idleTTL      time.Duration
	logger       *zap.Logger
	now          func() time.Time

	mu       sync.Mutex
	sessions map[string]*managedSession
}

// NewManager uses defaults of 1000 sessions and a 30 minute idle TTL when
// maxSessions or idleTTL is not positive.
func NewManager(clf classifier.Classifier, store storage.TurnStorage, delay time.Duration, historyLimit, maxSessions int, idleTTL time.Duration, logger *zap.Logger) *Manager {
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &Manager{
		classifier:   clf,
		store:        store,
		delay:        delay,
		historyLimit: historyLimit,
		maxSessions:  maxSessions,
		idleTTL:      idleTTL,
		logger:       logger,
		now:          time.Now,
		sessions:     make(map[string]*managedSession),
	}
}

func (m *Manager) Session(ctx context.Context, id string) (*Session, error) {
	if s := m.lookup(id); s != nil {
		return s, nil
	}

	// history is loaded without holding mu so a slow store only delays
	// this conversation
	history, err := m.store.GetTurns(ctx, id, m.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for session %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.sessions[id]; ok {
		e.lastUsed = now
		return e.session, nil
	}

	m.evict(now)
	s := NewSession(id, history, m.classifier, m.store, m.delay, m.logger)
	m.sessions[id] = &managedSession{session: s, lastUsed: now}
	return s, nil
}

// Len reports how many sessions are held in memory
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) lookup(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil
	}
	e.lastUsed = m.now()
	return e.session
}

// evict drops idle sessions, then the least recently used ones until a new
// session fits. Caller holds mu.
func (m *Manager) evict(now time.Time) {
	for id, e := range m.sessions {
		if now.Sub(e.lastUsed) > m.idleTTL && !e.session.Busy() {
			delete(m.sessions, id)
		}
	}

	for len(m.sessions) >= m.maxSessions {
		var (
			oldestID string
			oldest   time.Time
		)
		for id, e := range m.sessions {
			if e.session.Busy() {
				continue
			}
			if oldestID == "" || e.lastUsed.Before(oldest) {
				oldestID, oldest = id, e.lastUsed
			}
		}
		if oldestID == "" {
			m.logger.Warn("Session limit reached with every session busy",
				zap.Int("sessions", len(m.sessions)))
			return
		}
		delete(m.sessions, oldestID)
	}
}
