package session

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Manager tracks live sessions by id (one per websocket connection).
type Manager struct {
	mu       sync.Mutex
	cards    Catalog
	sessions map[string]*entry
}

type entry struct {
	sess    *Session
	created int64
	touched int64
}

func NewManager(cards Catalog) *Manager {
	return &Manager{cards: cards, sessions: make(map[string]*entry)}
}

// Create starts a new session and returns its id.
func (m *Manager) Create() (string, *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().Unix()
	id := fmt.Sprintf("s_%d_%s", now, generateRandomID(6))
	for m.sessions[id] != nil {
		id = fmt.Sprintf("s_%d_%s", now, generateRandomID(6))
	}
	s := New(m.cards)
	m.sessions[id] = &entry{sess: s, created: now, touched: now}
	return id, s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	e.touched = time.Now().Unix()
	return e.sess, true
}

// Touch marks a session as active so Prune keeps it.
func (m *Manager) Touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		e.touched = time.Now().Unix()
	}
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Prune drops sessions untouched for longer than idle and returns how many went.
func (m *Manager) Prune(idle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-idle).Unix()
	n := 0
	for id, e := range m.sessions {
		if e.touched < cutoff {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func generateRandomID(length int) string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	result := make([]byte, length)
	for i := range result {
		result[i] = chars[rand.Intn(len(chars))]
	}
	return string(result)
}
