package conversation

import (
	"sync"

	"github.com/xaenox/hr-hub/internal/models"
)

// Log is an append-only, creation-ordered sequence of turns
type Log struct {
	mu    sync.RWMutex
	turns []models.Turn
}

func NewLog(history []models.Turn) *Log {
	l := &Log{turns: make([]models.Turn, 0, len(history))}
	l.turns = append(l.turns, history...)
	return l
}

func (l *Log) Append(turn models.Turn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, turn)
}

// Turns returns a copy of the log in insertion order
func (l *Log) Turns() []models.Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}
