// Package conversation drives the assistant chat: a user turn is logged,
// and after a pacing delay the classifier's answer is logged after it.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/hr-hub/internal/classifier"
	"github.com/xaenox/hr-hub/internal/models"
	"github.com/xaenox/hr-hub/internal/storage"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("assistant is still answering the previous message")
)

type Session struct {
	id         string
	log        *Log
	classifier classifier.Classifier
	store      storage.TurnStorage
	delay      time.Duration
	logger     *zap.Logger

	// mu guards busy and orders appends against it
	mu   sync.Mutex
	busy bool
}

func NewSession(id string, history []models.Turn, clf classifier.Classifier, store storage.TurnStorage, delay time.Duration, logger *zap.Logger) *Session {
	return &Session{
		id:         id,
		log:        NewLog(history),
		classifier: clf,
		store:      store,
		delay:      delay,
		logger:     logger.With(zap.String("session_id", id)),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Turns() []models.Turn {
	return s.log.Turns()
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func newTurnID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Submit logs a user turn and schedules the assistant's reply. It returns
// the logged user turn and a channel that yields the assistant turn once it
// has been appended. A second call while a reply is pending is dropped with
// ErrBusy.
func (s *Session) Submit(ctx context.Context, text string, cc classifier.Context) (models.Turn, <-chan models.Turn, error) {
	if strings.TrimSpace(text) == "" {
		return models.Turn{}, nil, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return models.Turn{}, nil, ErrBusy
	}
	s.busy = true
	user := models.Turn{
		ID:        newTurnID(),
		SessionID: s.id,
		Role:      models.RoleUser,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
	s.log.Append(user)
	s.mu.Unlock()

	// the reply outlives the caller's request
	bg := context.WithoutCancel(ctx)
	s.persist(bg, &user)

	reply := make(chan models.Turn, 1)
	go s.respond(bg, text, cc, reply)
	return user, reply, nil
}

func (s *Session) respond(ctx context.Context, text string, cc classifier.Context, reply chan<- models.Turn) {
	defer close(reply)

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		<-timer.C
	}

	answer := s.classifier.Classify(ctx, cc, text)

	s.mu.Lock()
	assistant := models.Turn{
		ID:        newTurnID(),
		SessionID: s.id,
		Role:      models.RoleAssistant,
		Text:      text,
		Response:  answer.Text,
		Category:  answer.Category,
		Timestamp: time.Now().UTC(),
	}
	s.log.Append(assistant)
	s.busy = false
	s.mu.Unlock()

	s.persist(ctx, &assistant)
	s.logger.Debug("Assistant replied",
		zap.String("turn_id", assistant.ID),
		zap.String("category", string(assistant.Category)))

	reply <- assistant
}

func (s *Session) persist(ctx context.Context, turn *models.Turn) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveTurn(ctx, turn); err != nil {
		s.logger.Error("Failed to save turn",
			zap.Error(err),
			zap.String("turn_id", turn.ID),
			zap.String("role", string(turn.Role)))
	}
}
