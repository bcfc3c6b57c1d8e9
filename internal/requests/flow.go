// Package requests implements the HR request forms: drafts are edited
// field by field, validated, and resolved through a Submitter.
package requests

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/hr-hub/internal/models"
	"github.com/xaenox/hr-hub/internal/notify"
	"github.com/xaenox/hr-hub/internal/storage"
)

var (
	ErrDraftNotFound      = errors.New("draft not found")
	ErrInvalidTransition  = errors.New("invalid draft transition")
	ErrUnknownServiceKind = errors.New("unknown service kind")
)

type State string

const (
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

func (s State) Terminal() bool {
	return s == StateSubmitted || s == StateFailed || s == StateCancelled
}

type OutcomeStatus string

const (
	OutcomeSubmitted OutcomeStatus = "submitted"
	OutcomeFailed    OutcomeStatus = "failed"
)

type Outcome struct {
	Status    OutcomeStatus `json:"status"`
	Message   string        `json:"message"`
	RequestID string        `json:"request_id,omitempty"`
}

type Draft struct {
	ID        string             `json:"id"`
	Kind      models.ServiceKind `json:"service_kind"`
	Fields    map[string]string  `json:"fields"`
	State     State              `json:"state"`
	Outcome   *Outcome           `json:"outcome,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (d *Draft) clone() Draft {
	out := *d
	out.Fields = make(map[string]string, len(d.Fields))
	for k, v := range d.Fields {
		out.Fields[k] = v
	}
	if d.Outcome != nil {
		o := *d.Outcome
		out.Outcome = &o
	}
	return out
}

const (
	titleSubmitted = "Request Submitted"
	titleFailed    = "Submission Failed"
)

const defaultDraftRetention = time.Hour

// Flow holds drafts in memory. A draft that is not submitting and has not
// changed for longer than retention is dropped when a new draft is opened
// or reopened.
type Flow struct {
	submitter  Submitter
	store      storage.Storage
	notifier   notify.Notifier
	employeeID string
	retention  time.Duration
	logger     *zap.Logger
	now        func() time.Time

	mu     sync.Mutex
	drafts map[string]*Draft
}

// NewFlow keeps drafts for an hour when retention is not positive
func NewFlow(submitter Submitter, store storage.Storage, notifier notify.Notifier, employeeID string, retention time.Duration, logger *zap.Logger) *Flow {
	if retention <= 0 {
		retention = defaultDraftRetention
	}
	return &Flow{
		submitter:  submitter,
		store:      store,
		notifier:   notifier,
		employeeID: employeeID,
		retention:  retention,
		logger:     logger,
		now:        time.Now,
		drafts:     make(map[string]*Draft),
	}
}

// prune drops stale drafts. Caller holds mu.
func (f *Flow) prune(now time.Time) {
	for id, d := range f.drafts {
		if d.State != StateSubmitting && now.Sub(d.UpdatedAt) > f.retention {
			delete(f.drafts, id)
		}
	}
}

// Open starts an empty draft for kind
func (f *Flow) Open(kind models.ServiceKind) (Draft, error) {
	if !kind.Valid() {
		return Draft{}, fmt.Errorf("%w: %q", ErrUnknownServiceKind, kind)
	}
	now := f.now().UTC()
	d := &Draft{
		ID:        uuid.NewString(),
		Kind:      kind,
		Fields:    map[string]string{},
		State:     StateEditing,
		CreatedAt: now,
		UpdatedAt: now,
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.prune(now)
	f.drafts[d.ID] = d
	return d.clone(), nil
}

func (f *Flow) Get(id string) (Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[id]
	if !ok {
		return Draft{}, ErrDraftNotFound
	}
	return d.clone(), nil
}

// transition applies fn to an editing draft
func (f *Flow) transition(id string, fn func(d *Draft) error) (Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.drafts[id]
	if !ok {
		return Draft{}, ErrDraftNotFound
	}
	if d.State != StateEditing {
		return Draft{}, fmt.Errorf("%w: draft is %s", ErrInvalidTransition, d.State)
	}
	if err := fn(d); err != nil {
		return Draft{}, err
	}
	d.UpdatedAt = f.now().UTC()
	return d.clone(), nil
}

func (f *Flow) SetField(id, name, value string) (Draft, error) {
	return f.transition(id, func(d *Draft) error {
		d.Fields[name] = value
		return nil
	})
}

func (f *Flow) Cancel(id string) (Draft, error) {
	return f.transition(id, func(d *Draft) error {
		d.State = StateCancelled
		return nil
	})
}

// Reopen starts a new editing draft carrying the fields of a failed one
func (f *Flow) Reopen(id string) (Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	failed, ok := f.drafts[id]
	if !ok {
		return Draft{}, ErrDraftNotFound
	}
	if failed.State != StateFailed {
		return Draft{}, fmt.Errorf("%w: only failed drafts can be reopened, draft is %s", ErrInvalidTransition, failed.State)
	}

	now := f.now().UTC()
	d := failed.clone()
	d.ID = uuid.NewString()
	d.State = StateEditing
	d.Outcome = nil
	d.CreatedAt = now
	d.UpdatedAt = now
	f.prune(now)
	f.drafts[d.ID] = &d
	return d.clone(), nil
}

// Submit validates the draft and resolves it asynchronously. Validation
// failures return a *ValidationError before anything is submitted. The
// channel yields the outcome once the draft has reached its terminal
// state and the notification has gone out.
func (f *Flow) Submit(ctx context.Context, id string) (<-chan Outcome, error) {
	draft, err := f.transition(id, func(d *Draft) error {
		if err := Validate(d.Kind, d.Fields); err != nil {
			return err
		}
		d.State = StateSubmitting
		return nil
	})
	if err != nil {
		return nil, err
	}

	done := make(chan Outcome, 1)
	go f.resolve(context.WithoutCancel(ctx), draft, done)
	return done, nil
}

func (f *Flow) resolve(ctx context.Context, draft Draft, done chan<- Outcome) {
	defer close(done)

	outcome, err := f.submitter.Submit(ctx, draft)
	if err != nil {
		f.logger.Error("Failed to submit request",
			zap.Error(err),
			zap.String("draft_id", draft.ID),
			zap.String("service_kind", string(draft.Kind)))
		outcome = Outcome{Status: OutcomeFailed, Message: FailedMessage}
	}

	if outcome.Status == OutcomeSubmitted {
		req := &models.HRRequest{
			ID:            "REQ-" + uuid.NewString(),
			EmployeeID:    f.employeeID,
			Kind:          draft.Kind,
			Type:          draft.Kind.Title(),
			Status:        models.RequestPendingApproval,
			Fields:        draft.Fields,
			SubmittedDate: f.now().UTC(),
		}
		if err := f.store.CreateRequest(ctx, req); err != nil {
			f.logger.Error("Failed to record request",
				zap.Error(err),
				zap.String("draft_id", draft.ID))
			outcome = Outcome{Status: OutcomeFailed, Message: FailedMessage}
		} else {
			outcome.RequestID = req.ID
		}
	}

	f.finish(draft.ID, outcome)

	if outcome.Status == OutcomeSubmitted {
		f.notifier.Notify(ctx, titleSubmitted, outcome.Message, notify.SeverityInfo)
	} else {
		f.notifier.Notify(ctx, titleFailed, outcome.Message, notify.SeverityError)
	}
	f.logger.Info("Request resolved",
		zap.String("draft_id", draft.ID),
		zap.String("service_kind", string(draft.Kind)),
		zap.String("status", string(outcome.Status)))

	done <- outcome
}

func (f *Flow) finish(id string, outcome Outcome) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d := f.drafts[id]
	if outcome.Status == OutcomeSubmitted {
		d.State = StateSubmitted
	} else {
		d.State = StateFailed
	}
	d.Outcome = &outcome
	d.UpdatedAt = f.now().UTC()
}
