package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/xaenox/hr-hub/internal/models"
)

type MemoryStorage struct {
	mu        sync.RWMutex
	employees map[string]*models.Employee
	balances  map[string]*models.VacationBalance
	payments  map[string][]models.SalaryPayment
	requests  map[string][]models.HRRequest
	policies  []models.Policy
	turns     map[string][]models.Turn
}

func NewMemoryStorage(seed Seed) *MemoryStorage {
	s := &MemoryStorage{
		employees: make(map[string]*models.Employee),
		balances:  make(map[string]*models.VacationBalance),
		payments:  make(map[string][]models.SalaryPayment),
		requests:  make(map[string][]models.HRRequest),
		turns:     make(map[string][]models.Turn),
	}
	for i := range seed.Employees {
		e := seed.Employees[i]
		s.employees[e.ID] = &e
	}
	for i := range seed.Balances {
		b := seed.Balances[i]
		s.balances[b.EmployeeID] = &b
	}
	for _, p := range seed.Payments {
		s.payments[p.EmployeeID] = append(s.payments[p.EmployeeID], p)
	}
	for _, r := range seed.Requests {
		s.requests[r.EmployeeID] = append(s.requests[r.EmployeeID], cloneRequest(r))
	}
	s.policies = append(s.policies, seed.Policies...)
	return s
}

func cloneRequest(r models.HRRequest) models.HRRequest {
	fields := make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	r.Fields = fields
	return r
}

func (s *MemoryStorage) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, exists := s.employees[id]; exists {
		out := *e
		return &out, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) GetVacationBalance(ctx context.Context, employeeID string) (*models.VacationBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, exists := s.balances[employeeID]; exists {
		out := *b
		return &out, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) GetLastSalaryPayment(ctx context.Context, employeeID string) (*models.SalaryPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payments := s.payments[employeeID]
	if len(payments) == 0 {
		return nil, ErrNotFound
	}
	last := payments[0]
	for _, p := range payments[1:] {
		if p.Date.After(last.Date) {
			last = p
		}
	}
	return &last, nil
}

func (s *MemoryStorage) ListRequests(ctx context.Context, employeeID string, limit int) ([]models.HRRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.requests[employeeID]
	out := make([]models.HRRequest, 0, len(stored))
	for _, r := range stored {
		out = append(out, cloneRequest(r))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedDate.After(out[j].SubmittedDate)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStorage) CreateRequest(ctx context.Context, req *models.HRRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests[req.EmployeeID] = append(s.requests[req.EmployeeID], cloneRequest(*req))
	return nil
}

func (s *MemoryStorage) ListPolicies(ctx context.Context) ([]models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Policy, len(s.policies))
	copy(out, s.policies)
	return out, nil
}

func (s *MemoryStorage) GetPolicy(ctx context.Context, id string) (*models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.policies {
		if p.ID == id {
			out := p
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) SaveTurn(ctx context.Context, turn *models.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns[turn.SessionID] = append(s.turns[turn.SessionID], *turn)
	return nil
}

func (s *MemoryStorage) GetTurns(ctx context.Context, sessionID string, limit int) ([]models.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[sessionID]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]models.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
