package storage

import (
	"context"
	"errors"

	"github.com/xaenox/hr-hub/internal/models"
)

var ErrNotFound = errors.New("not found")

// Storage is the read side the portal screens and the assistant consume,
// plus the two writes the portal performs: recording submitted requests
// and chat turns.
type Storage interface {
	GetEmployee(ctx context.Context, id string) (*models.Employee, error)
	GetVacationBalance(ctx context.Context, employeeID string) (*models.VacationBalance, error)
	GetLastSalaryPayment(ctx context.Context, employeeID string) (*models.SalaryPayment, error)

	// ListRequests returns the newest requests first
	ListRequests(ctx context.Context, employeeID string, limit int) ([]models.HRRequest, error)
	CreateRequest(ctx context.Context, req *models.HRRequest) error

	ListPolicies(ctx context.Context) ([]models.Policy, error)
	GetPolicy(ctx context.Context, id string) (*models.Policy, error)

	Close() error

	// Embed TurnStorage interface
	TurnStorage
}

type TurnStorage interface {
	SaveTurn(ctx context.Context, turn *models.Turn) error
	// GetTurns returns the last limit turns in creation order; limit <= 0
	// returns the whole session.
	GetTurns(ctx context.Context, sessionID string, limit int) ([]models.Turn, error)
}
