package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/xaenox/hr-hub/internal/models"
)

const recentRequestLimit = 3

// LoadSnapshot gathers the assistant context for an employee. Missing
// balance or payment records are left nil.
func LoadSnapshot(ctx context.Context, s Storage, employeeID string) (models.Snapshot, error) {
	var snap models.Snapshot

	employee, err := s.GetEmployee(ctx, employeeID)
	if err != nil {
		return snap, fmt.Errorf("failed to get employee %s: %w", employeeID, err)
	}
	snap.Employee = *employee

	balance, err := s.GetVacationBalance(ctx, employeeID)
	switch {
	case err == nil:
		snap.VacationBalance = balance
	case !errors.Is(err, ErrNotFound):
		return snap, fmt.Errorf("failed to get vacation balance: %w", err)
	}

	payment, err := s.GetLastSalaryPayment(ctx, employeeID)
	switch {
	case err == nil:
		snap.LastPayment = payment
	case !errors.Is(err, ErrNotFound):
		return snap, fmt.Errorf("failed to get last salary payment: %w", err)
	}

	recent, err := s.ListRequests(ctx, employeeID, recentRequestLimit)
	if err != nil {
		return snap, fmt.Errorf("failed to list requests: %w", err)
	}
	snap.RecentRequests = recent

	return snap, nil
}

func isPending(status string) bool {
	return status == models.RequestPendingApproval || status == models.RequestUnderReview
}

// LoadDashboard builds the landing screen figures for an employee
func LoadDashboard(ctx context.Context, s Storage, employeeID string) (*models.Dashboard, error) {
	snap, err := LoadSnapshot(ctx, s, employeeID)
	if err != nil {
		return nil, err
	}

	all, err := s.ListRequests(ctx, employeeID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	dash := &models.Dashboard{
		Employee:          snap.Employee,
		LastSalaryPayment: snap.LastPayment,
		PendingRequests:   []models.HRRequest{},
		RecentRequests:    snap.RecentRequests,
	}
	if snap.VacationBalance != nil {
		dash.VacationDaysLeft = snap.VacationBalance.RemainingDays
	}
	for i := range all {
		req := all[i]
		if isPending(req.Status) {
			dash.PendingRequests = append(dash.PendingRequests, req)
		}
		if req.Kind == models.ServiceTravel && dash.BusinessTripStatus == nil {
			dash.BusinessTripStatus = &req
		}
	}
	if dash.RecentRequests == nil {
		dash.RecentRequests = []models.HRRequest{}
	}
	return dash, nil
}
