package models

import "time"

type Employee struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Title       string    `json:"title"`
	Department  string    `json:"department"`
	Grade       string    `json:"grade"`
	BasicSalary float64   `json:"basic_salary"`
	TotalSalary float64   `json:"total_salary"`
	Manager     string    `json:"manager"`
	StartDate   string    `json:"start_date"`
	CreatedAt   time.Time `json:"created_at"`
}

type VacationBalance struct {
	EmployeeID    string `json:"employee_id"`
	TotalDays     int    `json:"total_days"`
	UsedDays      int    `json:"used_days"`
	RemainingDays int    `json:"remaining_days"`
	Year          int    `json:"year"`
}

type SalaryPayment struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employee_id"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
}

// Dashboard aggregates the figures shown on the portal landing screen
type Dashboard struct {
	Employee           Employee       `json:"employee"`
	VacationDaysLeft   int            `json:"vacation_days_left"`
	PendingRequests    []HRRequest    `json:"pending_requests"`
	LastSalaryPayment  *SalaryPayment `json:"last_salary_payment,omitempty"`
	BusinessTripStatus *HRRequest     `json:"business_trip_status,omitempty"`
	RecentRequests     []HRRequest    `json:"recent_requests"`
}
