package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Category tags an assistant turn for display emphasis
type Category string

const (
	CategoryQuery  Category = "query"
	CategoryAction Category = "action"
	CategoryPolicy Category = "policy"
)

// Turn is one message in a conversation log. Response and Category are
// only populated on assistant turns.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Response  string    `json:"response,omitempty"`
	Category  Category  `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is the read-only employee context the assistant answers from
type Snapshot struct {
	Employee        Employee         `json:"employee"`
	VacationBalance *VacationBalance `json:"vacation_balance,omitempty"`
	LastPayment     *SalaryPayment   `json:"last_payment,omitempty"`
	RecentRequests  []HRRequest      `json:"recent_requests,omitempty"`
}
