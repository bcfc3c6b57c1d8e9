package models

import "time"

// ServiceKind enumerates the HR request forms
type ServiceKind string

const (
	ServiceVacation    ServiceKind = "vacation"
	ServiceSick        ServiceKind = "sick"
	ServiceWFH         ServiceKind = "wfh"
	ServiceCertificate ServiceKind = "certificate"
	ServiceExpense     ServiceKind = "expense"
	ServiceTravel      ServiceKind = "travel"
)

var ServiceKinds = []ServiceKind{
	ServiceVacation,
	ServiceSick,
	ServiceWFH,
	ServiceCertificate,
	ServiceExpense,
	ServiceTravel,
}

// Title returns the request type name used in request history
func (k ServiceKind) Title() string {
	switch k {
	case ServiceVacation:
		return "Vacation Leave"
	case ServiceSick:
		return "Sick Leave"
	case ServiceWFH:
		return "Work from Home"
	case ServiceCertificate:
		return "Salary Certificate"
	case ServiceExpense:
		return "Expense Reimbursement"
	case ServiceTravel:
		return "Business Trip"
	}
	return string(k)
}

func (k ServiceKind) Valid() bool {
	for _, known := range ServiceKinds {
		if k == known {
			return true
		}
	}
	return false
}

const (
	RequestPendingApproval = "Pending Approval"
	RequestUnderReview     = "Under Review"
	RequestApproved        = "Approved"
)

// HRRequest is a submitted request as it appears in request history
type HRRequest struct {
	ID            string            `json:"id"`
	EmployeeID    string            `json:"employee_id"`
	Kind          ServiceKind       `json:"kind"`
	Type          string            `json:"type"`
	Status        string            `json:"status"`
	Fields        map[string]string `json:"fields"`
	SubmittedDate time.Time         `json:"submitted_date"`
}
