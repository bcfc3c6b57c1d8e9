package requests

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xaenox/hr-hub/internal/models"
)

type FieldType string

const (
	FieldText    FieldType = "text"
	FieldDate    FieldType = "date"
	FieldAmount  FieldType = "amount"
	FieldInteger FieldType = "integer"
)

const dateLayout = "2006-01-02"

type FieldSpec struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

// ValidationError names the first field that keeps a draft from being
// submitted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

var formFields = map[models.ServiceKind][]FieldSpec{
	models.ServiceVacation: leaveFields,
	models.ServiceSick:     leaveFields,
	models.ServiceWFH: {
		{Name: "wfhDate", Label: "Work from Home Date", Type: FieldDate, Required: true},
		{Name: "wfhReason", Label: "Reason", Type: FieldText, Required: true},
	},
	models.ServiceCertificate: {
		{Name: "purpose", Label: "Purpose", Type: FieldText, Required: true},
		{Name: "details", Label: "Additional Details", Type: FieldText},
	},
	models.ServiceExpense: {
		{Name: "amount", Label: "Amount (SAR)", Type: FieldAmount, Required: true},
		{Name: "expenseDate", Label: "Expense Date", Type: FieldDate, Required: true},
		{Name: "category", Label: "Category", Type: FieldText},
		{Name: "description", Label: "Description", Type: FieldText, Required: true},
	},
	models.ServiceTravel: {
		{Name: "destination", Label: "Destination", Type: FieldText, Required: true},
		{Name: "duration", Label: "Duration (days)", Type: FieldInteger, Required: true},
		{Name: "departureDate", Label: "Departure Date", Type: FieldDate, Required: true},
		{Name: "returnDate", Label: "Return Date", Type: FieldDate, Required: true},
		{Name: "businessPurpose", Label: "Business Purpose", Type: FieldText, Required: true},
	},
}

var leaveFields = []FieldSpec{
	{Name: "startDate", Label: "Start Date", Type: FieldDate, Required: true},
	{Name: "endDate", Label: "End Date", Type: FieldDate, Required: true},
	{Name: "reason", Label: "Reason", Type: FieldText},
}

// dateRanges lists (start, end) field pairs where end may not precede start
var dateRanges = map[models.ServiceKind][2]string{
	models.ServiceVacation: {"startDate", "endDate"},
	models.ServiceSick:     {"startDate", "endDate"},
	models.ServiceTravel:   {"departureDate", "returnDate"},
}

// Fields returns the form definition for kind
func Fields(kind models.ServiceKind) []FieldSpec {
	specs := formFields[kind]
	out := make([]FieldSpec, len(specs))
	copy(out, specs)
	return out
}

func RequiredFields(kind models.ServiceKind) []string {
	var names []string
	for _, spec := range formFields[kind] {
		if spec.Required {
			names = append(names, spec.Name)
		}
	}
	return names
}

// Validate checks fields against the form for kind, reporting the first
// problem in form order.
func Validate(kind models.ServiceKind, fields map[string]string) error {
	specs, ok := formFields[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownServiceKind, kind)
	}

	for _, spec := range specs {
		value := strings.TrimSpace(fields[spec.Name])
		if value == "" {
			if spec.Required {
				return &ValidationError{Field: spec.Name, Reason: "is required"}
			}
			continue
		}
		if err := checkType(spec, value); err != nil {
			return err
		}
	}

	if pair, ok := dateRanges[kind]; ok {
		start, _ := time.Parse(dateLayout, strings.TrimSpace(fields[pair[0]]))
		end, _ := time.Parse(dateLayout, strings.TrimSpace(fields[pair[1]]))
		if end.Before(start) {
			return &ValidationError{Field: pair[1], Reason: "must not be before " + pair[0]}
		}
	}
	return nil
}

func checkType(spec FieldSpec, value string) error {
	switch spec.Type {
	case FieldDate:
		if _, err := time.Parse(dateLayout, value); err != nil {
			return &ValidationError{Field: spec.Name, Reason: "must be a date in YYYY-MM-DD format"}
		}
	case FieldAmount:
		amount, err := strconv.ParseFloat(value, 64)
		if err != nil || !(amount > 0) || math.IsInf(amount, 1) {
			return &ValidationError{Field: spec.Name, Reason: "must be a positive amount"}
		}
	case FieldInteger:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return &ValidationError{Field: spec.Name, Reason: "must be a positive whole number"}
		}
	}
	return nil
}
