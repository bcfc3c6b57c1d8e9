package storage

import (
	"time"

	"github.com/xaenox/hr-hub/internal/models"
)

// SampleEmployeeID is the employee the portal runs as
const SampleEmployeeID = "EMP001"

// Seed is the data a fresh store starts with
type Seed struct {
	Employees []models.Employee
	Balances  []models.VacationBalance
	Payments  []models.SalaryPayment
	Requests  []models.HRRequest
	Policies  []models.Policy
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func SampleData() Seed {
	return Seed{
		Employees: []models.Employee{{
			ID:          SampleEmployeeID,
			Name:        "Basel",
			Email:       "basel@1957ventures.com",
			Title:       "Senior Software Engineer",
			Department:  "Technology",
			Grade:       "D",
			BasicSalary: 15000,
			TotalSalary: 19500,
			Manager:     "Sarah Johnson",
			StartDate:   "2022-03-15",
			CreatedAt:   day(2022, time.March, 15),
		}},
		Balances: []models.VacationBalance{{
			EmployeeID:    SampleEmployeeID,
			TotalDays:     30,
			UsedDays:      2,
			RemainingDays: 28,
			Year:          2025,
		}},
		Payments: []models.SalaryPayment{{
			ID:          "PAY001",
			EmployeeID:  SampleEmployeeID,
			Amount:      19500,
			Date:        day(2025, time.January, 1),
			Status:      "Paid",
			Description: "Monthly Salary",
		}},
		Requests: []models.HRRequest{
			{
				ID:         "REQ001",
				EmployeeID: SampleEmployeeID,
				Kind:       models.ServiceTravel,
				Type:       models.ServiceTravel.Title(),
				Status:     models.RequestPendingApproval,
				Fields: map[string]string{
					"destination":     "Dubai",
					"departureDate":   "2025-01-20",
					"returnDate":      "2025-01-25",
					"businessPurpose": "Client meeting and project review",
					"duration":        "5",
				},
				SubmittedDate: day(2025, time.January, 10),
			},
			{
				ID:         "REQ002",
				EmployeeID: SampleEmployeeID,
				Kind:       models.ServiceExpense,
				Type:       models.ServiceExpense.Title(),
				Status:     models.RequestUnderReview,
				Fields: map[string]string{
					"amount":      "450",
					"category":    "meals",
					"description": "Client dinner during business trip",
				},
				SubmittedDate: day(2025, time.January, 8),
			},
			{
				ID:         "REQ003",
				EmployeeID: SampleEmployeeID,
				Kind:       models.ServiceVacation,
				Type:       models.ServiceVacation.Title(),
				Status:     models.RequestApproved,
				Fields: map[string]string{
					"startDate": "2024-12-20",
					"endDate":   "2024-12-30",
					"reason":    "Family vacation",
				},
				SubmittedDate: day(2024, time.December, 1),
			},
		},
		Policies: []models.Policy{
			{
				ID:       "POL001",
				Title:    "Annual Leave Policy",
				Category: "Leaves",
				Content: `Annual Leave entitlements vary by grade:

**Grade D and above:** 30 working days per year
**Grade C and below:** 25 working days per year
**External projects:** 22 working days per year

**Key Rules:**
- Minimum 10 consecutive days must be taken once per year
- Maximum 10 days can be carried forward to next year
- Weekends and public holidays during leave are not counted
- All leave must be approved in advance by authorized person
- Working during leave is prohibited - all system access suspended`,
				Tags:        []string{"vacation", "annual", "leave", "entitlement"},
				LastUpdated: day(2024, time.December, 1),
			},
			{
				ID:       "POL002",
				Title:    "Sick Leave Policy",
				Category: "Leaves",
				Content: `Sick leave entitlements as per Saudi Labor Law:

**First 30 days:** Full salary
**Next 60 days:** Three quarters salary
**Next 30 days:** No salary

**Requirements:**
- Must notify immediate supervisor on first day
- Medical certificate required from approved medical bodies
- Certificates from outside Saudi Arabia must be attested by Saudi Embassy
- No prior approval needed`,
				Tags:        []string{"sick", "medical", "leave", "certificate"},
				LastUpdated: day(2024, time.November, 15),
			},
			{
				ID:       "POL003",
				Title:    "Business Travel Policy",
				Category: "Travel",
				Content: `Business travel entitlements by grade:

**Grade A:** First class tickets, 5-star hotels, Junior Suite
**Grade B:** Business class tickets, 5-star hotels, Regular room
**Grade C:** Economy class tickets, 5-star hotels, Regular room
**Grade D:** Economy class tickets, 4-star hotels, Regular room

**Daily Allowances:**
Inside Kingdom: 200-400 SAR based on grade
Outside Kingdom: 300-600 SAR based on grade

**Accommodation:** Up to 14 days hotel stay provided
**Transportation:** Company provides airport pickup/dropoff`,
				Tags:        []string{"travel", "business", "allowance", "accommodation"},
				LastUpdated: day(2024, time.October, 20),
			},
			{
				ID:       "POL004",
				Title:    "Salary and Compensation",
				Category: "Compensation",
				Content: `Salary structure includes:

**Basic Components:**
- Basic salary (determined by grade and experience)
- Housing allowance (25% of basic salary)
- Transportation allowance (varies by grade)

**Additional Benefits:**
- Ramadan bonus (1 month basic salary)
- End of year bonus (1 month basic salary)
- Medical coverage for employee and family
- Children education allowance (Grades C and above)

**Payment:** Monthly on 15th of each month in Saudi Riyals`,
				Tags:        []string{"salary", "compensation", "benefits", "allowance"},
				LastUpdated: day(2024, time.September, 10),
			},
			{
				ID:       "POL005",
				Title:    "Work Rules and Conduct",
				Category: "Conduct",
				Content: `Working hours and conduct:

**Working Hours:**
- 5 days per week (Sunday to Thursday)
- 8 hours per day, 40 hours per week
- Official hours: 7:30/8:30 AM to 4:30/5:30 PM

**Remote Work:**
- Maximum 2 days per month allowed
- Cannot be start/end of week
- Manager approval required`,
				Tags:        []string{"conduct", "dress", "hours", "remote"},
				LastUpdated: day(2024, time.August, 15),
			},
		},
	}
}
