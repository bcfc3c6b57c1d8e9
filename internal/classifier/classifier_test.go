package classifier

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xaenox/hr-hub/internal/locale"
	"github.com/xaenox/hr-hub/internal/models"
)

func testContext() Context {
	return Context{
		Snapshot: models.Snapshot{
			Employee: models.Employee{ID: "EMP001", Name: "Basel", Grade: "D", Department: "Technology"},
			VacationBalance: &models.VacationBalance{
				EmployeeID:    "EMP001",
				TotalDays:     30,
				UsedDays:      2,
				RemainingDays: 28,
				Year:          2025,
			},
			LastPayment: &models.SalaryPayment{
				ID:     "PAY001",
				Amount: 19500,
				Date:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				Status: "Paid",
			},
		},
		Formatter: locale.Parse("en-US"),
	}
}

func TestRuleClassifier_Classify(t *testing.T) {
	clf := NewRuleClassifier()
	cc := testContext()

	cases := []struct {
		name         string
		input        string
		wantRule     string
		wantCategory models.Category
		wantContains string
	}{
		{name: "vacation", input: "How many vacation days do I have?", wantRule: "vacation_balance", wantCategory: models.CategoryQuery, wantContains: "28 vacation days"},
		{name: "vacation upper case", input: "VACATION DAYS left", wantRule: "vacation_balance", wantCategory: models.CategoryQuery, wantContains: "28"},
		{name: "sick leave", input: "Request a sick leave", wantRule: "sick_leave_request", wantCategory: models.CategoryAction, wantContains: "medical certificate"},
		{name: "salary last", input: "What's my last salary payment?", wantRule: "last_salary", wantCategory: models.CategoryQuery, wantContains: "19,500"},
		{name: "salary payment", input: "salary payment status", wantRule: "last_salary", wantCategory: models.CategoryQuery, wantContains: "1/1/2025"},
		{name: "travel", input: "Show me the business travel policy", wantRule: "travel_policy", wantCategory: models.CategoryPolicy, wantContains: "4-star hotel"},
		{name: "wfh", input: "can I WFH tomorrow", wantRule: "work_from_home", wantCategory: models.CategoryPolicy, wantContains: "2 days per month"},
		{name: "remote", input: "remote work", wantRule: "work_from_home", wantCategory: models.CategoryPolicy, wantContains: "manager approval"},
		{name: "expense", input: "what is the expense policy", wantRule: "expense_policy", wantCategory: models.CategoryPolicy, wantContains: "original invoices"},
		{name: "salary alone", input: "salary", wantRule: "default", wantCategory: models.CategoryQuery, wantContains: `"salary"`},
		{name: "sick without request", input: "sick leave", wantRule: "default", wantCategory: models.CategoryQuery, wantContains: "vacation days, sick leave requests"},
	}

	for _, tc := range cases {
		got := clf.Classify(context.Background(), cc, tc.input)
		assert.EqualValues(t, tc.wantRule, clf.Match(tc.input), tc.name)
		assert.EqualValues(t, tc.wantCategory, got.Category, tc.name)
		assert.Contains(t, got.Text, tc.wantContains, tc.name)
	}
}

func TestRuleClassifier_FirstMatchWins(t *testing.T) {
	clf := NewRuleClassifier()
	input := "vacation days and the expense policy"

	got := clf.Classify(context.Background(), testContext(), input)
	assert.EqualValues(t, "vacation_balance", clf.Match(input))
	assert.EqualValues(t, models.CategoryQuery, got.Category)
	assert.Contains(t, got.Text, "28 vacation days")

	// rule 2 declared before rule 5
	assert.EqualValues(t, "sick_leave_request", clf.Match("request sick leave while remote"))
}

func TestRuleClassifier_NeverEmpty(t *testing.T) {
	clf := NewRuleClassifier()
	for _, input := range []string{"", "   ", "??", "vacation"} {
		got := clf.Classify(context.Background(), Context{}, input)
		assert.NotEmpty(t, got.Text, input)
		assert.NotEmpty(t, got.Category, input)
	}
}

func TestRuleClassifier_MissingSnapshot(t *testing.T) {
	clf := NewRuleClassifier()

	got := clf.Classify(context.Background(), Context{}, "vacation days")
	assert.Contains(t, got.Text, "couldn't find a vacation balance")

	got = clf.Classify(context.Background(), Context{}, "last salary")
	assert.Contains(t, got.Text, "couldn't find a salary payment")
}

func TestTravelEntitlementsByGrade(t *testing.T) {
	cc := testContext()
	cc.Snapshot.Employee.Grade = "a"
	got := NewRuleClassifier().Classify(context.Background(), cc, "travel policy")
	assert.True(t, strings.Contains(got.Text, "Grade A"))
	assert.Contains(t, got.Text, "First class")
}
