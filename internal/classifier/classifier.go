package classifier

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/xaenox/hr-hub/internal/locale"
	"github.com/xaenox/hr-hub/internal/models"
)

// Response is the assistant's answer to one user utterance
type Response struct {
	Text     string          `json:"text"`
	Category models.Category `json:"category"`
}

// Context is the read-only data an answer may depend on
type Context struct {
	Snapshot  models.Snapshot
	Formatter *locale.Formatter
}

// Classifier maps free text to a response. Implementations never fail and
// never return an empty response.
type Classifier interface {
	Classify(ctx context.Context, cc Context, text string) Response
}

// Rule pairs a predicate over case-folded input with a responder
type Rule struct {
	Name     string
	Category models.Category
	Match    func(folded string) bool
	Respond  func(cc Context, text string) string
}

type RuleClassifier struct {
	rules    []Rule
	fallback Rule
}

func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{
		rules:    Rules(),
		fallback: DefaultRule(),
	}
}

// Classify returns the response of the first matching rule. Declaration
// order is the tie-break.
func (c *RuleClassifier) Classify(_ context.Context, cc Context, text string) Response {
	folded := fold(text)
	for _, rule := range c.rules {
		if rule.Match(folded) {
			return Response{Text: rule.Respond(cc, text), Category: rule.Category}
		}
	}
	return Response{Text: c.fallback.Respond(cc, text), Category: c.fallback.Category}
}

// Match reports the name of the rule text resolves to
func (c *RuleClassifier) Match(text string) string {
	folded := fold(text)
	for _, rule := range c.rules {
		if rule.Match(folded) {
			return rule.Name
		}
	}
	return c.fallback.Name
}

func fold(text string) string {
	// cases.Caser is stateful, build one per call
	return cases.Fold().String(text)
}

func containsAll(words ...string) func(string) bool {
	return func(s string) bool {
		for _, w := range words {
			if !strings.Contains(s, w) {
				return false
			}
		}
		return true
	}
}

func containsAny(words ...string) func(string) bool {
	return func(s string) bool {
		for _, w := range words {
			if strings.Contains(s, w) {
				return true
			}
		}
		return false
	}
}

func both(a, b func(string) bool) func(string) bool {
	return func(s string) bool {
		return a(s) && b(s)
	}
}

// Rules returns the ordered rule table
func Rules() []Rule {
	return []Rule{
		{
			Name:     "vacation_balance",
			Category: models.CategoryQuery,
			Match:    containsAll("vacation", "days"),
			Respond:  vacationBalance,
		},
		{
			Name:     "sick_leave_request",
			Category: models.CategoryAction,
			Match:    containsAll("sick leave", "request"),
			Respond: func(Context, string) string {
				return sickLeaveText
			},
		},
		{
			Name:     "last_salary",
			Category: models.CategoryQuery,
			Match:    both(containsAll("salary"), containsAny("last", "payment")),
			Respond:  lastSalary,
		},
		{
			Name:     "travel_policy",
			Category: models.CategoryPolicy,
			Match:    containsAny("business travel", "travel policy"),
			Respond:  travelEntitlements,
		},
		{
			Name:     "work_from_home",
			Category: models.CategoryPolicy,
			Match:    containsAny("work from home", "wfh", "remote"),
			Respond: func(Context, string) string {
				return workFromHomeText
			},
		},
		{
			Name:     "expense_policy",
			Category: models.CategoryPolicy,
			Match:    containsAll("expense", "policy"),
			Respond: func(Context, string) string {
				return expenseText
			},
		},
	}
}

func DefaultRule() Rule {
	return Rule{
		Name:     "default",
		Category: models.CategoryQuery,
		Match:    func(string) bool { return true },
		Respond: func(_ Context, text string) string {
			return fmt.Sprintf(defaultTemplate, text)
		},
	}
}

const (
	sickLeaveText = "I can help you request sick leave. According to our policy, you'll need to provide a medical certificate from an approved medical body. For the first 30 days, you'll receive full salary. Would you like me to guide you through the sick leave request form?"

	workFromHomeText = "You can request work from home for a maximum of 2 days per month. The request cannot be at the beginning or end of the week and requires manager approval. Would you like me to help you submit a WFH request?"

	expenseText = "For expense reimbursement, you can claim business-related expenses with proper receipts. Categories include travel, meals, accommodation, office supplies, and other work-related expenses. All expenses must be approved by your manager and supported by original invoices. Would you like to submit an expense claim?"

	defaultTemplate = "I understand you're asking about \"%s\". I'm here to help with HR-related questions about policies, leave requests, salary information, and more. Could you please be more specific about what you'd like to know? I can help with vacation days, sick leave requests, expense claims, business travel, work from home policies, and general HR inquiries."
)

func vacationBalance(cc Context, _ string) string {
	b := cc.Snapshot.VacationBalance
	if b == nil {
		return "I couldn't find a vacation balance on your record. Please contact HR support."
	}
	return fmt.Sprintf("You currently have %d vacation days remaining out of your annual %d-day entitlement (Grade %s). You've used %d days so far this year. Remember, you need to take at least 10 consecutive days once per year according to company policy.",
		b.RemainingDays, b.TotalDays, cc.Snapshot.Employee.Grade, b.UsedDays)
}

func lastSalary(cc Context, _ string) string {
	p := cc.Snapshot.LastPayment
	if p == nil {
		return "I couldn't find a salary payment on your record yet. Salaries are paid monthly on the 15th of each month."
	}
	f := cc.Formatter
	if f == nil {
		f = locale.Parse("en-US")
	}
	return fmt.Sprintf("Your last salary payment was %s on %s. The payment status is \"%s\". Salaries are paid monthly on the 15th of each month.",
		f.Riyal(p.Amount), f.Date(p.Date), p.Status)
}

type travelClass struct {
	ticket string
	hotel  string
}

var travelByGrade = map[string]travelClass{
	"A": {ticket: "First class", hotel: "5-star hotel Junior Suite"},
	"B": {ticket: "Business class", hotel: "5-star hotel"},
	"C": {ticket: "Economy class", hotel: "5-star hotel"},
	"D": {ticket: "Economy class", hotel: "4-star hotel"},
}

func travelEntitlements(cc Context, _ string) string {
	grade := strings.ToUpper(cc.Snapshot.Employee.Grade)
	class, ok := travelByGrade[grade]
	if !ok {
		class = travelByGrade["D"]
	}
	return fmt.Sprintf("Based on your Grade %s, for business travel you're entitled to: %s tickets, %s accommodation, and 200-400 SAR daily allowance inside the Kingdom (300-600 SAR outside). The company provides up to 14 days hotel stay and airport transfers. Would you like to see the full travel policy or request a business trip?",
		grade, class.ticket, class.hotel)
}
