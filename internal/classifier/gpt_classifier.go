package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/xaenox/hr-hub/internal/models"
)

const systemPrompt = `You are an AI HR Assistant for 1957 Ventures company. You help employees with HR-related questions, policy information, and can assist with form submissions.

Employee Information:
- Name: %s
- Grade: %s
- Department: %s
- Title: %s

Current HR Status:
%s

HR Policies Summary:
- Grade D employees get 30 vacation days per year
- Grade C and below get 25 vacation days per year
- Sick leave: First 30 days full salary, next 60 days 3/4 salary, next 30 days no salary
- Business travel allowances: 200-400 SAR domestic, 300-600 SAR international based on grade
- Remote work: Maximum 2 days per month, manager approval required
- Working hours: Sunday-Thursday, 8 hours/day, 7:30/8:30 AM to 4:30/5:30 PM

Instructions:
1. Answer HR questions accurately based on the policies
2. Be helpful and professional
3. For specific requests like "request sick leave", guide them to submit a formal request
4. Always reference actual data when available
5. Keep responses concise but informative
6. If you don't know something, be honest and suggest contacting HR directly`

type GPTClassifier struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	fallback    Classifier
	logger      *zap.Logger
}

// NewGPTClassifier answers through the chat completions API. A call that
// fails or takes longer than timeout is answered by fallback instead; a
// non-positive timeout means no deadline.
func NewGPTClassifier(apiKey, baseURL, model string, maxTokens int, temperature float64, timeout time.Duration, fallback Classifier, logger *zap.Logger) *GPTClassifier {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &GPTClassifier{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
		fallback:    fallback,
		logger:      logger,
	}
}

func (c *GPTClassifier) Classify(ctx context.Context, cc Context, text string) Response {
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(
		callCtx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: buildSystemPrompt(cc),
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: text,
				},
			},
			MaxTokens:   c.maxTokens,
			Temperature: float32(c.temperature),
		},
	)
	if err != nil {
		c.logger.Error("Failed to get GPT response", zap.Error(err))
		return c.fallback.Classify(ctx, cc, text)
	}
	if len(resp.Choices) == 0 {
		c.logger.Warn("GPT response has no choices", zap.String("id", resp.ID))
		return c.fallback.Classify(ctx, cc, text)
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return c.fallback.Classify(ctx, cc, text)
	}
	return Response{Text: answer, Category: categoryFor(text)}
}

func buildSystemPrompt(cc Context) string {
	s := cc.Snapshot
	var status []string
	if b := s.VacationBalance; b != nil {
		status = append(status, fmt.Sprintf("Vacation Days: %d/%d remaining", b.RemainingDays, b.TotalDays))
	}
	if len(s.RecentRequests) > 0 {
		status = append(status, "Recent Requests:")
		for _, req := range s.RecentRequests {
			status = append(status, fmt.Sprintf("- %s: %s", req.Type, req.Status))
		}
	}
	if p := s.LastPayment; p != nil {
		status = append(status, fmt.Sprintf("Last Salary: %.2f SAR on %s", p.Amount, p.Date.Format("2006-01-02")))
	}
	return fmt.Sprintf(systemPrompt,
		s.Employee.Name, s.Employee.Grade, s.Employee.Department, s.Employee.Title,
		strings.Join(status, "\n"))
}

// categoryFor tags a free-form answer by what the user asked for
func categoryFor(text string) models.Category {
	folded := fold(text)
	switch {
	case containsAny("request", "submit", "apply")(folded):
		return models.CategoryAction
	case containsAny("policy", "rule", "procedure")(folded):
		return models.CategoryPolicy
	default:
		return models.CategoryQuery
	}
}
