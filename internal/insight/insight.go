// Package insight builds the monthly summary prompt and parses the
// bullet-point answer of the text-generation service.
package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finsight/internal/core"
	"finsight/internal/llm"
	"finsight/internal/report"
)

// MaxBullets caps the parsed answer.
const MaxBullets = 3

// NoInsight is the user-facing message for every non-success outcome.
const NoInsight = "No insight available for this month."

// Status is the terminal state of one insight request.
type Status string

const (
	StatusSuccess Status = "success"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
)

// Result is the outcome of one insight request.
type Result struct {
	Status  Status
	Bullets []string
	Message string
}

// BuildPrompt formats the fixed prompt for one month of totals.
func BuildPrompt(m report.MonthSummary) string {
	var b strings.Builder
	month := time.Month(m.Month).String()
	fmt.Fprintf(&b, "Here is a summary of my personal finances for %s %d.\n", month, m.Year)
	fmt.Fprintf(&b, "Total income: %s\n", core.FormatAmount(m.Income))
	fmt.Fprintf(&b, "Total expenses: %s\n", core.FormatAmount(m.Expense))
	if len(m.Categories) > 0 {
		b.WriteString("Expenses by category:\n")
		for _, c := range m.Categories {
			fmt.Fprintf(&b, "- %s: %s\n", c.Label, core.FormatAmount(c.Total))
		}
	}
	b.WriteString("\nReply with 2 to 3 short markdown bullet points, each starting with \"* \":\n")
	b.WriteString("one observation about my income, one observation about my spending, ")
	b.WriteString("and optionally one tip to improve my savings. No other text.")
	return b.String()
}

var markers = []string{"*", "-", "•"}

// ParseBullets keeps lines starting with a bullet marker, strips the marker
// and caps the result at MaxBullets.
func ParseBullets(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		for _, m := range markers {
			if !strings.HasPrefix(line, m) {
				continue
			}
			text := strings.TrimSpace(strings.TrimPrefix(line, m))
			if text != "" {
				out = append(out, text)
			}
			break
		}
		if len(out) == MaxBullets {
			break
		}
	}
	return out
}

// FromContent classifies a raw answer.
func FromContent(content string) Result {
	bullets := ParseBullets(content)
	if len(bullets) == 0 {
		return Result{Status: StatusEmpty, Message: NoInsight}
	}
	return Result{Status: StatusSuccess, Bullets: bullets}
}

// Failed is the result of a service failure. The cause is logged by callers,
// never shown.
func Failed() Result {
	return Result{Status: StatusError, Message: NoInsight}
}

// Service runs insight requests against a text generator.
type Service struct {
	gen     llm.Generator
	timeout time.Duration
}

// NewService creates an insight service; timeout bounds each call.
func NewService(gen llm.Generator, timeout time.Duration) *Service {
	return &Service{gen: gen, timeout: timeout}
}

// Complete sends a prompt as-is and returns the raw answer.
func (s *Service) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("empty prompt")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.gen.Generate(ctx, prompt)
}

// ForMonth builds the prompt, calls the service once and classifies the
// answer. Errors are returned alongside the error Result for logging.
func (s *Service) ForMonth(ctx context.Context, m report.MonthSummary) (Result, error) {
	content, err := s.Complete(ctx, BuildPrompt(m))
	if err != nil {
		return Failed(), err
	}
	return FromContent(content), nil
}
