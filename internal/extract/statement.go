package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"finsight/internal/core"
	"finsight/internal/llm"
)

// Direction is the bank statement column a line came from.
type Direction string

const (
	Credit Direction = "CR"
	Debit  Direction = "DR"
)

// Line is one statement transaction awaiting user review.
type Line struct {
	Date         string
	Description  string
	Amount       float64
	Type         Direction
	ClassifiedAs string
}

// Kind maps the line direction onto a record kind.
func (l Line) Kind() core.Kind {
	if l.Type == Credit {
		return core.Income
	}
	return core.Expense
}

const statementPrompt = "You are a bank statement parser.\n\n" +
	"Task:\n" +
	"- Parse ALL transactions in the attached statement.\n" +
	"- Output STRICT JSON only: an array of objects.\n\n" +
	"Each object must have these fields:\n" +
	"- \"date\": string, ISO format \"YYYY-MM-DD\"\n" +
	"- \"description\": string\n" +
	"- \"amount\": number, always positive\n" +
	"- \"type\": \"CR\" for money in, \"DR\" for money out\n\n" +
	"Return ONLY valid raw JSON. Do NOT use markdown code fences.\n" +
	"Output must begin with \"[\" and end with \"]\"."

type modelLine struct {
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
	Type        string   `json:"type"`
}

// Statement reads all transaction lines from a statement file. Lines
// without a usable amount are dropped; a signed amount with no type is
// classified by its sign.
func (e *Extractor) Statement(ctx context.Context, data []byte, mimeType string) ([]Line, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if !Supported(mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	raw, err := e.generate(ctx, statementPrompt, data, mimeType)
	if err != nil {
		return nil, err
	}
	return ParseStatement(raw)
}

// ParseStatement decodes a model answer into statement lines.
func ParseStatement(raw string) ([]Line, error) {
	var parsed []modelLine
	if err := json.Unmarshal([]byte(llm.CleanJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	out := make([]Line, 0, len(parsed))
	for _, m := range parsed {
		if m.Amount == nil || *m.Amount == 0 || math.IsInf(*m.Amount, 0) || math.IsNaN(*m.Amount) {
			continue
		}
		amount := *m.Amount
		dir := Direction(strings.ToUpper(strings.TrimSpace(m.Type)))
		if dir != Credit && dir != Debit {
			dir = Debit
			if amount > 0 {
				dir = Credit
			}
		}
		l := Line{
			Date:        normalizeDate(m.Date),
			Description: strings.TrimSpace(m.Description),
			Amount:      math.Round(math.Abs(amount)*100) / 100,
			Type:        dir,
		}
		l.ClassifiedAs = l.Kind().Title()
		out = append(out, l)
	}
	return out, nil
}

func normalizeDate(s string) string {
	if d := core.Normalize(strings.TrimSpace(s)).Format(); d != "" {
		return d
	}
	if t, err := time.Parse("02/01/2006", strings.TrimSpace(s)); err == nil {
		return t.Format("2006-01-02")
	}
	return strings.TrimSpace(s)
}
