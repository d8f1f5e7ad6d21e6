// Package extract asks the text-generation service to read amounts and
// statement lines out of uploaded receipts and bank statements.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"finsight/internal/llm"
)

var (
	ErrEmptyFile       = errors.New("empty file")
	ErrUnsupportedType = errors.New("unsupported mime type")
	ErrNoAmount        = errors.New("no amount found")
	ErrMalformed       = errors.New("malformed model response")
)

var supported = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
	"image/heic":      true,
}

// Supported reports whether a mime type can be sent to the model.
func Supported(mimeType string) bool {
	mt, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(mimeType)), ";")
	return supported[mt]
}

// Amount is the result of reading a single total from a document.
type Amount struct {
	Amount   float64
	Source   string
	ModelRaw string
}

// Extractor runs extraction prompts.
type Extractor struct {
	gen     llm.Generator
	timeout time.Duration
}

// New creates an Extractor; timeout bounds each model call.
func New(gen llm.Generator, timeout time.Duration) *Extractor {
	return &Extractor{gen: gen, timeout: timeout}
}

const amountPrompt = "You read receipts, invoices and payslips.\n" +
	"Find the single total amount paid or received in the attached document.\n" +
	"Output STRICT JSON only, no markdown, shaped as:\n" +
	"{\"amount\": number, \"source\": string}\n" +
	"where \"source\" is the exact text the amount was read from.\n" +
	"If no amount can be found, output {\"amount\": null, \"source\": \"\"}."

// Amount reads the total out of one document.
func (e *Extractor) Amount(ctx context.Context, data []byte, mimeType string) (Amount, error) {
	if len(data) == 0 {
		return Amount{}, ErrEmptyFile
	}
	if !Supported(mimeType) {
		return Amount{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	raw, err := e.generate(ctx, amountPrompt, data, mimeType)
	if err != nil {
		return Amount{}, err
	}

	var parsed struct {
		Amount *float64 `json:"amount"`
		Source string   `json:"source"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSON(raw)), &parsed); err != nil {
		return Amount{ModelRaw: raw}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if parsed.Amount == nil || *parsed.Amount <= 0 || math.IsInf(*parsed.Amount, 0) {
		return Amount{ModelRaw: raw}, ErrNoAmount
	}
	return Amount{
		Amount:   math.Round(*parsed.Amount*100) / 100,
		Source:   parsed.Source,
		ModelRaw: raw,
	}, nil
}

func (e *Extractor) generate(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	mt, _, _ := strings.Cut(mimeType, ";")
	return e.gen.Generate(ctx, prompt, llm.Attachment{MIMEType: strings.TrimSpace(mt), Data: data})
}
