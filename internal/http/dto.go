package http

import (
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
	"finsight/internal/report"
	"finsight/internal/widget"
)

type recordDTO struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Kind        core.Kind `json:"kind"`
	Amount      float64   `json:"amount"`
	OccurredAt  string    `json:"occurredAt"`
	RecordedAt  time.Time `json:"recordedAt"`
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
}

func toRecordDTO(r core.Record) recordDTO {
	return recordDTO{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Kind:        r.Kind,
		Amount:      core.AmountFloat(r.Amount),
		OccurredAt:  r.OccurredAt.Format(),
		RecordedAt:  r.RecordedAt,
		Label:       r.Label,
		Description: r.Description,
	}
}

func toRecordDTOs(records []core.Record) []recordDTO {
	out := make([]recordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, toRecordDTO(r))
	}
	return out
}

type summaryDTO struct {
	TotalIncome    float64            `json:"totalIncome"`
	TotalExpense   float64            `json:"totalExpense"`
	Savings        float64            `json:"savings"`
	CategoryTotals map[string]float64 `json:"categoryTotals"`
	Error          string             `json:"error,omitempty"`
}

func toSummaryDTO(s report.Summary) summaryDTO {
	out := summaryDTO{
		TotalIncome:    core.AmountFloat(s.TotalIncome),
		TotalExpense:   core.AmountFloat(s.TotalExpense),
		Savings:        core.AmountFloat(s.Savings),
		CategoryTotals: make(map[string]float64, len(s.CategoryTotals)),
	}
	for label, total := range s.CategoryTotals {
		out.CategoryTotals[label] = core.AmountFloat(total)
	}
	return out
}

type seriesDTO struct {
	PeriodLabel  string  `json:"periodLabel"`
	IncomeTotal  float64 `json:"incomeTotal"`
	ExpenseTotal float64 `json:"expenseTotal"`
}

type categoryDTO struct {
	CategoryLabel string  `json:"categoryLabel"`
	Total         float64 `json:"total"`
}

type rowDTO struct {
	Date   string    `json:"date"`
	Label  string    `json:"label"`
	Type   core.Kind `json:"type"`
	Amount float64   `json:"amount"`
}

func toSeriesDTOs(rows []report.SeriesRow) []seriesDTO {
	out := make([]seriesDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, seriesDTO{
			PeriodLabel:  r.PeriodLabel,
			IncomeTotal:  core.AmountFloat(r.IncomeTotal),
			ExpenseTotal: core.AmountFloat(r.ExpenseTotal),
		})
	}
	return out
}

func toCategoryDTOs(rows []report.CategoryRow) []categoryDTO {
	out := make([]categoryDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, categoryDTO{CategoryLabel: r.CategoryLabel, Total: core.AmountFloat(r.Total)})
	}
	return out
}

func toRowDTOs(rows []report.FlatRow) []rowDTO {
	out := make([]rowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowDTO{
			Date:   r.Date.Format(dateLayout),
			Label:  r.Label,
			Type:   r.Type,
			Amount: core.AmountFloat(r.SignedAmount),
		})
	}
	return out
}

type insightDTO struct {
	Status  string   `json:"status"`
	Bullets []string `json:"bullets"`
	Message string   `json:"message,omitempty"`
}

type widgetDTO struct {
	Phase      widget.Phase `json:"phase"`
	Year       int          `json:"year,omitempty"`
	Month      int          `json:"month,omitempty"`
	Generation uint64       `json:"generation"`
	Bullets    []string     `json:"bullets"`
	Message    string       `json:"message,omitempty"`
	UpdatedAt  *time.Time   `json:"updatedAt,omitempty"`
}

func toWidgetDTO(s widget.State) widgetDTO {
	out := widgetDTO{
		Phase:      s.Phase,
		Year:       s.Key.Year,
		Month:      s.Key.Month,
		Generation: s.Generation,
		Bullets:    s.Bullets,
		Message:    s.Message,
	}
	if out.Bullets == nil {
		out.Bullets = []string{}
	}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// importItem is one reviewed statement line submitted for import.
type importItem struct {
	Date         string   `json:"date"`
	Description  string   `json:"description"`
	Amount       *float64 `json:"amount"`
	Type         string   `json:"type,omitempty"`
	ClassifiedAs string   `json:"classifiedAs,omitempty"`
	Category     string   `json:"category,omitempty"`
}

type importRequest struct {
	Transactions []importItem `json:"transactions"`
}

func amountFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}
