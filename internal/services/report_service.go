package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"finsight/internal/core"
	"finsight/internal/insight"
	"finsight/internal/report"
	"finsight/internal/store"
	"finsight/internal/widget"
)

// ReportService fetches an owner's records and runs the report pipeline.
// Every call re-reads the store; nothing is cached between calls.
type ReportService struct {
	reader store.RecordReader
}

func NewReportService(reader store.RecordReader) *ReportService {
	return &ReportService{reader: reader}
}

// Records fetches both kinds concurrently.
func (s *ReportService) Records(ctx context.Context, owner string) ([]core.Record, error) {
	var incomes, expenses []core.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		incomes, err = s.reader.List(gctx, owner, core.Income)
		if err != nil {
			return fmt.Errorf("list incomes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = s.reader.List(gctx, owner, core.Expense)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return append(incomes, expenses...), nil
}

// Summary totals the owner's records within the window.
func (s *ReportService) Summary(ctx context.Context, owner string, w report.Window) (report.Summary, error) {
	records, err := s.Records(ctx, owner)
	if err != nil {
		return report.Summary{}, err
	}
	return report.Summarize(records, w), nil
}

// Assemble builds the chart and row shapes for the admitted records.
func (s *ReportService) Assemble(ctx context.Context, owner string, admit report.Predicate) (report.Report, error) {
	records, err := s.Records(ctx, owner)
	if err != nil {
		return report.Report{}, err
	}
	return report.Assemble(records, admit), nil
}

// Month totals one month of the owner's records; month is 1-indexed.
func (s *ReportService) Month(ctx context.Context, owner string, year, month int) (report.MonthSummary, error) {
	records, err := s.Records(ctx, owner)
	if err != nil {
		return report.MonthSummary{}, err
	}
	return report.SummarizeMonth(records, year, month), nil
}

// InsightLoader wires the widget board to a fresh fetch, aggregation and
// insight request for each key.
func (s *ReportService) InsightLoader(ins *insight.Service) widget.Loader {
	return func(ctx context.Context, key widget.Key) (insight.Result, error) {
		m, err := s.Month(ctx, key.Owner, key.Year, key.Month)
		if err != nil {
			return insight.Failed(), err
		}
		return ins.ForMonth(ctx, m)
	}
}
