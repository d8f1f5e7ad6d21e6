package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"finsight/internal/core"
	"finsight/internal/export"
	"finsight/internal/log"
	"finsight/internal/report"
)

const recordsUnavailable = "records are unavailable right now"

// handleSummary serves totals over an inclusive window. The uid query
// parameter is optional but must name the caller when present.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := owner(r)
	q := r.URL.Query()

	if claimed := strings.TrimSpace(q.Get("uid")); claimed != "" && claimed != uid {
		ForbiddenError(core.ErrOwnerMismatch.Error()).Write(w)
		return
	}
	win, err := ParseWindow(q)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	sum, err := s.reports.Summary(ctx, uid, win)
	if err != nil {
		s.logReportFailure(r, uid, err)
		body := toSummaryDTO(report.Summary{})
		body.Error = recordsUnavailable
		NewJSONResponse().Body(body).Write(w)
		return
	}
	NewJSONResponse().Body(toSummaryDTO(sum)).Write(w)
}

// handleDashboard serves the series, expense categories and recent rows of
// one year from a single fetch.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := owner(r)

	mp, err := ParseMonthParams(r.URL.Query(), time.Now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	body := map[string]any{"year": mp.Year}
	rep, err := s.reports.Assemble(ctx, uid, report.Year(mp.Year).Admit)
	if err != nil {
		s.logReportFailure(r, uid, err)
		body["error"] = recordsUnavailable
	}
	body["series"] = toSeriesDTOs(rep.Series)
	body["categories"] = toCategoryDTOs(rep.Categories)
	body["rows"] = toRowDTOs(report.Recent(rep.Rows, report.DisplayLimit))
	body["total"] = len(rep.Rows)
	NewJSONResponse().Body(body).Write(w)
}

// handleMonthly serves the twelve-month series of one year.
func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := owner(r)

	mp, err := ParseMonthParams(r.URL.Query(), time.Now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	body := map[string]any{"year": mp.Year}
	records, err := s.reports.Records(ctx, uid)
	if err != nil {
		s.logReportFailure(r, uid, err)
		body["error"] = recordsUnavailable
	}
	body["series"] = toSeriesDTOs(report.Series(records, report.Year(mp.Year).Admit))
	NewJSONResponse().Body(body).Write(w)
}

// handleCategoryReport serves category totals of one kind, expenses by
// default, largest first.
func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := owner(r)
	q := r.URL.Query()

	kind := core.Expense
	if v := q.Get("kind"); v != "" {
		k, err := core.ParseKind(v)
		if err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		kind = k
	}
	win, err := ParseWindow(q)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	body := map[string]any{"kind": kind}
	records, err := s.reports.Records(ctx, uid)
	if err != nil {
		s.logReportFailure(r, uid, err)
		body["error"] = recordsUnavailable
	}
	body["categories"] = toCategoryDTOs(report.Categories(records, report.OfKind(kind, win.Admit)))
	NewJSONResponse().Body(body).Write(w)
}

// handleTransactions serves the most recent rows of the window; total is
// the uncapped row count.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := owner(r)

	win, err := ParseWindow(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	body := map[string]any{}
	records, err := s.reports.Records(ctx, uid)
	if err != nil {
		s.logReportFailure(r, uid, err)
		body["error"] = recordsUnavailable
	}
	rows := report.Rows(records, win.Admit)
	body["rows"] = toRowDTOs(report.Recent(rows, report.DisplayLimit))
	body["total"] = len(rows)
	NewJSONResponse().Body(body).Write(w)
}

// handleExport streams every row of the window as CSV or XLSX.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := owner(r)
	q := r.URL.Query()

	format := strings.ToLower(strings.TrimSpace(q.Get("format")))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		BadRequestError(fmt.Sprintf("unsupported export format %q", format)).Write(w)
		return
	}
	win, err := ParseWindow(q)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	records, err := s.reports.Records(ctx, uid)
	if err != nil {
		s.logReportFailure(r, uid, err)
		InternalServerError(recordsUnavailable).Write(w)
		return
	}
	rows := report.Rows(records, win.Admit)

	filename := "finsight-transactions-" + time.Now().UTC().Format("20060102") + "." + format
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = export.WriteCSV(w, rows)
	} else {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = export.WriteXLSX(w, rows)
	}
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Export failed",
			log.NewFields().WithOperation(log.OpExport).WithOwner(uid).WithError(err).ToSlice()...)
	}
}

func (s *Server) logReportFailure(r *http.Request, uid string, err error) {
	ctx := r.Context()
	log.FromContext(ctx).ErrorContext(ctx, "Report records fetch failed",
		log.NewFields().WithOperation(log.OpReport).WithOwner(uid).WithError(err).ToSlice()...)
}
