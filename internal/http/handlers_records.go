package http

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"finsight/internal/auth"
	"finsight/internal/core"
	"finsight/internal/log"
	"finsight/internal/services"
	"finsight/internal/store"
)

const maxFormBody = 64 << 10

// owner returns the authenticated uid; the auth middleware guarantees one.
func owner(r *http.Request) string {
	u, _ := auth.FromContext(r.Context())
	return u.UID
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	body := make(map[string][]string, 2)
	for _, k := range core.Kinds() {
		body[string(k)] = k.Labels()
	}
	NewJSONResponse().Body(body).Write(w)
}

func (s *Server) handleListRecords(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		uid := owner(r)

		records, err := s.records.List(ctx, uid, kind)
		if err != nil {
			log.FromContext(ctx).ErrorContext(ctx, "List records failed",
				log.NewFields().WithOperation(log.OpList).WithOwner(uid).WithError(err).ToSlice()...)
			NewJSONResponse().Body(map[string]any{
				"records": []recordDTO{},
				"error":   "records are unavailable right now",
			}).Write(w)
			return
		}
		NewJSONResponse().Body(map[string]any{"records": toRecordDTOs(records)}).Write(w)
	}
}

// handleCreateRecord stores one manually entered record. The body is JSON
// or form-encoded with amount, date, category, custom and description.
// handleGetRecord serves one of the caller's records; other owners'
// records are reported as missing.
func (s *Server) handleGetRecord(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		uid := owner(r)

		rec, err := s.records.Get(ctx, uid, kind, chi.URLParam(r, "id"))
		if errors.Is(err, store.ErrNotFound) {
			ErrorResponse(http.StatusNotFound, "record not found").Write(w)
			return
		}
		if err != nil {
			log.FromContext(ctx).ErrorContext(ctx, "Get record failed",
				log.NewFields().WithOperation(log.OpList).WithOwner(uid).WithError(err).ToSlice()...)
			InternalServerError(recordsUnavailable).Write(w)
			return
		}
		NewJSONResponse().Body(toRecordDTO(rec)).Write(w)
	}
}

func (s *Server) handleCreateRecord(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		uid := owner(r)

		r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
		p := NewRequestBodyParser(r)
		if err := p.Parse(); err != nil {
			BadRequestError("malformed request body").Write(w)
			return
		}

		if claimed := p.Get("ownerId"); claimed != "" && claimed != uid {
			ForbiddenError(core.ErrOwnerMismatch.Error()).Write(w)
			return
		}

		amount, err := core.ParseAmount(p.Get("amount"))
		if err != nil {
			UnprocessableEntityError("amount must be a positive number").Write(w)
			return
		}
		occurred, err := parseDate(p.Get("date"), time.Now())
		if err != nil {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}
		category := p.Get("category")
		if category == "" {
			category = p.Get("label")
		}
		label, err := core.ResolveLabel(kind, category, p.Get("custom"))
		if err != nil {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}

		rec, err := s.records.Create(ctx, core.NewRecord{
			OwnerID:     uid,
			Kind:        kind,
			Amount:      amount,
			OccurredAt:  occurred,
			Label:       label,
			Description: p.Get("description"),
		})
		if err != nil {
			if isValidation(err) {
				UnprocessableEntityError(err.Error()).Write(w)
				return
			}
			log.FromContext(ctx).ErrorContext(ctx, "Create record failed",
				log.NewFields().WithOperation(log.OpCreate).WithOwner(uid).WithError(err).ToSlice()...)
			InternalServerError("failed to save record").Write(w)
			return
		}

		log.FromContext(ctx).InfoContext(ctx, "Record created",
			log.FieldRecordID, rec.ID,
			log.FieldKind, rec.Kind,
			log.FieldLabel, rec.Label)
		NewJSONResponse().Status(http.StatusCreated).Body(toRecordDTO(rec)).Write(w)
	}
}

// handleImport stores reviewed statement lines. All lines are checked
// before the first write; a store failure mid-batch leaves earlier lines
// committed and reports how many.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := owner(r)

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}
	if len(req.Transactions) == 0 {
		UnprocessableEntityError("no transactions to import").Write(w)
		return
	}

	items := make([]core.NewRecord, 0, len(req.Transactions))
	for i, it := range req.Transactions {
		n, err := newImportRecord(uid, it)
		if err != nil {
			index := i
			NewJSONResponse().Status(http.StatusUnprocessableEntity).
				Body(errorBody{Error: err.Error(), Index: &index}).Write(w)
			return
		}
		items = append(items, n)
	}

	committed, err := s.records.Import(ctx, items)
	if err != nil {
		var ie *services.ImportError
		index := -1
		if errors.As(err, &ie) {
			index = ie.Index
		}
		if isValidation(err) {
			NewJSONResponse().Status(http.StatusUnprocessableEntity).
				Body(errorBody{Error: err.Error(), Index: &index}).Write(w)
			return
		}
		log.FromContext(ctx).ErrorContext(ctx, "Import failed",
			log.NewFields().WithOperation(log.OpImport).WithOwner(uid).WithError(err).ToSlice()...)
		NewJSONResponse().Status(http.StatusInternalServerError).
			Body(errorBody{Error: "import stopped before completion", Committed: &committed, Index: &index}).Write(w)
		return
	}

	log.FromContext(ctx).InfoContext(ctx, "Transactions imported", "committed", committed)
	NewJSONResponse().Status(http.StatusCreated).Body(map[string]int{"committed": committed}).Write(w)
}

// newImportRecord maps a statement line to a record. classifiedAs wins over
// the CR/DR direction; lines without a category are filed under Other.
func newImportRecord(uid string, it importItem) (core.NewRecord, error) {
	var kind core.Kind
	var err error
	switch {
	case it.ClassifiedAs != "":
		kind, err = core.ParseKind(it.ClassifiedAs)
	case strings.EqualFold(it.Type, "CR"):
		kind = core.Income
	case strings.EqualFold(it.Type, "DR"):
		kind = core.Expense
	default:
		err = core.ErrInvalidKind
	}
	if err != nil {
		return core.NewRecord{}, err
	}

	if it.Amount == nil || math.IsNaN(*it.Amount) || math.IsInf(*it.Amount, 0) || *it.Amount <= 0 {
		return core.NewRecord{}, core.ErrInvalidAmount
	}
	occurred, err := time.Parse(dateLayout, strings.TrimSpace(it.Date))
	if err != nil {
		return core.NewRecord{}, core.ErrInvalidDate
	}

	label := core.LabelOther
	if c := sanitizeInput(it.Category); c != "" {
		if label, err = core.ResolveLabel(kind, c, ""); err != nil {
			return core.NewRecord{}, err
		}
	}

	n := core.NewRecord{
		OwnerID:     uid,
		Kind:        kind,
		Amount:      amountFromFloat(*it.Amount),
		OccurredAt:  occurred,
		Label:       label,
		Description: sanitizeInput(it.Description),
	}
	return n, n.Validate()
}

func isValidation(err error) bool {
	for _, target := range []error{
		core.ErrInvalidKind, core.ErrInvalidAmount, core.ErrInvalidDate, core.ErrEmptyOwner,
		core.ErrEmptyLabel, core.ErrUnknownLabel, core.ErrDescriptionLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
