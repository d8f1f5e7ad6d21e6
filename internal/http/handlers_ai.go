package http

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"finsight/internal/extract"
	"finsight/internal/insight"
	"finsight/internal/log"
	"finsight/internal/widget"
)

const aiUnavailable = "AI features are not configured"

type amountResponse struct {
	Amount   *float64 `json:"amount,omitempty"`
	Source   string   `json:"source,omitempty"`
	ModelRaw string   `json:"modelRaw,omitempty"`
}

type statementLineDTO struct {
	Date         string  `json:"date"`
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
	Type         string  `json:"type"`
	ClassifiedAs string  `json:"classifiedAs"`
}

// handleAmountExtract reads the total out of an inline base64 document.
// A document without a readable amount answers 200 without one.
func (s *Server) handleAmountExtract(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		ServiceUnavailableError(aiUnavailable).Write(w)
		return
	}
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload*4/3+4096)
	var req struct {
		Base64   string `json:"base64"`
		MimeType string `json:"mimeType"`
	}
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}
	data, err := decodeBase64(req.Base64)
	if err != nil {
		BadRequestError("base64 field is not valid base64").Write(w)
		return
	}

	res, err := s.extractor.Amount(ctx, data, req.MimeType)
	switch {
	case err == nil:
		amount := res.Amount
		NewJSONResponse().Body(amountResponse{Amount: &amount, Source: res.Source, ModelRaw: res.ModelRaw}).Write(w)
	case errors.Is(err, extract.ErrNoAmount):
		NewJSONResponse().Body(amountResponse{ModelRaw: res.ModelRaw}).Write(w)
	default:
		s.writeExtractError(w, r, err, res.ModelRaw)
	}
}

// handleFileTransaction reads statement lines out of the multipart
// "receipt" upload.
func (s *Server) handleFileTransaction(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		ServiceUnavailableError(aiUnavailable).Write(w)
		return
	}
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+1<<20)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		BadRequestError("expected a multipart form with a receipt file").Write(w)
		return
	}
	file, header, err := r.FormFile("receipt")
	if err != nil {
		BadRequestError("missing receipt file").Write(w)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxUpload+1))
	if err != nil {
		BadRequestError("could not read receipt file").Write(w)
		return
	}
	if int64(len(data)) > s.maxUpload {
		ErrorResponse(http.StatusRequestEntityTooLarge, "receipt file is too large").Write(w)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || strings.HasPrefix(mimeType, "application/octet-stream") {
		mimeType = http.DetectContentType(data)
	}

	lines, err := s.extractor.Statement(ctx, data, mimeType)
	if err != nil {
		s.writeExtractError(w, r, err, "")
		return
	}
	out := make([]statementLineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, statementLineDTO{
			Date:         l.Date,
			Description:  l.Description,
			Amount:       l.Amount,
			Type:         string(l.Type),
			ClassifiedAs: l.ClassifiedAs,
		})
	}
	NewJSONResponse().Body(map[string]any{"transactions": out}).Write(w)
}

func (s *Server) writeExtractError(w http.ResponseWriter, r *http.Request, err error, modelRaw string) {
	switch {
	case errors.Is(err, extract.ErrEmptyFile):
		BadRequestError("the uploaded file is empty").Write(w)
	case errors.Is(err, extract.ErrUnsupportedType):
		ErrorResponse(http.StatusUnsupportedMediaType, "unsupported file type").Write(w)
	default:
		ctx := r.Context()
		log.FromContext(ctx).WarnContext(ctx, "Extraction failed",
			log.NewFields().WithComponent(log.ComponentAI).WithOperation(log.OpExtract).WithError(err).ToSlice()...)
		NewJSONResponse().Status(http.StatusBadGateway).
			Body(errorBody{Error: "could not read the document", ModelRaw: modelRaw}).Write(w)
	}
}

// handleInsight proxies an assembled prompt to the text generator.
func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	if s.insight == nil {
		ServiceUnavailableError(aiUnavailable).Write(w)
		return
	}
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		BadRequestError("text is required").Write(w)
		return
	}

	content, err := s.insight.Complete(ctx, req.Text)
	if err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Insight request failed",
			log.NewFields().WithComponent(log.ComponentAI).WithOperation(log.OpInsight).WithError(err).ToSlice()...)
		BadGatewayError("insight service is unavailable").Write(w)
		return
	}
	NewJSONResponse().Body(map[string]string{"content": content}).Write(w)
}

// handleMonthInsight aggregates one month and asks for its bullets.
func (s *Server) handleMonthInsight(w http.ResponseWriter, r *http.Request) {
	if s.insight == nil {
		ServiceUnavailableError(aiUnavailable).Write(w)
		return
	}
	ctx := r.Context()
	uid := owner(r)

	mp, err := ParseMonthParams(r.URL.Query(), time.Now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	m, err := s.reports.Month(ctx, uid, mp.Year, mp.Month)
	if err != nil {
		s.logReportFailure(r, uid, err)
		NewJSONResponse().Body(toInsightDTO(insight.Failed())).Write(w)
		return
	}
	res, err := s.insight.ForMonth(ctx, m)
	if err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Month insight failed",
			log.NewFields().WithComponent(log.ComponentAI).WithOperation(log.OpInsight).
				WithPeriod(mp.Year, mp.Month).WithError(err).ToSlice()...)
		NewJSONResponse().Status(http.StatusBadGateway).Body(toInsightDTO(res)).Write(w)
		return
	}
	NewJSONResponse().Body(toInsightDTO(res)).Write(w)
}

// handleWidgetStart (re)loads the caller's widget for a month and returns
// the loading state immediately.
func (s *Server) handleWidgetStart(w http.ResponseWriter, r *http.Request) {
	if s.board == nil {
		ServiceUnavailableError(aiUnavailable).Write(w)
		return
	}
	mp, err := ParseMonthParams(r.URL.Query(), time.Now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	state := s.board.Start(r.Context(), widget.Key{Owner: owner(r), Year: mp.Year, Month: mp.Month})
	NewJSONResponse().Status(http.StatusAccepted).Body(toWidgetDTO(state)).Write(w)
}

func (s *Server) handleWidgetState(w http.ResponseWriter, r *http.Request) {
	if s.board == nil {
		ServiceUnavailableError(aiUnavailable).Write(w)
		return
	}
	NewJSONResponse().Body(toWidgetDTO(s.board.Get(owner(r)))).Write(w)
}

func toInsightDTO(res insight.Result) insightDTO {
	bullets := res.Bullets
	if bullets == nil {
		bullets = []string{}
	}
	return insightDTO{Status: string(res.Status), Bullets: bullets, Message: res.Message}
}

// decodeBase64 accepts plain or data-URL base64, padded or not.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if _, payload, ok := strings.Cut(s, ","); ok {
			s = payload
		}
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
