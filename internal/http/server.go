package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"finsight/internal/auth"
	"finsight/internal/core"
	"finsight/internal/extract"
	"finsight/internal/insight"
	"finsight/internal/log"
	"finsight/internal/middleware/ratelimit"
	"finsight/internal/middleware/security"
	"finsight/internal/middleware/trace"
	"finsight/internal/services"
	"finsight/internal/widget"
)

const defaultMaxUpload = 10 << 20

// Deps are the collaborators the API is served from. Insight and Extractor
// may be nil when no text-generation key is configured; the AI routes then
// answer 503.
type Deps struct {
	Records   *services.RecordService
	Reports   *services.ReportService
	Verifier  auth.TokenVerifier
	Insight   *insight.Service
	Extractor *extract.Extractor
	Board     *widget.Board
	Logger    *slog.Logger

	// Ready is polled by /readyz; nil means always ready.
	Ready func(ctx context.Context) error

	AIRequestsPerMinute int
	MaxUploadBytes      int64
	CORSOrigins         []string
}

type Server struct {
	http.Server
	records   *services.RecordService
	reports   *services.ReportService
	insight   *insight.Service
	extractor *extract.Extractor
	board     *widget.Board
	ready     func(ctx context.Context) error
	logger    *slog.Logger
	maxUpload int64

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxUpload := d.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}

	s := &Server{
		records:   d.Records,
		reports:   d.Reports,
		insight:   d.Insight,
		extractor: d.Extractor,
		board:     d.Board,
		ready:     d.Ready,
		logger:    log.WithComponent(logger, log.ComponentHTTP),
		maxUpload: maxUpload,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: d.AIRequestsPerMinute,
		}),
		detector: security.NewDetector(logger),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	headers := security.DefaultHeadersConfig()
	headers.AllowedOrigins = d.CORSOrigins

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.tracer.Handler)
	r.Use(security.NewHeadersMiddleware(headers).Middleware)
	r.Use(s.detector.Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(d.Verifier))

		r.Get("/categories", s.handleCategories)
		r.Get("/incomes", s.handleListRecords(core.Income))
		r.Post("/incomes", s.handleCreateRecord(core.Income))
		r.Get("/incomes/{id}", s.handleGetRecord(core.Income))
		r.Get("/expenses", s.handleListRecords(core.Expense))
		r.Post("/expenses", s.handleCreateRecord(core.Expense))
		r.Get("/expenses/{id}", s.handleGetRecord(core.Expense))
		r.Post("/transactions/import", s.handleImport)

		r.Get("/stats/summary", s.handleSummary)
		r.Get("/reports/dashboard", s.handleDashboard)
		r.Get("/reports/monthly", s.handleMonthly)
		r.Get("/reports/categories", s.handleCategoryReport)
		r.Get("/reports/transactions", s.handleTransactions)
		r.Get("/reports/export", s.handleExport)
		r.Get("/widgets/insight", s.handleWidgetState)

		ai := r.With(s.limiter.Middleware(s.rateKey))
		ai.Post("/amount-extract", s.handleAmountExtract)
		ai.Post("/file-transaction", s.handleFileTransaction)
		ai.Post("/insight", s.handleInsight)
		ai.Get("/reports/insight", s.handleMonthInsight)
		ai.Post("/widgets/insight", s.handleWidgetStart)
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// rateKey limits authenticated callers by uid, everyone else by address.
func (s *Server) rateKey(r *http.Request) string {
	if u, ok := auth.FromContext(r.Context()); ok {
		return "uid:" + u.UID
	}
	return "ip:" + s.detector.ExtractClientIP(r)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
