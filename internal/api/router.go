package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"golang.org/x/text/unicode/norm"

	"github.com/searchforge/booksearch/internal/contract"
	"github.com/searchforge/booksearch/internal/controller"
	"github.com/searchforge/booksearch/internal/health"
)

// Router wires the HTTP endpoints for the book search host.
type Router struct {
	controller *controller.Controller
	opts       Options
}

// NewRouter constructs the HTTP router.
func NewRouter(ctrl *controller.Controller, opts Options) (*chi.Mux, error) {
	if ctrl == nil {
		return nil, fmt.Errorf("controller is required")
	}
	r := &Router{
		controller: ctrl,
		opts:       opts,
	}

	mux := chi.NewRouter()
	mux.Use(cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet},
		AllowedHeaders: []string{"Accept", "X-Requested-With", contract.TraceIDHeader},
		ExposedHeaders: []string{contract.TraceIDHeader},
	}).Handler)

	mux.Get("/healthz", r.handleHealthz)
	mux.Get("/readyz", health.Readyz(ctrl, opts.Settings))
	mux.Get("/v1/search", r.handleSearch)

	return mux, nil
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Router) handleSearch(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	traceID := req.Header.Get(contract.TraceIDHeader)
	if traceID == "" {
		traceID = req.URL.Query().Get("trace_id")
	}
	if traceID == "" {
		traceID = uuid.NewString()
	}
	w.Header().Set(contract.TraceIDHeader, traceID)
	ctx = contract.WithTraceID(ctx, traceID)

	raw := req.URL.Query().Get("q")
	if raw == "" {
		raw = req.URL.Query().Get("query")
	}
	params := contract.Params{Query: normalizeQuery(raw)}

	status := http.StatusOK
	out, err := r.controller.Do(ctx, params, r.opts.Settings)
	report := out.Report
	if err != nil {
		report = controller.Diagnose(err, r.opts.Settings)
		status = statusFor(controller.ErrorKind(err))
	}

	r.opts.Logger.Debug().
		Str("trace_id", traceID).
		Int("status", status).
		Msg("Served search")
	writeText(w, status, report)
}

func statusFor(kind string) int {
	switch kind {
	case "validation":
		return http.StatusBadRequest
	case "timeout":
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func normalizeQuery(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return q
	}
	q = norm.NFKC.String(q)
	fields := strings.Fields(q)
	return strings.Join(fields, " ")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
