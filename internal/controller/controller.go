package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/searchforge/booksearch/internal/contract"
	"github.com/searchforge/booksearch/internal/format"
	"github.com/searchforge/booksearch/internal/request"
	"github.com/searchforge/booksearch/internal/validate"
	"github.com/searchforge/booksearch/obs"
	"github.com/searchforge/booksearch/sources"
)

// Source defines the behaviour required by the upstream search API client.
type Source interface {
	Fetch(ctx context.Context, req request.Request) (*sources.Response, error)
	Ping(ctx context.Context, baseURL string) error
}

// Config groups controller dependencies.
type Config struct {
	// Timeout overrides request.DefaultTimeout when positive.
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Controller is the SearchClient: it runs build, fetch, validate and format
// in order. It holds no per-call state, so one Controller serves concurrent
// searches without locking.
type Controller struct {
	source    Source
	timeout   time.Duration
	log       zerolog.Logger
	formatter *format.Formatter
}

// Outcome is the successful result of a pipeline run.
type Outcome struct {
	Report  string
	Request request.Request
	Payload validate.Payload
}

// New constructs a controller.
func New(src Source, cfg Config) (*Controller, error) {
	if src == nil {
		return nil, fmt.Errorf("source required")
	}
	return &Controller{
		source:    src,
		timeout:   cfg.Timeout,
		log:       cfg.Logger,
		formatter: format.New(cfg.Logger),
	}, nil
}

// Search runs the pipeline and always returns a report: either the formatted
// results or an "Error searching books" diagnostic. It never fails.
func (c *Controller) Search(ctx context.Context, params contract.Params, settings contract.Settings) string {
	out, err := c.Do(ctx, params, settings)
	if err != nil {
		return Diagnose(err, settings)
	}
	return out.Report
}

// Do runs the pipeline and returns the typed outcome. Each stage returns
// (value, error) and the first error stops the run.
func (c *Controller) Do(ctx context.Context, params contract.Params, settings contract.Settings) (out Outcome, err error) {
	start := time.Now()
	traceID, _ := contract.TraceIDFromContext(ctx)

	ctx, span := obs.Tracer().Start(ctx, "booksearch.search")
	defer func() {
		kind := ErrorKind(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, kind)
			if kind != "validation" {
				obs.RecordUpstreamError(kind)
			}
			c.log.Warn().Err(err).Str("kind", kind).Str("trace_id", traceID).Msg("Book search failed")
		}
		obs.ObserveSearch(kind, time.Since(start), traceID)
		span.End()
	}()

	req, err := request.Build(params, settings)
	if err != nil {
		return Outcome{}, err
	}
	if c.timeout > 0 {
		req.Timeout = c.timeout
	}
	out.Request = req

	span.SetAttributes(
		attribute.String("booksearch.api_base", req.APIBaseURL),
		attribute.Bool("booksearch.use_proxy", req.UseProxy),
	)
	c.log.Debug().
		Str("url", req.URL).
		Bool("use_proxy", req.UseProxy).
		Strs("debug_headers", request.DebugHeaderNames(settings)).
		Dur("timeout", req.Timeout).
		Msg("Searching books")

	resp, err := c.source.Fetch(ctx, req)
	if err != nil {
		return out, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.Status))
	c.log.Debug().Int("status", resp.Status).Int64("took_ms", resp.TookMs).Msg("Upstream responded")

	payload, err := validate.Response(resp)
	if err != nil {
		return out, err
	}
	out.Payload = payload
	evt := c.log.Debug().Stringer("shape", payload.Shape).Int("results", len(payload.Items))
	if payload.HasTotal {
		evt = evt.Int64("total", payload.Total).Int64("upstream_took_ms", payload.TookMs)
	}
	evt.Msg("Validated upstream payload")

	report, err := c.formatter.Report(payload.Items)
	if err != nil {
		return out, err
	}
	out.Report = report
	return out, nil
}

// Ping checks upstream reachability for the given settings.
func (c *Controller) Ping(ctx context.Context, settings contract.Settings) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.source.Ping(ctx, request.BaseURL(settings))
}

// ErrorKind maps a pipeline error to a short label for metrics and logs.
func ErrorKind(err error) string {
	if err == nil {
		return "ok"
	}
	var (
		validationErr *contract.ValidationError
		statusErr     *contract.UpstreamStatusError
		formatErr     *contract.UpstreamFormatError
		parseErr      *contract.ParseError
		shapeErr      *contract.UpstreamShapeError
		resultErr     *contract.ResultShapeError
		timeoutErr    *contract.TimeoutError
		cancelledErr  *contract.CancelledError
		networkErr    *contract.NetworkError
	)
	switch {
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &statusErr):
		return "status"
	case errors.As(err, &formatErr):
		return "content_type"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &shapeErr):
		return "shape"
	case errors.As(err, &resultErr):
		return "result_shape"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &cancelledErr):
		return "cancelled"
	case errors.As(err, &networkErr):
		return "network"
	default:
		return "error"
	}
}
