package contract

import (
	"context"
)

const TraceIDHeader = "X-Trace-Id"

// NoResultsMessage is the report returned for an empty result set.
const NoResultsMessage = "No books found matching your search"

// Params captures the per-call parameters supplied by the host.
type Params struct {
	Query string `json:"query" yaml:"query"`
}

// Settings captures the user-level connection settings supplied by the host.
type Settings struct {
	APIURL   string `json:"apiUrl,omitempty" yaml:"apiUrl,omitempty"`
	UseProxy bool   `json:"useProxy,omitempty" yaml:"useProxy,omitempty"`
	ProxyURL string `json:"proxyUrl,omitempty" yaml:"proxyUrl,omitempty"`

	// UnsafeDebugHeaders are merged into the upstream request last and may
	// override any header, Accept included. Development and testing only:
	// never ship credentials or CORS overrides through this in production.
	UnsafeDebugHeaders map[string]string `json:"debugHeaders,omitempty" yaml:"debugHeaders,omitempty"`
}

// Result is a single upstream record after validation.
type Result struct {
	FilePath string `json:"file_path"`
	Snippet  string `json:"snippet"`
	RawURL   string `json:"raw_url,omitempty"`
}

type contextKey string

const traceIDKey contextKey = "booksearch_trace_id"

// WithTraceID stores the trace identifier in context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext extracts the trace identifier.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value := ctx.Value(traceIDKey)
	if value == nil {
		return "", false
	}
	traceID, ok := value.(string)
	return traceID, ok
}
