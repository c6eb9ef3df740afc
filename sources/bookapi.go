package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/searchforge/booksearch/internal/contract"
	"github.com/searchforge/booksearch/internal/request"
	"github.com/searchforge/booksearch/obs"
	"github.com/searchforge/booksearch/policy"
)

const maxBodyBytes = 8 << 20

// HTTPClient represents a minimal http client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// BookAPI issues the single upstream search call.
type BookAPI struct {
	client HTTPClient
}

// Response is the raw upstream answer handed to the validator.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	TookMs int64
}

// NewBookAPI creates the upstream client. A nil client falls back to one
// without its own timeout; the per-call deadline bounds every request.
func NewBookAPI(client HTTPClient) *BookAPI {
	if client == nil {
		client = &http.Client{}
	}
	return &BookAPI{client: client}
}

// Fetch performs exactly one GET. A deadline armed at call start races the
// request and is disarmed as soon as the client answers.
func (b *BookAPI) Fetch(ctx context.Context, req request.Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = request.DefaultTimeout
	}

	ctx, deadline, err := policy.Arm(ctx, timeout)
	if err != nil {
		return nil, err
	}
	defer deadline.Release()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, &contract.NetworkError{URL: req.URL, Err: fmt.Errorf("create request: %w", err)}
	}
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := b.client.Do(httpReq)
	deadline.Disarm()
	took := time.Since(start)
	obs.RecordUpstreamDuration(took)

	if err != nil {
		return nil, classify(ctx, deadline, req.URL, err)
	}
	defer resp.Body.Close()

	out := &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		TookMs: took.Milliseconds(),
	}

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	switch {
	case readErr == nil:
		out.Body = body
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		// Body is diagnostic only on failures; a broken read is not escalated.
	default:
		return nil, classify(ctx, deadline, req.URL, fmt.Errorf("read response: %w", readErr))
	}
	return out, nil
}

// Ping checks that the API base answers at all. Any HTTP status counts as
// reachable.
func (b *BookAPI) Ping(ctx context.Context, baseURL string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := b.client.Do(httpReq)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.Body.Close()
}

func (b *BookAPI) String() string {
	return fmt.Sprintf("book_api{client=%T}", b.client)
}

func classify(ctx context.Context, deadline *policy.Deadline, target string, err error) error {
	cause := context.Cause(ctx)
	switch {
	case deadline.Fired() || errors.Is(cause, policy.ErrDeadlineExceeded):
		return &contract.TimeoutError{
			Timeout: deadline.Timeout(),
			Err:     fmt.Errorf("%w: %w", cause, err),
		}
	case cause != nil:
		return &contract.CancelledError{Err: fmt.Errorf("%w: %w", cause, err)}
	}
	return &contract.NetworkError{URL: target, Err: err}
}
