package request

import (
	"net/http"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/searchforge/booksearch/internal/contract"
	"github.com/searchforge/booksearch/internal/urlenc"
)

const (
	// DefaultAPIURL is used when the host does not configure an API base.
	DefaultAPIURL = "http://localhost:8000"
	// DefaultProxyURL is a public CORS relay that takes the target URL as its path.
	DefaultProxyURL = "https://cors-anywhere.herokuapp.com/"
	// DefaultTimeout bounds the single upstream call.
	DefaultTimeout = 10 * time.Second

	searchPath      = "/search"
	contentTypeJSON = "application/json"
	// Some relays only forward requests that look like XHR.
	forwardedByHeader = "X-Requested-With"
	forwardedByValue  = "XMLHttpRequest"
)

// Request is the fully derived upstream call. Treat it as read-only.
type Request struct {
	Query      string
	APIBaseURL string
	UseProxy   bool
	ProxyURL   string
	TargetURL  string
	URL        string
	Header     http.Header
	Timeout    time.Duration
}

// Build derives the upstream request from host parameters and settings.
// It never touches the network.
func Build(params contract.Params, settings contract.Settings) (Request, error) {
	if err := validation.ValidateStruct(&params,
		validation.Field(&params.Query, validation.Required),
	); err != nil {
		return Request{}, &contract.ValidationError{
			Message: "Search query is required",
			Err:     contract.ErrQueryRequired,
		}
	}

	base := BaseURL(settings)
	proxy := settings.ProxyURL
	if proxy == "" {
		proxy = DefaultProxyURL
	}

	target := base + searchPath + "?query=" + urlenc.Component(params.Query)

	header := make(http.Header)
	header.Set("Accept", contentTypeJSON)

	reqURL := target
	if settings.UseProxy {
		reqURL = proxy + target
		header.Set(forwardedByHeader, forwardedByValue)
	}

	for _, name := range DebugHeaderNames(settings) {
		header.Set(name, settings.UnsafeDebugHeaders[name])
	}

	return Request{
		Query:      params.Query,
		APIBaseURL: base,
		UseProxy:   settings.UseProxy,
		ProxyURL:   proxy,
		TargetURL:  target,
		URL:        reqURL,
		Header:     header,
		Timeout:    DefaultTimeout,
	}, nil
}

// BaseURL returns the configured API base with a single trailing slash removed.
func BaseURL(settings contract.Settings) string {
	base := settings.APIURL
	if base == "" {
		base = DefaultAPIURL
	}
	return strings.TrimSuffix(base, "/")
}

// DebugHeaderNames lists the unsafe debug header names in a stable order.
// Values are deliberately left out so they never reach logs.
func DebugHeaderNames(settings contract.Settings) []string {
	if len(settings.UnsafeDebugHeaders) == 0 {
		return nil
	}
	names := make([]string, 0, len(settings.UnsafeDebugHeaders))
	for name := range settings.UnsafeDebugHeaders {
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
