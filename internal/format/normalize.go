package format

import (
	"errors"
	"net/url"
	"strings"

	"github.com/searchforge/booksearch/internal/contract"
	"github.com/searchforge/booksearch/internal/urlenc"
)

var errNotAbsolute = errors.New("url must be absolute with a host")

// NormalizeURL rebuilds raw as {origin}{path}{?query}. Every path segment is
// decoded and re-encoded so already-encoded input is not encoded twice, and
// the query is re-serialized as form pairs in their original order. The
// fragment is dropped and dot segments are resolved. Applying it to its own
// output is a no-op.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", &contract.URLNormalizationError{RawURL: raw, Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return "", &contract.URLNormalizationError{RawURL: raw, Err: errNotAbsolute}
	}

	escaped := u.EscapedPath()
	if escaped == "" {
		escaped = "/"
	}
	segments := strings.Split(strings.TrimPrefix(escaped, "/"), "/")
	out := make([]string, 0, len(segments))
	for i, seg := range segments {
		decoded, err := urlenc.DecodeComponent(seg)
		if err != nil {
			return "", &contract.URLNormalizationError{RawURL: raw, Err: err}
		}
		last := i == len(segments)-1
		switch decoded {
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			if last {
				out = append(out, "")
			}
		case ".":
			if last {
				out = append(out, "")
			}
		default:
			out = append(out, urlenc.PathSegment(decoded))
		}
	}

	var b strings.Builder
	b.WriteString(origin(u))
	b.WriteByte('/')
	b.WriteString(strings.Join(out, "/"))
	if query := urlenc.EncodeForm(urlenc.ParseForm(u.RawQuery)); query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	return b.String(), nil
}

// FormatURL normalizes raw and falls back to the unmodified input on any
// failure. It never drops a link.
func FormatURL(raw string) string {
	normalized, err := NormalizeURL(raw)
	if err != nil {
		return raw
	}
	return normalized
}

func origin(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	port := u.Port()
	if port != "" && !isDefaultPort(scheme, port) {
		host += ":" + port
	}
	return scheme + "://" + host
}

func isDefaultPort(scheme, port string) bool {
	switch scheme {
	case "http", "ws":
		return port == "80"
	case "https", "wss":
		return port == "443"
	case "ftp":
		return port == "21"
	}
	return false
}
