// Package urlenc implements the two percent-encoding flavours browsers apply to
// search URLs: component encoding for paths and query values, and
// application/x-www-form-urlencoded for query strings.
//
// net/url is close but not identical: QueryEscape turns spaces into '+' and
// escapes '!', '*', '(' and ')', PathEscape leaves sub-delims such as '&' and
// '=' alone, and url.Values sorts keys. Upstream links must survive a
// round-trip byte for byte, so the tables here follow the browser ones.
package urlenc

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

const upperhex = "0123456789ABCDEF"

// ErrInvalidUTF8 is returned when a decoded component is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("decoded component is not valid UTF-8")

// Pair is a single name/value entry from a query string. Order matters.
type Pair struct {
	Name  string
	Value string
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func componentSafe(c byte) bool {
	if isAlnum(c) {
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

func formSafe(c byte) bool {
	if isAlnum(c) {
		return true
	}
	switch c {
	case '*', '-', '.', '_':
		return true
	}
	return false
}

func escape(s string, safe func(byte) bool, spacePlus bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case safe(c):
			b.WriteByte(c)
		case c == ' ' && spacePlus:
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
		}
	}
	return b.String()
}

// Component percent-encodes s the way encodeURIComponent does.
func Component(s string) string {
	return escape(s, componentSafe, false)
}

// PathSegment encodes a single path segment: component encoding plus an
// escaped apostrophe, which some viewers choke on inside links.
func PathSegment(s string) string {
	return strings.ReplaceAll(Component(s), "'", "%27")
}

// DecodeComponent is the strict inverse of Component. Malformed escapes and
// invalid UTF-8 are errors.
func DecodeComponent(s string) (string, error) {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return "", err
	}
	if !utf8.ValidString(decoded) {
		return "", fmt.Errorf("%q: %w", s, ErrInvalidUTF8)
	}
	return decoded, nil
}

// FormEscape encodes s with application/x-www-form-urlencoded rules.
func FormEscape(s string) string {
	return escape(s, formSafe, true)
}

// EncodeForm serializes pairs in order, joined by '&'.
func EncodeForm(pairs []Pair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, FormEscape(p.Name)+"="+FormEscape(p.Value))
	}
	return strings.Join(parts, "&")
}

// ParseForm splits a raw query string into ordered pairs. Empty segments are
// skipped, '+' reads as a space, and malformed escapes are kept literally.
func ParseForm(raw string) []Pair {
	raw = strings.TrimPrefix(raw, "?")
	if raw == "" {
		return nil
	}
	var pairs []Pair
	for _, seg := range strings.Split(raw, "&") {
		if seg == "" {
			continue
		}
		name, value, _ := strings.Cut(seg, "=")
		pairs = append(pairs, Pair{
			Name:  lenientUnescape(name),
			Value: lenientUnescape(value),
		})
	}
	return pairs
}

func lenientUnescape(s string) string {
	s = strings.ReplaceAll(s, "+", " ")
	if !strings.Contains(s, "%") {
		return s
	}
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			buf = append(buf, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		buf = append(buf, s[i])
	}
	return strings.ToValidUTF8(string(buf), "�")
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
