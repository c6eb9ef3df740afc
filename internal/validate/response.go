package validate

import (
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/searchforge/booksearch/internal/contract"
	"github.com/searchforge/booksearch/sources"
)

const contentTypeJSON = "application/json"

// Shape identifies which of the two accepted payload layouts was received.
type Shape int

const (
	// ShapeBareArray is a top-level JSON array of results.
	ShapeBareArray Shape = iota + 1
	// ShapeWrapped is an object carrying the array under "results".
	ShapeWrapped
)

func (s Shape) String() string {
	switch s {
	case ShapeBareArray:
		return "bare_array"
	case ShapeWrapped:
		return "wrapped"
	default:
		return "unknown"
	}
}

// Payload is a validated upstream body. Items are not yet checked
// individually; that happens in the formatter.
type Payload struct {
	Shape    Shape
	Items    []gjson.Result
	Total    int64
	HasTotal bool
	TookMs   int64
}

// Response runs the ordered checks: status, content type, JSON syntax, shape.
// The first failure wins and later checks do not run.
func Response(resp *sources.Response) (Payload, error) {
	if resp.Status < http.StatusOK || resp.Status > 299 {
		return Payload{}, &contract.UpstreamStatusError{
			Status: resp.Status,
			Body:   string(resp.Body),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || !strings.Contains(strings.ToLower(contentType), contentTypeJSON) {
		return Payload{}, &contract.UpstreamFormatError{ContentType: contentType}
	}

	if !gjson.ValidBytes(resp.Body) {
		return Payload{}, &contract.ParseError{}
	}

	return DetectShape(gjson.ParseBytes(resp.Body))
}

// DetectShape resolves the tagged union of accepted layouts.
func DetectShape(root gjson.Result) (Payload, error) {
	if root.IsArray() {
		return Payload{Shape: ShapeBareArray, Items: root.Array()}, nil
	}

	if !root.IsObject() {
		return Payload{}, &contract.UpstreamShapeError{Got: TypeOf(root)}
	}

	results := root.Get("results")
	if !results.IsArray() {
		return Payload{}, &contract.UpstreamShapeError{Field: "results", Got: TypeOf(results)}
	}

	p := Payload{Shape: ShapeWrapped, Items: results.Array()}
	if total := root.Get("total"); total.Type == gjson.Number {
		p.Total = total.Int()
		p.HasTotal = true
	}
	if took := root.Get("took"); took.Type == gjson.Number {
		p.TookMs = took.Int()
	}
	return p, nil
}

// TypeOf names a JSON value the way JavaScript's typeof does, so diagnostics
// read the same for users of either client.
func TypeOf(v gjson.Result) string {
	if !v.Exists() {
		return "undefined"
	}
	switch v.Type {
	case gjson.Null, gjson.JSON:
		return "object"
	case gjson.True, gjson.False:
		return "boolean"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	default:
		return "undefined"
	}
}
