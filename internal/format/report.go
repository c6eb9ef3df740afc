package format

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/searchforge/booksearch/internal/contract"
)

const blockSeparator = "\n\n"

var errNotObject = errors.New("result must be an object")

// Formatter renders validated upstream items as text blocks.
type Formatter struct {
	log zerolog.Logger
}

// New returns a Formatter that logs URL rewrites at debug level.
func New(log zerolog.Logger) *Formatter {
	return &Formatter{log: log}
}

// Report renders items in their original order. One malformed record fails
// the whole batch and no partial text is returned.
func (f *Formatter) Report(items []gjson.Result) (string, error) {
	if len(items) == 0 {
		return contract.NoResultsMessage, nil
	}

	blocks := make([]string, 0, len(items))
	for idx, item := range items {
		result, err := DecodeResult(idx, item)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, f.block(result))
	}
	return strings.Join(blocks, blockSeparator), nil
}

func (f *Formatter) block(r contract.Result) string {
	var b strings.Builder
	b.WriteString("Book: ")
	b.WriteString(r.FilePath)
	b.WriteString("\nSnippet: ")
	b.WriteString(r.Snippet)
	b.WriteByte('\n')

	if r.RawURL != "" {
		formatted, err := NormalizeURL(r.RawURL)
		if err != nil {
			f.log.Debug().Err(err).Str("raw_url", r.RawURL).Msg("URL normalization failed, keeping raw URL")
			formatted = r.RawURL
		} else {
			f.log.Debug().Str("raw_url", r.RawURL).Str("url", formatted).Msg("Normalized result URL")
		}
		b.WriteString("URL: ")
		b.WriteString(formatted)
		b.WriteByte('\n')
	}
	return b.String()
}

// DecodeResult turns one untrusted item into a Result. file_path and snippet
// must be non-empty strings. raw_url never fails the record: falsy values
// leave it empty and other non-strings keep their JSON text.
func DecodeResult(idx int, item gjson.Result) (contract.Result, error) {
	if !item.IsObject() {
		return contract.Result{}, &contract.ResultShapeError{Index: idx, Err: errNotObject}
	}

	r := contract.Result{
		FilePath: stringField(item, "file_path"),
		Snippet:  stringField(item, "snippet"),
	}

	if err := validation.ValidateStruct(&r,
		validation.Field(&r.FilePath, validation.Required),
		validation.Field(&r.Snippet, validation.Required),
	); err != nil {
		return contract.Result{}, &contract.ResultShapeError{Index: idx, Err: err}
	}

	r.RawURL = rawURL(item.Get("raw_url"))
	return r, nil
}

func rawURL(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Null, gjson.False:
		return ""
	case gjson.Number:
		if v.Num == 0 {
			return ""
		}
	}
	return v.Raw
}

func stringField(item gjson.Result, key string) string {
	v := item.Get(key)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}
