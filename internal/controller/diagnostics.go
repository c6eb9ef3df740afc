package controller

import (
	"errors"
	"strings"

	"github.com/searchforge/booksearch/internal/contract"
	"github.com/searchforge/booksearch/internal/request"
)

const errorPrefix = "Error searching books: "

// Diagnose turns a pipeline error into the user-facing report. Timeouts and
// network failures get troubleshooting hints; everything else is reported
// as-is.
func Diagnose(err error, settings contract.Settings) string {
	if err == nil {
		return ""
	}
	apiBase := request.BaseURL(settings)

	var b strings.Builder
	b.WriteString(errorPrefix)
	b.WriteString(err.Error())

	var (
		timeoutErr *contract.TimeoutError
		networkErr *contract.NetworkError
	)
	switch {
	case errors.As(err, &timeoutErr):
		b.WriteString("\n\nDiagnostics: Request timed out. Check if:")
		b.WriteString("\n- The API is running at " + apiBase)
		b.WriteString("\n- The server is accessible from your network")
		if !settings.UseProxy {
			b.WriteString("\n- Try enabling proxy in plugin settings")
		}
	case errors.As(err, &networkErr):
		b.WriteString("\n\nDiagnostics: Network request failed. Check if:")
		b.WriteString("\n- The API URL (" + apiBase + ") is correct")
		b.WriteString("\n- CORS is properly configured on the server")
		b.WriteString("\n- The server is running and accessible")
		if !settings.UseProxy {
			b.WriteString("\n- Try enabling proxy in plugin settings to bypass CORS")
		}
		b.WriteString("\n- For debugging, you can add CORS headers in plugin settings")
	}
	return b.String()
}
