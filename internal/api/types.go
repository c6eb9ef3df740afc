package api

import (
	"github.com/rs/zerolog"

	"github.com/searchforge/booksearch/internal/contract"
)

// Options configures the HTTP host.
type Options struct {
	// Settings are applied to every search served by the host.
	Settings contract.Settings
	// CORSOrigins lists the origins allowed to call the host from a browser.
	// Empty allows all origins.
	CORSOrigins []string
	Logger      zerolog.Logger
}
