package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/searchforge/booksearch/internal/config"
	"github.com/searchforge/booksearch/internal/controller"
	"github.com/searchforge/booksearch/sources"
)

var (
	settingsPath string
	apiURL       string
	proxyURL     string
	useProxy     bool
	debugHeaders map[string]string
	logLevel     string
	logFile      string
)

var rootCmd = &cobra.Command{
	Use:   "booksearch",
	Short: "Search a remote book index and print readable results",
	Long: `booksearch queries a book-search API, validates what it returns, and renders
one text block per matching book. Settings come from a YAML/JSON settings file,
BOOKSEARCH_* environment variables, and flags, in increasing priority.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&settingsPath, "settings", "", "Path to a YAML or JSON settings file")
	flags.StringVar(&apiURL, "api-url", "", "Base URL of the book search API")
	flags.StringVar(&proxyURL, "proxy-url", "", "CORS relay prefixed to the target URL when --use-proxy is set")
	flags.BoolVar(&useProxy, "use-proxy", false, "Route the request through the proxy relay")
	flags.StringToStringVar(&debugHeaders, "debug-header", nil, "UNSAFE: extra request headers (name=value), for development only")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&logFile, "log-file", "", "Write logs to a rotating file instead of stderr")
}

func main() {
	// Load .env file (silently ignore if it doesn't exist)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup resolves configuration and builds the shared controller.
func setup(cmd *cobra.Command) (config.Config, *controller.Controller, zerolog.Logger, io.Closer, error) {
	cfg, err := config.Load(settingsPath)
	if err != nil {
		return config.Config{}, nil, zerolog.Nop(), nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.Settings.APIURL = apiURL
	}
	if flags.Changed("proxy-url") {
		cfg.Settings.ProxyURL = proxyURL
	}
	if flags.Changed("use-proxy") {
		cfg.Settings.UseProxy = useProxy
	}
	if len(debugHeaders) > 0 {
		cfg.Settings.UnsafeDebugHeaders = debugHeaders
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}

	logger, closer := config.NewLogger(cfg)
	if len(cfg.Settings.UnsafeDebugHeaders) > 0 {
		logger.Warn().Int("count", len(cfg.Settings.UnsafeDebugHeaders)).Msg("Unsafe debug headers enabled; do not use in production")
	}

	src := sources.NewBookAPI(newHTTPClient())
	logger.Debug().Stringer("source", src).Dur("timeout", cfg.Timeout).Msg("Upstream client ready")

	ctrl, err := controller.New(src, controller.Config{
		Timeout: cfg.Timeout,
		Logger:  logger,
	})
	if err != nil {
		closer.Close()
		return config.Config{}, nil, zerolog.Nop(), nil, fmt.Errorf("controller: %w", err)
	}
	return cfg, ctrl, logger, closer, nil
}

func newHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        64,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	}

	// No client-level timeout: each search arms its own deadline.
	return &http.Client{
		Transport: transport,
	}
}
